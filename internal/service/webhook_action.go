// internal/service/webhook_action.go
package service

import (
    "net/url"

    "github.com/go-resty/resty/v2"

    "github.com/cleanforms/cleanforms-backend/internal/model"
)

// WebhookHandler POSTs the submission to an external URL. Any HTTP
// response counts as delivered; the remote's business-logic status is not
// this handler's concern. Only a transport failure fails the dispatch,
// and there is no retry or backoff here.
type WebhookHandler struct {
    Client *resty.Client
    Tags   *TagRegistry
}

func NewWebhookHandler(tags *TagRegistry) *WebhookHandler {
    return &WebhookHandler{
        Client: resty.New().SetTimeout(VerifyTimeout),
        Tags:   tags,
    }
}

func (h *WebhookHandler) Type() string { return model.ActionTypeWebhook }

func (h *WebhookHandler) Process(action model.Action, sub *model.Submission, form *model.Form, ctx *RequestContext) DispatchResult {
    cfg := action.Webhook

    req := h.Client.R()
    if cfg.AuthHeaderName != "" {
        req.SetHeader(cfg.AuthHeaderName, cfg.AuthHeaderValue)
    }

    if cfg.ContentType == "form" {
        req.SetHeader("Content-Type", "application/x-www-form-urlencoded")
        req.SetBody(encodeFormBody(sub).Encode())
    } else {
        req.SetHeader("Content-Type", "application/json")
        req.SetBody(encodeJSONBody(sub))
    }

    endpoint := RenderFields(h.Tags.Substitute(cfg.URL, ctx), sub, EscapeURL)
    if _, err := req.Post(endpoint); err != nil {
        return DispatchResult{Outcome: OutcomeFailed, Err: err.Error()}
    }
    return DispatchResult{Outcome: OutcomeSent}
}

func encodeJSONBody(sub *model.Submission) map[string]interface{} {
    body := map[string]interface{}{
        "form_id":      sub.FormID,
        "submitted_at": sub.SubmittedAt.Format(timestampLayout),
        "ip_address":   sub.IPAddress,
        "user_agent":   sub.UserAgent,
        "referer_url":  sub.RefererURL,
        "fields":       sub.Data,
    }
    if sub.ID != 0 {
        body["submission_id"] = sub.ID
    }
    return body
}

func encodeFormBody(sub *model.Submission) url.Values {
    values := url.Values{}
    values.Set("form_id", FormatFieldValue(sub.FormID))
    values.Set("submitted_at", sub.SubmittedAt.Format(timestampLayout))
    values.Set("ip_address", sub.IPAddress)
    for name, value := range sub.Data {
        switch v := value.(type) {
        case []interface{}:
            for _, item := range v {
                values.Add(name, FormatFieldValue(item))
            }
        default:
            values.Set(name, FormatFieldValue(v))
        }
    }
    return values
}
