// internal/model/action.go
package model

import (
    "encoding/json"
    "fmt"
)

// Action types known to the dispatcher.
const (
    ActionTypeEmail         = "email"
    ActionTypeAutoresponder = "autoresponder"
    ActionTypeWebhook       = "webhook"
)

// Action is one configured notification channel on a form. Exactly one of
// the variant pointers is set, matching Type; the shape is validated when
// the form is loaded so the dispatcher never has to re-check it.
type Action struct {
    Type  string `json:"type"`
    Index int    `json:"-"` // position in the form's action list

    Email         *EmailAction         `json:"-"`
    Autoresponder *AutoresponderAction `json:"-"`
    Webhook       *WebhookAction       `json:"-"`
}

// EmailAction sends a notification to a static recipient.
type EmailAction struct {
    From        string   `json:"from"`
    To          string   `json:"to"`
    ReplyTo     string   `json:"reply_to,omitempty"`
    Subject     string   `json:"subject"`
    Message     string   `json:"message"`
    ContentType string   `json:"content_type,omitempty"` // text/html or text/plain
    Headers     []string `json:"headers,omitempty"`
}

// AutoresponderAction emails the submitter; the recipient address is read
// from a submission field instead of a static address.
type AutoresponderAction struct {
    From        string   `json:"from"`
    EmailField  string   `json:"email_field"`
    ReplyTo     string   `json:"reply_to,omitempty"`
    Subject     string   `json:"subject"`
    Message     string   `json:"message"`
    ContentType string   `json:"content_type,omitempty"`
    Headers     []string `json:"headers,omitempty"`
}

// WebhookAction POSTs the submission data to an external URL.
type WebhookAction struct {
    URL             string `json:"url"`
    ContentType     string `json:"content_type,omitempty"` // json or form
    AuthHeaderName  string `json:"auth_header_name,omitempty"`
    AuthHeaderValue string `json:"auth_header_value,omitempty"`
}

// UnmarshalJSON decodes the loose {type, ...settings} shape stored on the
// form into the matching variant and validates it.
func (a *Action) UnmarshalJSON(b []byte) error {
    var head struct {
        Type string `json:"type"`
    }
    if err := json.Unmarshal(b, &head); err != nil {
        return err
    }
    a.Type = head.Type

    switch head.Type {
    case ActionTypeEmail:
        var e EmailAction
        if err := json.Unmarshal(b, &e); err != nil {
            return err
        }
        // "from_email" is the legacy key name for "from"
        if e.From == "" {
            var legacy struct {
                FromEmail string `json:"from_email"`
            }
            json.Unmarshal(b, &legacy)
            e.From = legacy.FromEmail
        }
        if e.To == "" {
            return fmt.Errorf("email action: missing to address")
        }
        a.Email = &e
    case ActionTypeAutoresponder:
        var ar AutoresponderAction
        if err := json.Unmarshal(b, &ar); err != nil {
            return err
        }
        if ar.EmailField == "" {
            return fmt.Errorf("autoresponder action: missing email_field")
        }
        a.Autoresponder = &ar
    case ActionTypeWebhook:
        var w WebhookAction
        if err := json.Unmarshal(b, &w); err != nil {
            return err
        }
        if w.URL == "" {
            return fmt.Errorf("webhook action: missing url")
        }
        if w.ContentType == "" {
            w.ContentType = "json"
        }
        if w.ContentType != "json" && w.ContentType != "form" {
            return fmt.Errorf("webhook action: unsupported content_type %q", w.ContentType)
        }
        a.Webhook = &w
    default:
        return fmt.Errorf("unknown action type %q", head.Type)
    }
    return nil
}

// MarshalJSON writes the variant back out in the persisted {type, ...}
// shape.
func (a Action) MarshalJSON() ([]byte, error) {
    var settings interface{}
    switch {
    case a.Email != nil:
        settings = a.Email
    case a.Autoresponder != nil:
        settings = a.Autoresponder
    case a.Webhook != nil:
        settings = a.Webhook
    default:
        return nil, fmt.Errorf("action %q has no settings", a.Type)
    }
    raw, err := json.Marshal(settings)
    if err != nil {
        return nil, err
    }
    var merged map[string]interface{}
    if err := json.Unmarshal(raw, &merged); err != nil {
        return nil, err
    }
    merged["type"] = a.Type
    return json.Marshal(merged)
}

// DecodeActions parses the ordered action list of a form's settings and
// assigns stable indexes.
func DecodeActions(raw json.RawMessage) ([]Action, error) {
    if len(raw) == 0 {
        return nil, nil
    }
    var actions []Action
    if err := json.Unmarshal(raw, &actions); err != nil {
        return nil, err
    }
    for i := range actions {
        actions[i].Index = i
    }
    return actions, nil
}
