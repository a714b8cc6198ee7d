// internal/service/email_action.go
package service

import (
    "log"
    "strings"

    "gopkg.in/gomail.v2"

    "github.com/cleanforms/cleanforms-backend/internal/model"
    "github.com/cleanforms/cleanforms-backend/internal/repository"
)

// SendFunc performs the actual email transport for a delivery log entry.
// Injected so tests and the resend worker can swap it out.
type SendFunc func(e *model.DeliveryLogEntry) error

// ContentTypeHTML and ContentTypePlain are the supported email body
// modes.
const (
    ContentTypeHTML  = "text/html"
    ContentTypePlain = "text/plain"
)

// EmailHandler delivers the submission to a static recipient. Every
// attempt gets a delivery log row: pending before transport, sent or
// failed after.
type EmailHandler struct {
    Log  repository.DeliveryLogRepositoryInterface
    Send SendFunc
    Tags *TagRegistry
}

func (h *EmailHandler) Type() string { return model.ActionTypeEmail }

func (h *EmailHandler) Process(action model.Action, sub *model.Submission, form *model.Form, ctx *RequestContext) DispatchResult {
    cfg := action.Email
    entry := buildEmailEntry(emailTemplate{
        From:        cfg.From,
        To:          cfg.To,
        ReplyTo:     cfg.ReplyTo,
        Subject:     cfg.Subject,
        Message:     cfg.Message,
        ContentType: cfg.ContentType,
        Headers:     cfg.Headers,
    }, model.ActionTypeEmail, sub, form, ctx, h.Tags)

    return deliverEmail(h.Log, h.Send, entry)
}

// emailTemplate is the shared pre-render shape of the email and
// autoresponder configs.
type emailTemplate struct {
    From        string
    To          string
    ReplyTo     string
    Subject     string
    Message     string
    ContentType string
    Headers     []string
}

// buildEmailEntry renders the templates against the submission and packs
// the result into a delivery log entry ready for transport.
func buildEmailEntry(tmpl emailTemplate, actionType string, sub *model.Submission, form *model.Form, ctx *RequestContext, tags *TagRegistry) *model.DeliveryLogEntry {
    contentType := tmpl.ContentType
    if contentType != ContentTypePlain {
        contentType = ContentTypeHTML
    }
    bodyMode := StripTags
    if contentType == ContentTypeHTML {
        bodyMode = EscapeHTML
    }

    render := func(s string, mode EscapeMode) string {
        return RenderFields(tags.Substitute(s, ctx), sub, mode)
    }

    headers := []string{"Content-Type: " + contentType + "; charset=UTF-8"}
    if tmpl.ReplyTo != "" {
        headers = append(headers, "Reply-To: "+render(tmpl.ReplyTo, EscapeNone))
    }
    for _, raw := range tmpl.Headers {
        headers = append(headers, render(raw, EscapeNone))
    }

    var submissionID *int
    if sub.ID != 0 {
        id := sub.ID
        submissionID = &id
    }

    return &model.DeliveryLogEntry{
        SubmissionID: submissionID,
        FormID:       form.ID,
        ToEmail:      render(tmpl.To, EscapeNone),
        FromEmail:    render(tmpl.From, EscapeNone),
        Subject:      render(tmpl.Subject, StripTags),
        Message:      render(tmpl.Message, bodyMode),
        Headers:      headers,
        Status:       model.DeliveryStatusPending,
        ActionType:   actionType,
    }
}

// deliverEmail records the pending row, attempts transport, and flips
// the row to sent or failed. The pending row must exist before the
// transport call; without it the delivery would be uninspectable and
// unresendable, so a failed insert aborts the dispatch.
func deliverEmail(logRepo repository.DeliveryLogRepositoryInterface, send SendFunc, entry *model.DeliveryLogEntry) DispatchResult {
    if err := logRepo.Create(entry); err != nil {
        log.Println("⚠️ failed to create delivery log row:", err)
        return DispatchResult{Outcome: OutcomeFailed, Err: "delivery log unavailable: " + err.Error()}
    }

    if err := send(entry); err != nil {
        if uerr := logRepo.UpdateStatus(entry.ID, model.DeliveryStatusFailed, err.Error()); uerr != nil {
            log.Println("⚠️ failed to update delivery log row:", uerr)
        }
        return DispatchResult{Outcome: OutcomeFailed, Err: err.Error()}
    }

    if err := logRepo.UpdateStatus(entry.ID, model.DeliveryStatusSent, ""); err != nil {
        log.Println("⚠️ failed to update delivery log row:", err)
    }
    return DispatchResult{Outcome: OutcomeSent}
}

// EntryContentType extracts the body content type from an entry's header
// list, defaulting to plain text.
func EntryContentType(e *model.DeliveryLogEntry) string {
    for _, h := range e.Headers {
        name, value, ok := strings.Cut(h, ":")
        if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Type") {
            continue
        }
        if strings.Contains(strings.ToLower(value), ContentTypeHTML) {
            return ContentTypeHTML
        }
    }
    return ContentTypePlain
}

// NewGomailSender builds the production SendFunc on top of an SMTP
// dialer.
func NewGomailSender(host string, port int, user, password string) SendFunc {
    dialer := gomail.NewDialer(host, port, user, password)
    return func(e *model.DeliveryLogEntry) error {
        m := gomail.NewMessage()
        m.SetHeader("From", e.FromEmail)
        m.SetHeader("To", e.ToEmail)
        m.SetHeader("Subject", e.Subject)
        for _, h := range e.Headers {
            name, value, ok := strings.Cut(h, ":")
            if !ok || strings.EqualFold(strings.TrimSpace(name), "Content-Type") {
                continue
            }
            m.SetHeader(strings.TrimSpace(name), strings.TrimSpace(value))
        }
        m.SetBody(EntryContentType(e), e.Message)
        return dialer.DialAndSend(m)
    }
}
