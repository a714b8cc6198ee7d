// internal/service/autoresponder_action.go
package service

import (
    "net/mail"
    "strings"

    "github.com/cleanforms/cleanforms-backend/internal/model"
    "github.com/cleanforms/cleanforms-backend/internal/repository"
)

// AutoresponderHandler emails the submitter back. Same mechanics as the
// email channel, except the recipient comes from a submission field: when
// that field is empty or not a valid address the handler reports skipped
// and leaves no trace in the delivery log.
type AutoresponderHandler struct {
    Log  repository.DeliveryLogRepositoryInterface
    Send SendFunc
    Tags *TagRegistry
}

func (h *AutoresponderHandler) Type() string { return model.ActionTypeAutoresponder }

func (h *AutoresponderHandler) Process(action model.Action, sub *model.Submission, form *model.Form, ctx *RequestContext) DispatchResult {
    cfg := action.Autoresponder

    to, _ := sub.Data[cfg.EmailField].(string)
    to = strings.TrimSpace(to)
    if to == "" {
        return DispatchResult{Outcome: OutcomeSkipped}
    }
    if _, err := mail.ParseAddress(to); err != nil {
        return DispatchResult{Outcome: OutcomeSkipped}
    }

    entry := buildEmailEntry(emailTemplate{
        From:        cfg.From,
        To:          to,
        ReplyTo:     cfg.ReplyTo,
        Subject:     cfg.Subject,
        Message:     cfg.Message,
        ContentType: cfg.ContentType,
        Headers:     cfg.Headers,
    }, model.ActionTypeAutoresponder, sub, form, ctx, h.Tags)

    return deliverEmail(h.Log, h.Send, entry)
}
