// internal/service/submission_service.go
package service

import (
    "log"
    "time"

    "github.com/cleanforms/cleanforms-backend/internal/model"
    "github.com/cleanforms/cleanforms-backend/internal/repository"
)

// SubmissionService runs the full pipeline for one submission:
// gate → normalize → validate → persist → dispatch → response. Everything
// happens synchronously inside the request; side effects that already
// ran are never rolled back.
type SubmissionService struct {
    FormRepo       repository.FormRepositoryInterface
    SubmissionRepo repository.SubmissionRepositoryInterface
    Gate           *Gate
    Normalizer     *Normalizer
    Chain          *ValidationChain
    Dispatcher     *Dispatcher
    Tags           *TagRegistry
}

// ProcessResult aggregates everything one request produced. A nil
// Response means the honeypot tripped and the caller must answer with an
// empty body.
type ProcessResult struct {
    Response   *Response
    Code       string
    Submission *model.Submission
    Dispatches []DispatchResult
}

// ProcessSubmission handles one raw request map against the form with
// the given ID.
func (s *SubmissionService) ProcessSubmission(formID int, raw model.FieldMap, ctx *RequestContext) (*ProcessResult, error) {
    form, err := s.FormRepo.GetByID(formID)
    if err != nil {
        return nil, err
    }

    // Bots get nothing: no payload, no side effects.
    if !s.Gate.CheckHoneypot(raw) {
        log.Println("🪤 honeypot tripped, dropping request", ctx.ID)
        return &ProcessResult{}, nil
    }

    ctx.Raw = raw
    if code := s.Gate.VerifySessionToken(form, raw, ctx); code != "" {
        return &ProcessResult{
            Response: BuildResponse(code, form, nil, ctx, s.Tags),
            Code:     code,
        }, nil
    }

    data := s.Normalizer.Normalize(raw, ctx)
    code := s.Chain.Run(form, data, ctx)

    sub := &model.Submission{
        FormID:      form.ID,
        Data:        data,
        UserAgent:   ctx.UserAgent,
        IPAddress:   ctx.IPAddress,
        RefererURL:  ctx.RefererURL,
        IsSpam:      code == CodeSpam,
        SubmittedAt: time.Now(),
    }

    // Spam submissions are kept for human review but skip dispatch; the
    // spam-review UI reads them back via the is_spam flag.
    if code == "" || code == CodeSpam {
        if form.Settings.SaveSubmissions {
            if err := s.SubmissionRepo.Create(sub); err != nil {
                log.Println("⚠️ failed to persist submission:", err)
                return &ProcessResult{
                    Response: BuildResponse(CodeError, form, nil, ctx, s.Tags),
                    Code:     CodeError,
                }, nil
            }
        }
    }

    result := &ProcessResult{Code: code, Submission: sub}
    if code == "" {
        result.Dispatches = s.Dispatcher.Dispatch(form, sub, ctx)
        for _, d := range result.Dispatches {
            if d.Outcome == OutcomeFailed {
                log.Printf("⚠️ action %s[%d] failed: %s\n", d.Type, d.Index, d.Err)
            }
        }
    }

    result.Response = BuildResponse(code, form, sub, ctx, s.Tags)
    return result, nil
}
