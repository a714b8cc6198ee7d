// internal/service/dispatcher.go
package service

import (
    "fmt"
    "log"

    "github.com/cleanforms/cleanforms-backend/internal/model"
)

// Dispatch outcomes.
const (
    OutcomeSent    = "sent"
    OutcomeFailed  = "failed"
    OutcomeSkipped = "skipped"
)

// DispatchResult is the recorded outcome of one channel invocation.
type DispatchResult struct {
    Type    string `json:"type"`
    Index   int    `json:"index"`
    Outcome string `json:"outcome"`
    Err     string `json:"error,omitempty"`
}

// ChannelHandler processes one configured action for a submission.
type ChannelHandler interface {
    Type() string
    Process(action model.Action, sub *model.Submission, form *model.Form, ctx *RequestContext) DispatchResult
}

// Dispatcher invokes the form's actions in list order. Handlers are held
// in an explicitly constructed registry; one channel failing never stops
// the channels after it.
type Dispatcher struct {
    handlers map[string]ChannelHandler
}

func NewDispatcher(handlers ...ChannelHandler) *Dispatcher {
    d := &Dispatcher{handlers: make(map[string]ChannelHandler, len(handlers))}
    for _, h := range handlers {
        d.handlers[h.Type()] = h
    }
    return d
}

// Dispatch runs every configured action and aggregates per-channel
// results so callers can inspect all outcomes, not just the last one.
func (d *Dispatcher) Dispatch(form *model.Form, sub *model.Submission, ctx *RequestContext) []DispatchResult {
    results := make([]DispatchResult, 0, len(form.Settings.Actions))
    for _, action := range form.Settings.Actions {
        handler, ok := d.handlers[action.Type]
        if !ok {
            log.Println("⚠️ no handler registered for action type:", action.Type)
            results = append(results, DispatchResult{
                Type:    action.Type,
                Index:   action.Index,
                Outcome: OutcomeFailed,
                Err:     fmt.Sprintf("no handler registered for type %q", action.Type),
            })
            continue
        }
        results = append(results, d.invoke(handler, action, sub, form, ctx))
    }
    return results
}

// invoke isolates one handler call, turning a panic into a failed result
// so sibling channels still run.
func (d *Dispatcher) invoke(handler ChannelHandler, action model.Action, sub *model.Submission, form *model.Form, ctx *RequestContext) (result DispatchResult) {
    defer func() {
        if r := recover(); r != nil {
            log.Println("⚠️ channel handler panicked:", action.Type, r)
            result = DispatchResult{
                Type:    action.Type,
                Index:   action.Index,
                Outcome: OutcomeFailed,
                Err:     fmt.Sprintf("handler panic: %v", r),
            }
        }
    }()
    result = handler.Process(action, sub, form, ctx)
    result.Type = action.Type
    result.Index = action.Index
    return result
}
