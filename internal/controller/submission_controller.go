// internal/controller/submission_controller.go
package controller

import (
    "encoding/json"
    "log"
    "net/http"
    "strconv"
    "strings"

    "github.com/go-chi/chi/v5"

    "github.com/cleanforms/cleanforms-backend/internal/model"
    "github.com/cleanforms/cleanforms-backend/internal/service"
)

type SubmissionController struct {
    SubmissionService *service.SubmissionService
    Tokens            *service.TokenStore
}

// HandleSubmit is the public intake endpoint. The response is always
// HTTP 200 with the outcome in the payload, so script consumers deal
// with exactly one channel shape. A tripped honeypot answers 200 with an
// empty body.
func (c *SubmissionController) HandleSubmit(w http.ResponseWriter, r *http.Request) {
    formIDStr := chi.URLParam(r, "formID")
    formID, err := strconv.Atoi(formIDStr)
    if err != nil {
        http.Error(w, "invalid form id", http.StatusBadRequest)
        return
    }

    raw, err := parseFields(r)
    if err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }

    ctx := service.NewRequestContext(r)
    result, err := c.SubmissionService.ProcessSubmission(formID, raw, ctx)
    if err != nil {
        log.Println("⚠️ submission processing error:", err)
        w.Header().Set("Content-Type", "application/json")
        json.NewEncoder(w).Encode(service.Response{Message: service.ResponseMessage{
            Type: "error",
            Text: model.Messages(nil).Text(service.CodeError),
        }})
        return
    }

    if result.Response == nil {
        // honeypot: acknowledge with nothing
        w.WriteHeader(http.StatusOK)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(result.Response)
}

// HandleToken issues a session token plus the math-captcha question for
// a freshly rendered form.
func (c *SubmissionController) HandleToken(w http.ResponseWriter, r *http.Request) {
    tok, question := c.Tokens.Issue()

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "token":    tok.Token,
        "question": question,
    })
}

// parseFields accepts either a JSON object or a classic form-encoded
// body and produces the raw field map.
func parseFields(r *http.Request) (model.FieldMap, error) {
    contentType := r.Header.Get("Content-Type")
    if strings.Contains(contentType, "application/json") {
        var raw model.FieldMap
        if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
            return nil, err
        }
        return raw, nil
    }

    if err := r.ParseForm(); err != nil {
        return nil, err
    }
    raw := make(model.FieldMap, len(r.PostForm))
    for name, values := range r.PostForm {
        if len(values) == 1 {
            raw[name] = values[0]
            continue
        }
        multi := make([]interface{}, len(values))
        for i, v := range values {
            multi[i] = v
        }
        raw[name] = multi
    }
    return raw, nil
}
