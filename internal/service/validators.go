// internal/service/validators.go
package service

import (
    "log"
    "net/mail"
    "strings"

    "github.com/cleanforms/cleanforms-backend/internal/model"
)

// Error codes returned by validators. Each doubles as the key into the
// form's user-facing message map.
const (
    CodeRequiredFieldMissing   = "required_field_missing"
    CodeInvalidEmail           = "invalid_email"
    CodeSpam                   = "spam"
    CodeRecaptchaFailed        = "recaptcha_failed"
    CodeRecaptchaLowScore      = "recaptcha_low_score"
    CodeTurnstileFailed        = "turnstile_failed"
    CodeMathCaptchaFailed      = "math_captcha_failed"
    CodeFileTooLarge           = "file_too_large"
    CodeFileInvalidExtension   = "file_invalid_extension"
    CodeFileUploadError        = "file_upload_error"
    CodeSubmissionLimitReached = "submission_limit_reached"
    CodeRequireUserLoggedIn    = "require_user_logged_in"
    CodeStaleSession           = "stale_session"
    CodeError                  = "error"
)

// Validator inspects normalized submission data and returns an error
// code, or "" to pass. Validators receive the code produced so far and
// must not overwrite a non-empty one.
type Validator interface {
    Validate(code string, form *model.Form, data model.FieldMap, ctx *RequestContext) string
}

// ValidationChain runs validators in registration order and
// short-circuits on the first non-empty code.
type ValidationChain struct {
    validators []Validator
}

func NewValidationChain(validators ...Validator) *ValidationChain {
    return &ValidationChain{validators: validators}
}

func (c *ValidationChain) Run(form *model.Form, data model.FieldMap, ctx *RequestContext) string {
    code := ""
    for _, v := range c.validators {
        if code != "" {
            break
        }
        code = v.Validate(code, form, data, ctx)
    }
    return code
}

// splitFieldList parses a "a,b,c" settings value into field names.
func splitFieldList(list string) []string {
    if strings.TrimSpace(list) == "" {
        return nil
    }
    parts := strings.Split(list, ",")
    names := make([]string, 0, len(parts))
    for _, p := range parts {
        if name := strings.TrimSpace(p); name != "" {
            names = append(names, name)
        }
    }
    return names
}

// fieldHasValue reports whether a submitted value counts as present:
// non-whitespace strings, arrays with at least one truthy entry, and
// file-metadata objects.
func fieldHasValue(value interface{}) bool {
    switch v := value.(type) {
    case nil:
        return false
    case string:
        return strings.TrimSpace(v) != ""
    case []interface{}:
        for _, item := range v {
            if fieldHasValue(item) {
                return true
            }
        }
        return false
    case map[string]interface{}:
        return len(v) > 0
    default:
        return true
    }
}

// RequiredFieldsValidator rejects when any name in required_fields is
// absent or empty.
type RequiredFieldsValidator struct{}

func (RequiredFieldsValidator) Validate(code string, form *model.Form, data model.FieldMap, ctx *RequestContext) string {
    if code != "" {
        return code
    }
    for _, name := range splitFieldList(form.Settings.RequiredFields) {
        if !fieldHasValue(data[name]) {
            return CodeRequiredFieldMissing
        }
    }
    return ""
}

// EmailFieldsValidator rejects syntactically invalid addresses in
// email_fields. Empty values pass; an empty email field is optional.
type EmailFieldsValidator struct{}

func (EmailFieldsValidator) Validate(code string, form *model.Form, data model.FieldMap, ctx *RequestContext) string {
    if code != "" {
        return code
    }
    for _, name := range splitFieldList(form.Settings.EmailFields) {
        value, _ := data[name].(string)
        if value == "" {
            continue
        }
        if _, err := mail.ParseAddress(value); err != nil {
            return CodeInvalidEmail
        }
    }
    return ""
}

// RequireLoginValidator rejects anonymous submissions on forms that
// require an authenticated user.
type RequireLoginValidator struct{}

func (RequireLoginValidator) Validate(code string, form *model.Form, data model.FieldMap, ctx *RequestContext) string {
    if code != "" {
        return code
    }
    if form.Settings.RequireLogin && ctx.UserID == 0 {
        return CodeRequireUserLoggedIn
    }
    return ""
}

// SubmissionCounter is the slice of the form repository the limit
// validator needs.
type SubmissionCounter interface {
    CountSubmissions(formID int) (int, error)
}

// SubmissionLimitValidator closes a form once submission_limit accepted
// submissions exist.
type SubmissionLimitValidator struct {
    Counter SubmissionCounter
}

func (v SubmissionLimitValidator) Validate(code string, form *model.Form, data model.FieldMap, ctx *RequestContext) string {
    if code != "" {
        return code
    }
    limit := form.Settings.SubmissionLimit
    if limit <= 0 {
        return ""
    }
    count, err := v.Counter.CountSubmissions(form.ID)
    if err != nil {
        log.Println("⚠️ submission count query failed:", err)
        return CodeError
    }
    if count >= limit {
        return CodeSubmissionLimitReached
    }
    return ""
}
