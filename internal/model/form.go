// internal/model/form.go
package model

import (
    "encoding/json"
    "time"
)

// Form is a form definition as produced by the builder UI. It is loaded
// once per request and treated as immutable by the pipeline.
type Form struct {
    ID        int          `db:"id" json:"id"`
    Title     string       `db:"title" json:"title"`
    Slug      string       `db:"slug" json:"slug"`
    Markup    string       `db:"markup" json:"markup"`
    Settings  FormSettings `db:"settings" json:"settings"`
    Messages  Messages     `db:"messages" json:"messages"`
    CreatedAt time.Time    `db:"created_at" json:"created_at"`
    UpdatedAt *time.Time   `db:"updated_at" json:"updated_at,omitempty"`
}

// FormSettings is the settings map persisted as JSONB alongside the form.
type FormSettings struct {
    SaveSubmissions     bool     `json:"save_submissions"`
    HideAfterSuccess    bool     `json:"hide_after_success"`
    RedirectURL         string   `json:"redirect_url,omitempty"`
    RequiredFields      string   `json:"required_fields,omitempty"` // comma-list of field names
    EmailFields         string   `json:"email_fields,omitempty"`    // comma-list of field names
    RequireSessionToken bool     `json:"require_session_token"`
    RequireLogin        bool     `json:"require_login"`
    EnableRecaptcha     bool     `json:"enable_recaptcha"`
    RecaptchaMinScore   float64  `json:"recaptcha_min_score,omitempty"`
    EnableTurnstile     bool     `json:"enable_turnstile"`
    EnableMathCaptcha   bool     `json:"enable_math_captcha"`
    EnableSpamCheck     bool     `json:"enable_spam_check"`
    SubmissionLimit     int      `json:"submission_limit,omitempty"` // 0 = unlimited
    Actions             []Action `json:"actions,omitempty"`
}

// UnmarshalJSON routes the actions list through DecodeActions so every
// load path validates the variants and assigns list indexes in one
// place.
func (s *FormSettings) UnmarshalJSON(b []byte) error {
    type settingsAlias FormSettings
    aux := struct {
        *settingsAlias
        Actions json.RawMessage `json:"actions,omitempty"`
    }{settingsAlias: (*settingsAlias)(s)}
    if err := json.Unmarshal(b, &aux); err != nil {
        return err
    }
    actions, err := DecodeActions(aux.Actions)
    if err != nil {
        return err
    }
    s.Actions = actions
    return nil
}

// Messages maps an error code (or "success") to the user-facing text
// configured on the form.
type Messages map[string]string

// Text returns the configured message for code, falling back to a generic
// default so the submitter always gets something readable.
func (m Messages) Text(code string) string {
    if m != nil {
        if txt, ok := m[code]; ok && txt != "" {
            return txt
        }
    }
    if txt, ok := defaultMessages[code]; ok {
        return txt
    }
    return defaultMessages["error"]
}

var defaultMessages = map[string]string{
    "success":                  "Thank you! Your submission has been received.",
    "required_field_missing":   "Please fill in all required fields.",
    "invalid_email":            "Please enter a valid email address.",
    "spam":                     "Thank you! Your submission has been received.",
    "recaptcha_failed":         "We could not verify that you are human.",
    "recaptcha_low_score":      "We could not verify that you are human.",
    "turnstile_failed":         "We could not verify that you are human.",
    "math_captcha_failed":      "The answer to the math question was wrong.",
    "file_too_large":           "The uploaded file is too large.",
    "file_invalid_extension":   "This file type is not allowed.",
    "file_upload_error":        "The file upload failed, please try again.",
    "submission_limit_reached": "This form is no longer accepting submissions.",
    "require_user_logged_in":   "You must be logged in to submit this form.",
    "stale_session":            "Your session expired, please reload the page and try again.",
    "error":                    "Something went wrong, please try again.",
}
