// internal/model/submission.go
package model

import "time"

// FieldMap is submitted field data keyed by field name. Values are
// scalars, []interface{} for multi-value fields, or map[string]interface{}
// for uploaded-file metadata ({url, name, size}).
type FieldMap map[string]interface{}

// Submission is one accepted form submission. Rows are append-only: this
// service never mutates or deletes them (admin edits happen elsewhere and
// set modified_at).
type Submission struct {
    ID          int        `db:"id" json:"id"`
    FormID      int        `db:"form_id" json:"form_id"`
    Data        FieldMap   `db:"data" json:"data"`
    UserAgent   string     `db:"user_agent" json:"user_agent"`
    IPAddress   string     `db:"ip_address" json:"ip_address"`
    RefererURL  string     `db:"referer_url" json:"referer_url"`
    IsSpam      bool       `db:"is_spam" json:"is_spam"`
    SubmittedAt time.Time  `db:"submitted_at" json:"submitted_at"`
    ModifiedAt  *time.Time `db:"modified_at" json:"modified_at,omitempty"`
}
