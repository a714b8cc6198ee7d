// internal/model/delivery_log.go
package model

import "time"

// Delivery log statuses. A row is inserted as pending before the
// transport call and flipped to sent or failed afterwards.
const (
    DeliveryStatusPending = "pending"
    DeliveryStatusSent    = "sent"
    DeliveryStatusFailed  = "failed"
)

// DeliveryLogEntry is the audit row for one email-type dispatch attempt.
// SubmissionID is nullable: dispatch can run for forms that do not save
// submissions, in which case there is no row to point at.
type DeliveryLogEntry struct {
    ID           int       `db:"id" json:"id"`
    SubmissionID *int      `db:"submission_id" json:"submission_id,omitempty"`
    FormID       int       `db:"form_id" json:"form_id"`
    ToEmail      string    `db:"to_email" json:"to_email"`
    FromEmail    string    `db:"from_email" json:"from_email"`
    Subject      string    `db:"subject" json:"subject"`
    Message      string    `db:"message" json:"message"`
    Headers      []string  `db:"headers" json:"headers,omitempty"`
    Status       string    `db:"status" json:"status"`
    ErrorMessage string    `db:"error_message" json:"error_message,omitempty"`
    ActionType   string    `db:"action_type" json:"action_type"` // email or autoresponder
    SentAt       time.Time `db:"sent_at" json:"sent_at"`
    UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
