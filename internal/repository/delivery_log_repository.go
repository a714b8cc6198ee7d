package repository

import (
    "database/sql"
    "fmt"
    "time"

    "github.com/lib/pq"

    "github.com/cleanforms/cleanforms-backend/internal/model"
)

// DeliveryLogFilter narrows List queries for the admin endpoints
type DeliveryLogFilter struct {
    SubmissionID *int
    FormID       *int
    Status       string
    From         *time.Time
    To           *time.Time
}

// DeliveryLogRepositoryInterface defines the methods the channel handlers
// and the resend worker need
type DeliveryLogRepositoryInterface interface {
    Create(e *model.DeliveryLogEntry) error
    UpdateStatus(id int, status, errorMessage string) error
    GetByID(id int) (*model.DeliveryLogEntry, error)
    List(filter DeliveryLogFilter, offset, limit int) ([]model.DeliveryLogEntry, int, error)
}

// DeliveryLogRepository is the concrete implementation
type DeliveryLogRepository struct {
    DB *sql.DB
}

// Create inserts a new delivery log row and returns the created ID. The
// row is expected to arrive with status=pending, before any transport
// attempt.
func (r *DeliveryLogRepository) Create(e *model.DeliveryLogEntry) error {
    now := time.Now()
    if e.SentAt.IsZero() {
        e.SentAt = now
    }
    e.UpdatedAt = now
    if e.Status == "" {
        e.Status = model.DeliveryStatusPending
    }

    query := `
        INSERT INTO delivery_log
        (submission_id, form_id, to_email, from_email, subject, message, headers, status, error_message, action_type, sent_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id
    `
    return r.DB.QueryRow(
        query,
        e.SubmissionID,
        e.FormID,
        e.ToEmail,
        e.FromEmail,
        e.Subject,
        e.Message,
        pq.Array(e.Headers),
        e.Status,
        e.ErrorMessage,
        e.ActionType,
        e.SentAt,
        e.UpdatedAt,
    ).Scan(&e.ID)
}

// UpdateStatus flips a row to sent or failed, capturing the transport
// error string on failure
func (r *DeliveryLogRepository) UpdateStatus(id int, status, errorMessage string) error {
    query := `UPDATE delivery_log SET status=$1, error_message=$2, updated_at=NOW() WHERE id=$3`
    _, err := r.DB.Exec(query, status, errorMessage, id)
    return err
}

// GetByID fetches a delivery log entry by its ID
func (r *DeliveryLogRepository) GetByID(id int) (*model.DeliveryLogEntry, error) {
    query := `
        SELECT id, submission_id, form_id, to_email, from_email, subject, message, headers, status, error_message, action_type, sent_at, updated_at
        FROM delivery_log
        WHERE id=$1
    `
    var e model.DeliveryLogEntry
    err := r.DB.QueryRow(query, id).Scan(
        &e.ID,
        &e.SubmissionID,
        &e.FormID,
        &e.ToEmail,
        &e.FromEmail,
        &e.Subject,
        &e.Message,
        pq.Array(&e.Headers),
        &e.Status,
        &e.ErrorMessage,
        &e.ActionType,
        &e.SentAt,
        &e.UpdatedAt,
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, nil
        }
        return nil, err
    }
    return &e, nil
}

// List fetches delivery log entries matching the filter, newest first,
// for the admin table view
func (r *DeliveryLogRepository) List(filter DeliveryLogFilter, offset, limit int) ([]model.DeliveryLogEntry, int, error) {
    entries := []model.DeliveryLogEntry{}
    where := " WHERE 1=1"
    args := []interface{}{}
    argPos := 1

    if filter.SubmissionID != nil {
        where += fmt.Sprintf(" AND submission_id=$%d", argPos)
        args = append(args, *filter.SubmissionID)
        argPos++
    }
    if filter.FormID != nil {
        where += fmt.Sprintf(" AND form_id=$%d", argPos)
        args = append(args, *filter.FormID)
        argPos++
    }
    if filter.Status != "" {
        where += fmt.Sprintf(" AND status=$%d", argPos)
        args = append(args, filter.Status)
        argPos++
    }
    if filter.From != nil {
        where += fmt.Sprintf(" AND sent_at >= $%d", argPos)
        args = append(args, *filter.From)
        argPos++
    }
    if filter.To != nil {
        where += fmt.Sprintf(" AND sent_at <= $%d", argPos)
        args = append(args, *filter.To)
        argPos++
    }

    query := `SELECT id, submission_id, form_id, to_email, from_email, subject, message, headers, status, error_message, action_type, sent_at, updated_at
              FROM delivery_log` + where
    query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
    argsList := append(append([]interface{}{}, args...), limit, offset)

    rows, err := r.DB.Query(query, argsList...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    for rows.Next() {
        var e model.DeliveryLogEntry
        if err := rows.Scan(&e.ID, &e.SubmissionID, &e.FormID, &e.ToEmail, &e.FromEmail, &e.Subject, &e.Message, pq.Array(&e.Headers), &e.Status, &e.ErrorMessage, &e.ActionType, &e.SentAt, &e.UpdatedAt); err != nil {
            return nil, 0, err
        }
        entries = append(entries, e)
    }

    var total int
    countQuery := `SELECT COUNT(*) FROM delivery_log` + where
    if err := r.DB.QueryRow(countQuery, args...).Scan(&total); err != nil {
        return nil, 0, err
    }

    return entries, total, nil
}

var _ DeliveryLogRepositoryInterface = (*DeliveryLogRepository)(nil)
