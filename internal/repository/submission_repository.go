package repository

import (
    "database/sql"
    "encoding/json"
    "fmt"
    "time"

    "github.com/cleanforms/cleanforms-backend/internal/model"
)

// SubmissionRepositoryInterface defines methods used by the pipeline and
// the admin read endpoints
type SubmissionRepositoryInterface interface {
    Create(s *model.Submission) error
    GetByID(id int) (*model.Submission, error)
    ListByForm(formID, offset, limit int, spam *bool) ([]model.Submission, int, error)
}

// SubmissionRepository is the concrete implementation. Submissions are
// append-only: there is deliberately no Update or Delete here.
type SubmissionRepository struct {
    DB *sql.DB
}

// Create inserts a new submission and returns the assigned ID
func (r *SubmissionRepository) Create(s *model.Submission) error {
    if s.SubmittedAt.IsZero() {
        s.SubmittedAt = time.Now()
    }
    data, err := json.Marshal(s.Data)
    if err != nil {
        return err
    }
    query := `
        INSERT INTO submissions
        (form_id, data, user_agent, ip_address, referer_url, is_spam, submitted_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
    return r.DB.QueryRow(
        query,
        s.FormID,
        data,
        s.UserAgent,
        s.IPAddress,
        s.RefererURL,
        s.IsSpam,
        s.SubmittedAt,
    ).Scan(&s.ID)
}

// GetByID fetches a submission by its ID
func (r *SubmissionRepository) GetByID(id int) (*model.Submission, error) {
    query := `
        SELECT id, form_id, data, user_agent, ip_address, referer_url, is_spam, submitted_at, modified_at
        FROM submissions
        WHERE id=$1
    `
    var s model.Submission
    var data []byte
    err := r.DB.QueryRow(query, id).Scan(
        &s.ID,
        &s.FormID,
        &data,
        &s.UserAgent,
        &s.IPAddress,
        &s.RefererURL,
        &s.IsSpam,
        &s.SubmittedAt,
        &s.ModifiedAt,
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, nil
        }
        return nil, err
    }
    if err := json.Unmarshal(data, &s.Data); err != nil {
        return nil, err
    }
    return &s, nil
}

// ListByForm fetches submissions for a form with pagination, optionally
// filtered by the spam flag
func (r *SubmissionRepository) ListByForm(formID, offset, limit int, spam *bool) ([]model.Submission, int, error) {
    submissions := []model.Submission{}
    query := `SELECT id, form_id, data, user_agent, ip_address, referer_url, is_spam, submitted_at, modified_at
              FROM submissions WHERE form_id=$1`
    args := []interface{}{formID}
    argPos := 2

    if spam != nil {
        query += fmt.Sprintf(" AND is_spam=$%d", argPos)
        args = append(args, *spam)
        argPos++
    }

    query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
    args = append(args, limit, offset)

    rows, err := r.DB.Query(query, args...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    for rows.Next() {
        var s model.Submission
        var data []byte
        if err := rows.Scan(&s.ID, &s.FormID, &data, &s.UserAgent, &s.IPAddress, &s.RefererURL, &s.IsSpam, &s.SubmittedAt, &s.ModifiedAt); err != nil {
            return nil, 0, err
        }
        if err := json.Unmarshal(data, &s.Data); err != nil {
            return nil, 0, err
        }
        submissions = append(submissions, s)
    }

    countQuery := `SELECT COUNT(*) FROM submissions WHERE form_id=$1`
    argsCount := []interface{}{formID}
    if spam != nil {
        countQuery += " AND is_spam=$2"
        argsCount = append(argsCount, *spam)
    }

    var total int
    if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
        return nil, 0, err
    }

    return submissions, total, nil
}

var _ SubmissionRepositoryInterface = (*SubmissionRepository)(nil)
