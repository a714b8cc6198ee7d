package repository

import (
    "database/sql"
    "encoding/json"

    appErrors "github.com/cleanforms/cleanforms-backend/internal/errors"
    "github.com/cleanforms/cleanforms-backend/internal/model"
)

// FormRepositoryInterface defines the form lookups the pipeline needs
type FormRepositoryInterface interface {
    GetByID(id int) (*model.Form, error)
    GetBySlug(slug string) (*model.Form, error)
    Create(f *model.Form) error
    CountSubmissions(formID int) (int, error)
}

// FormRepository is the concrete implementation
type FormRepository struct {
    DB *sql.DB
}

func (r *FormRepository) Create(f *model.Form) error {
    settings, err := json.Marshal(f.Settings)
    if err != nil {
        return err
    }
    messages, err := json.Marshal(f.Messages)
    if err != nil {
        return err
    }
    query := `
        INSERT INTO forms (title, slug, markup, settings, messages, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id, created_at
    `
    return r.DB.QueryRow(query, f.Title, f.Slug, f.Markup, settings, messages).
        Scan(&f.ID, &f.CreatedAt)
}

func (r *FormRepository) GetByID(id int) (*model.Form, error) {
    query := `
        SELECT id, title, slug, markup, settings, messages, created_at, updated_at
        FROM forms WHERE id=$1
    `
    return r.scanForm(r.DB.QueryRow(query, id), id)
}

func (r *FormRepository) GetBySlug(slug string) (*model.Form, error) {
    query := `
        SELECT id, title, slug, markup, settings, messages, created_at, updated_at
        FROM forms WHERE slug=$1
    `
    return r.scanForm(r.DB.QueryRow(query, slug), 0)
}

// scanForm decodes the settings/messages JSONB columns. Action shapes are
// validated here, at load time, so the dispatcher can trust them.
func (r *FormRepository) scanForm(row *sql.Row, id int) (*model.Form, error) {
    var f model.Form
    var settings, messages []byte
    err := row.Scan(&f.ID, &f.Title, &f.Slug, &f.Markup, &settings, &messages, &f.CreatedAt, &f.UpdatedAt)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, appErrors.NewFormNotFound(id)
        }
        return nil, err
    }
    if err := json.Unmarshal(settings, &f.Settings); err != nil {
        return nil, err
    }
    if len(messages) > 0 {
        if err := json.Unmarshal(messages, &f.Messages); err != nil {
            return nil, err
        }
    }
    return &f, nil
}

// CountSubmissions backs the submission_limit setting
func (r *FormRepository) CountSubmissions(formID int) (int, error) {
    var count int
    err := r.DB.QueryRow(`SELECT COUNT(*) FROM submissions WHERE form_id=$1 AND is_spam=false`, formID).Scan(&count)
    if err != nil {
        return 0, err
    }
    return count, nil
}

var _ FormRepositoryInterface = (*FormRepository)(nil)
