// internal/handler/submission_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cleanforms/cleanforms-backend/internal/repository"
)

// SubmissionHandler holds the dependencies for the submission read
// endpoints consumed by the admin UI
type SubmissionHandler struct {
	Repo repository.SubmissionRepositoryInterface
}

// GetSubmissionHandler returns a single submission by ID
func (h *SubmissionHandler) GetSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid submission id", http.StatusBadRequest)
		return
	}

	sub, err := h.Repo.GetByID(id)
	if err != nil {
		http.Error(w, "failed to fetch submission: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if sub == nil {
		http.Error(w, "submission not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sub)
}

// ListSubmissionsHandler returns a paginated list of a form's
// submissions, optionally filtered by the spam flag
func (h *SubmissionHandler) ListSubmissionsHandler(w http.ResponseWriter, r *http.Request) {
	formIDStr := chi.URLParam(r, "formID")
	formID, err := strconv.Atoi(formIDStr)
	if err != nil {
		http.Error(w, "invalid form id", http.StatusBadRequest)
		return
	}

	page := 1
	pageSize := 20
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && ps > 0 {
		pageSize = ps
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var spam *bool
	if v := r.URL.Query().Get("spam"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			spam = &b
		}
	}

	submissions, total, err := h.Repo.ListByForm(formID, (page-1)*pageSize, pageSize, spam)
	if err != nil {
		http.Error(w, "failed to fetch submissions: "+err.Error(), http.StatusInternalServerError)
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": submissions,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": totalPages,
		},
	})
}
