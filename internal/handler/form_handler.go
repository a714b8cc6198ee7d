// internal/handler/form_handler.go
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cleanforms/cleanforms-backend/internal/model"
	"github.com/cleanforms/cleanforms-backend/internal/repository"
)

// FormHandler serves form definitions: the public render fetch used by
// embedding clients, and the admin create endpoint
type FormHandler struct {
	Repo repository.FormRepositoryInterface
}

// GetFormHandler returns the renderable part of a form, looked up by
// slug. Settings and messages stay server-side; the client only needs
// the markup and whether a session token must be fetched first.
func (h *FormHandler) GetFormHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	form, err := h.Repo.GetBySlug(slug)
	if err != nil {
		http.Error(w, "form not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":          form.ID,
		"title":       form.Title,
		"markup":      form.Markup,
		"needs_token": form.Settings.RequireSessionToken || form.Settings.EnableMathCaptcha,
		"hide_after":  form.Settings.HideAfterSuccess,
	})
}

// CreateFormHandler stores a new form definition
func (h *FormHandler) CreateFormHandler(w http.ResponseWriter, r *http.Request) {
	var form model.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if form.Title == "" || form.Slug == "" {
		http.Error(w, "title and slug are required", http.StatusBadRequest)
		return
	}

	if err := h.Repo.Create(&form); err != nil {
		http.Error(w, "failed to create form: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(&form)
}
