// internal/handler/delivery_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cleanforms/cleanforms-backend/internal/repository"
	"github.com/cleanforms/cleanforms-backend/internal/service"
)

// DeliveryHandler holds the dependencies for the delivery-log endpoints
// consumed by the admin UI
type DeliveryHandler struct {
	Service *service.DeliveryService
}

// ListDeliveriesHandler returns delivery log entries filtered by
// submission, form, status and date range
func (h *DeliveryHandler) ListDeliveriesHandler(w http.ResponseWriter, r *http.Request) {
	filter := repository.DeliveryLogFilter{}

	if v := r.URL.Query().Get("submission_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.SubmissionID = &id
		}
	}
	if v := r.URL.Query().Get("form_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.FormID = &id
		}
	}
	filter.Status = r.URL.Query().Get("status")
	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = &t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = &t
		}
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	entries, pagination, err := h.Service.ListDeliveries(filter, page, pageSize)
	if err != nil {
		http.Error(w, "failed to fetch deliveries: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":       entries,
		"pagination": pagination,
	})
}

// GetDeliveryHandler returns one delivery log entry by ID
func (h *DeliveryHandler) GetDeliveryHandler(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid delivery id", http.StatusBadRequest)
		return
	}

	entry, err := h.Service.GetDelivery(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

// ResendDeliveryHandler queues a failed delivery for another transport
// attempt. The delivery service publishes to whichever queue backend the
// server was wired with, in-memory or broker.
func (h *DeliveryHandler) ResendDeliveryHandler(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid delivery id", http.StatusBadRequest)
		return
	}

	if err := h.Service.ResendDelivery(id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"delivery_id": id,
		"status":      "queued",
	})
}
