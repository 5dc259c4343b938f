package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/service"
)

// AlertHandler serves saved job alerts and recommendations.
type AlertHandler struct {
	svc    *service.AlertService
	logger *zap.Logger
}

func NewAlertHandler(svc *service.AlertService, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/alerts
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var req domain.AlertRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.svc.Create(r.Context(), caller, req)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

// List handles GET /api/v1/alerts
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	alerts, err := h.svc.List(r.Context(), caller)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, alerts)
}

// Update handles PUT /api/v1/alerts/{alertId}
func (h *AlertHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var req domain.AlertRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.svc.Update(r.Context(), caller, chi.URLParam(r, "alertId"), req)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// Delete handles DELETE /api/v1/alerts/{alertId}
func (h *AlertHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), caller, chi.URLParam(r, "alertId")); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Recommended handles GET /api/v1/alerts/recommended
func (h *AlertHandler) Recommended(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	p, l := paging(r)
	page, err := h.svc.Recommended(r.Context(), caller, p, l)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}
