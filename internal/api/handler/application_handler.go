package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/notifyhub/jobboard/internal/api/middleware"
	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/service"
)

// ApplicationHandler serves the application workflow endpoints.
type ApplicationHandler struct {
	svc    *service.ApplicationService
	logger *zap.Logger
}

func NewApplicationHandler(svc *service.ApplicationService, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{svc: svc, logger: logger}
}

// Apply handles POST /api/v1/applications/{jobId}/apply
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var req domain.ApplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	app, err := h.svc.Apply(r.Context(), caller, chi.URLParam(r, "jobId"), req)
	if err != nil {
		h.logger.Info("apply rejected",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, app)
}

// ListMine handles GET /api/v1/applications
func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	page, err := h.svc.ListMine(r.Context(), caller, parseApplicationFilter(r))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// Stats handles GET /api/v1/applications/stats
func (h *ApplicationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	stats, err := h.svc.Stats(r.Context(), caller)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// ListForJob handles GET /api/v1/applications/job/{jobId}
func (h *ApplicationHandler) ListForJob(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	page, err := h.svc.ListForJob(r.Context(), caller, chi.URLParam(r, "jobId"), parseApplicationFilter(r))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// GetByID handles GET /api/v1/applications/{applicationId}
func (h *ApplicationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	app, err := h.svc.GetByID(r.Context(), caller, chi.URLParam(r, "applicationId"))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, app)
}

// UpdateStatus handles PUT /api/v1/applications/{applicationId}/status
//
// The applicant is told by email and by an applicationStatusUpdate push;
// neither affects the response.
func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var req domain.StatusUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	app, err := h.svc.UpdateStatus(r.Context(), caller, chi.URLParam(r, "applicationId"), req)
	if err != nil {
		h.logger.Info("status update rejected",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, app)
}

// AddNote handles POST /api/v1/applications/{applicationId}/note
func (h *ApplicationHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var req domain.NoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	notes, err := h.svc.AddNote(r.Context(), caller, chi.URLParam(r, "applicationId"), req)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"notes": notes})
}

func parseApplicationFilter(r *http.Request) domain.ApplicationFilter {
	var f domain.ApplicationFilter
	f.Page, f.Limit = paging(r)
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.Status(s)
		f.Status = &st
	}
	return f
}
