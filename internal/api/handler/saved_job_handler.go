package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/service"
)

// SavedJobHandler serves the caller's bookmarked jobs.
type SavedJobHandler struct {
	svc    *service.SavedJobService
	logger *zap.Logger
}

func NewSavedJobHandler(svc *service.SavedJobService, logger *zap.Logger) *SavedJobHandler {
	return &SavedJobHandler{svc: svc, logger: logger}
}

// Save handles POST /api/v1/jobs/{jobId}/save
func (h *SavedJobHandler) Save(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	jobID := chi.URLParam(r, "jobId")
	if err := h.svc.Save(r.Context(), caller, jobID); err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"job_id": jobID})
}

// Unsave handles DELETE /api/v1/jobs/{jobId}/save
func (h *SavedJobHandler) Unsave(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	if err := h.svc.Unsave(r.Context(), caller, chi.URLParam(r, "jobId")); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/v1/jobs/saved
func (h *SavedJobHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	p, l := paging(r)
	page, err := h.svc.List(r.Context(), caller, p, l)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}
