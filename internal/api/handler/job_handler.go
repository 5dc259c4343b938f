package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/notifyhub/jobboard/internal/api/middleware"
	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/service"
)

// JobHandler serves job postings.
type JobHandler struct {
	svc    *service.JobService
	logger *zap.Logger
}

func NewJobHandler(svc *service.JobService, logger *zap.Logger) *JobHandler {
	return &JobHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/jobs
//
// Posting a job broadcasts newJobPosted and pushes jobAlertMatch to owners
// of matching instant alerts.
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var req domain.JobRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	job, err := h.svc.Create(r.Context(), caller, req)
	if err != nil {
		h.logger.Warn("create job failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, job)
}

// Search handles GET /api/v1/jobs
//
// Query: search, jobType, location, remote, minSalary, maxSalary, tags
// (comma separated), sort, page, limit.
func (h *JobHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Search(r.Context(), parseJobFilter(r))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// ListMine handles GET /api/v1/jobs/mine
func (h *JobHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	p, l := paging(r)
	page, err := h.svc.ListMine(r.Context(), caller, p, l)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// Get handles GET /api/v1/jobs/{jobId}
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.Get(r.Context(), chi.URLParam(r, "jobId"))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

// Update handles PUT /api/v1/jobs/{jobId}
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var req domain.JobRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	job, err := h.svc.Update(r.Context(), caller, chi.URLParam(r, "jobId"), req)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

// Delete handles DELETE /api/v1/jobs/{jobId}
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), caller, chi.URLParam(r, "jobId")); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseJobFilter(r *http.Request) domain.JobFilter {
	q := r.URL.Query()
	f := domain.JobFilter{
		Search:    strings.TrimSpace(q.Get("search")),
		City:      q.Get("location"),
		Remote:    q.Get("remote") == "true",
		MinSalary: optionalInt(q.Get("minSalary")),
		MaxSalary: optionalInt(q.Get("maxSalary")),
		Sort:      q.Get("sort"),
	}
	f.Page, f.Limit = paging(r)
	if t := q.Get("jobType"); t != "" {
		jt := domain.JobType(t)
		f.JobType = &jt
	}
	if tags := q.Get("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Tags = append(f.Tags, t)
			}
		}
	}
	return f
}

// Stats handles GET /api/v1/jobs/stats
func (h *JobHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
