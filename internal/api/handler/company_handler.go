package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/notifyhub/jobboard/internal/api/middleware"
	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/service"
)

// CompanyHandler serves company profiles and their reviews.
type CompanyHandler struct {
	svc    *service.CompanyService
	logger *zap.Logger
}

func NewCompanyHandler(svc *service.CompanyService, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/companies
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var req domain.CompanyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.Create(r.Context(), caller, req)
	if err != nil {
		h.logger.Warn("create company failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// Update handles PUT /api/v1/companies
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var req domain.CompanyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.Update(r.Context(), caller, req)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Mine handles GET /api/v1/companies/me
func (h *CompanyHandler) Mine(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	d, err := h.svc.Mine(r.Context(), caller)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

// Get handles GET /api/v1/companies/{companyId}
//
// companyId may also be the employer's user id.
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Get(r.Context(), chi.URLParam(r, "companyId"))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// GetByEmployer handles GET /api/v1/companies/by-employer/{employerId}
func (h *CompanyHandler) GetByEmployer(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.GetByEmployer(r.Context(), chi.URLParam(r, "employerId"))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// Reviews handles GET /api/v1/companies/{companyId}/reviews
func (h *CompanyHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.svc.Reviews(r.Context(), chi.URLParam(r, "companyId"))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

// AddReview handles POST /api/v1/companies/{companyId}/reviews
func (h *CompanyHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var req domain.ReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rv, err := h.svc.AddReview(r.Context(), caller, chi.URLParam(r, "companyId"), req)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rv)
}

// UpdateReview handles PUT /api/v1/companies/{companyId}/reviews/{reviewId}
func (h *CompanyHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var req domain.ReviewUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	rv, err := h.svc.UpdateReview(r.Context(), caller,
		chi.URLParam(r, "companyId"), chi.URLParam(r, "reviewId"), req)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rv)
}

// DeleteReview handles DELETE /api/v1/companies/{companyId}/reviews/{reviewId}
func (h *CompanyHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	err := h.svc.DeleteReview(r.Context(), caller, chi.URLParam(r, "companyId"), chi.URLParam(r, "reviewId"))
	if err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
