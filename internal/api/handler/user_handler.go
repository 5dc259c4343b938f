package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/notifyhub/jobboard/internal/api/middleware"
	"github.com/notifyhub/jobboard/internal/auth"
	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/service"
)

// UserHandler serves profiles: the caller's own and, for admins, everyone's.
type UserHandler struct {
	svc    *service.UserService
	logger *zap.Logger
}

func NewUserHandler(svc *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// Sync handles POST /api/v1/users/me
//
// Refreshes the profile from the token claims.
func (h *UserHandler) Sync(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		mapError(w, domain.ErrUnauthenticated)
		return
	}
	u, err := h.svc.Sync(r.Context(), domain.User{ID: p.ID, Name: p.Name, Email: p.Email, Role: p.Role})
	if err != nil {
		h.logger.Warn("profile sync failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	u, err := h.svc.Me(r.Context(), caller)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// Get handles GET /api/v1/users/{userId}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// List handles GET /api/v1/users/all
//
// Query: role, page, limit.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	f := domain.UserFilter{}
	f.Page, f.Limit = paging(r)
	if v := r.URL.Query().Get("role"); v != "" {
		role := domain.Role(v)
		f.Role = &role
	}
	page, err := h.svc.List(r.Context(), caller, f)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// Delete handles DELETE /api/v1/users/{userId}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), caller, chi.URLParam(r, "userId")); err != nil {
		h.logger.Warn("delete user failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
