package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/notifyhub/jobboard/internal/auth"
	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/service"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// mapError translates domain sentinel errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrJobNotFound),
		errors.Is(err, domain.ErrAppNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrAlertNotFound),
		errors.Is(err, domain.ErrCompanyNotFound),
		errors.Is(err, domain.ErrReviewNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
	case errors.Is(err, domain.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrAlreadyApplied),
		errors.Is(err, domain.ErrJobInactive),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidJobType),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidFreq),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrTitleRequired),
		errors.Is(err, domain.ErrNoteRequired),
		errors.Is(err, domain.ErrInvalidSalary),
		errors.Is(err, domain.ErrCompanyExists),
		errors.Is(err, domain.ErrAlreadyReviewed),
		errors.Is(err, domain.ErrCompanyNameRequired),
		errors.Is(err, domain.ErrInvalidCompanySize),
		errors.Is(err, domain.ErrReviewRequired):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUserInUse):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrQueueFull):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// callerFrom reads the principal stored by the auth middleware and answers
// 401 itself when there is none.
func callerFrom(w http.ResponseWriter, r *http.Request) (service.Caller, bool) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		mapError(w, domain.ErrUnauthenticated)
		return service.Caller{}, false
	}
	return service.Caller{ID: p.ID, Role: p.Role}, true
}

// paging reads page and limit; out-of-range values are clamped by the service.
func paging(r *http.Request) (page, limit int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	limit, _ = strconv.Atoi(q.Get("limit"))
	return page, limit
}

func optionalInt(v string) *int {
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
