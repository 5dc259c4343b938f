package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/auth"
	"github.com/notifyhub/jobboard/internal/domain"
)

// AccessTokenCookie is read when no Authorization header is present.
const AccessTokenCookie = "accessToken"

// ProfileEnsurer makes sure a profile row exists for the token's subject.
type ProfileEnsurer interface {
	Ensure(ctx context.Context, u domain.User) error
}

// Authenticate verifies the bearer token (or access token cookie), makes
// sure the caller has a profile row and stores the principal on the context.
func Authenticate(tokens *auth.TokenManager, profiles ProfileEnsurer, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
				return
			}
			p, err := tokens.Verify(raw)
			if err != nil {
				logger.Debug("token rejected",
					zap.String("correlation_id", GetCorrelationID(r.Context())),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
				return
			}

			err = profiles.Ensure(r.Context(), domain.User{ID: p.ID, Name: p.Name, Email: p.Email, Role: p.Role})
			if err != nil {
				logger.Error("profile sync failed",
					zap.String("user_id", p.ID),
					zap.String("correlation_id", GetCorrelationID(r.Context())),
					zap.Error(err),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRole rejects callers whose role is not listed. It must run after
// Authenticate.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, domain.ErrForbidden.Error())
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
