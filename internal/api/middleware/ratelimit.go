package middleware

import (
	"net"
	"net/http"
)

// Allower decides whether a client key may make another request.
type Allower interface {
	Allow(key string) bool
}

// RateLimit answers 429 once a client exhausts its budget. Clients are keyed
// by the host part of RemoteAddr, so it belongs after chi's RealIP.
func RateLimit(limits Allower, onLimited func()) func(http.Handler) http.Handler {
	if onLimited == nil {
		onLimited = func() {}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limits.Allow(clientKey(r.RemoteAddr)) {
				onLimited()
				writeError(w, http.StatusTooManyRequests, "too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
