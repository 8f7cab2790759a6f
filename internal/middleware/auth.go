package middleware

import (
	"net/http"
	"strings"

	"github.com/google/go-github/v72/github"

	"github.com/igorsal/gh-telegram/internal/interfaces"
)

const (
	hookshotUserAgentPrefix = "GitHub-Hookshot/"
	jsonContentType         = "application/json"
	forbiddenBody           = "403 Forbidden"
)

// HookshotGuard rejects anything that is not a JSON webhook delivery from
// GitHub to path. Rejected requests get 403 before the body is read.
func HookshotGuard(path string, logger interfaces.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsHookshotRequest(r, path) {
				logger.Warn("Rejected webhook request",
					"method", r.Method,
					"path", r.URL.Path,
					"user_agent", r.UserAgent(),
					"content_type", r.Header.Get("Content-Type"),
					"remote_addr", r.RemoteAddr,
				)
				Forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsHookshotRequest reports whether r looks like a GitHub webhook delivery to path
func IsHookshotRequest(r *http.Request, path string) bool {
	return r.Method == http.MethodPost &&
		strings.HasPrefix(r.UserAgent(), hookshotUserAgentPrefix) &&
		strings.Contains(r.Header.Get("Content-Type"), jsonContentType) &&
		github.WebHookType(r) != "" &&
		r.URL.Path == path
}

// Forbidden writes the plain 403 answer. It doubles as the router's
// not-found handler.
func Forbidden(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(forbiddenBody))
}
