package middleware

import (
	"bytes"
	"io"
	"net/http"
	"sync"

	"github.com/google/go-github/v72/github"

	"github.com/igorsal/gh-telegram/internal/interfaces"
	pkgerrors "github.com/igorsal/gh-telegram/pkg/errors"
)

// maxPayloadBytes matches GitHub's cap on webhook payloads
const maxPayloadBytes = 25 << 20

// GitHubWebhookAuth validates X-Hub-Signature-256 when a secret is configured
func GitHubWebhookAuth(secret string, logger interfaces.Logger) func(http.Handler) http.Handler {
	var warnOnce sync.Once

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				warnOnce.Do(func() {
					logger.Warn("GitHub webhook secret not configured, skipping signature validation")
				})
				next.ServeHTTP(w, r)
				return
			}

			signature := r.Header.Get(github.SHA256SignatureHeader)
			if signature == "" {
				WriteError(w, r, logger, pkgerrors.NewUnauthorizedError("missing webhook signature").
					WithCode("missing_signature").
					WithContext("header", github.SHA256SignatureHeader))
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
			if err != nil {
				WriteError(w, r, logger, pkgerrors.NewValidationError("failed to read request body").WithCause(err))
				return
			}

			if err := github.ValidateSignature(signature, body, []byte(secret)); err != nil {
				WriteError(w, r, logger, pkgerrors.NewUnauthorizedError("invalid webhook signature").
					WithCode("invalid_signature").
					WithContext("delivery_id", github.DeliveryID(r)).
					WithCause(err))
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))

			logger.Debug("Webhook signature validated", "delivery_id", github.DeliveryID(r))
			next.ServeHTTP(w, r)
		})
	}
}
