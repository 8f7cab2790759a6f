package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/go-github/v72/github"

	"github.com/igorsal/gh-telegram/api/middleware"
	"github.com/igorsal/gh-telegram/internal/interfaces"
	"github.com/igorsal/gh-telegram/internal/models"
	"github.com/igorsal/gh-telegram/internal/services"
	pkgerrors "github.com/igorsal/gh-telegram/pkg/errors"
)

const (
	// MaxBodySize matches GitHub's cap on webhook payloads
	MaxBodySize = 25 << 20

	declinedBody = "OK"
)

type WebhookHandler struct {
	relay   interfaces.RelayService
	logger  interfaces.Logger
	metrics interfaces.MetricsCollector
}

func NewWebhookHandler(relay interfaces.RelayService, logger interfaces.Logger, metrics interfaces.MetricsCollector) *WebhookHandler {
	return &WebhookHandler{
		relay:   relay,
		logger:  logger,
		metrics: metrics,
	}
}

// Handle relays one GitHub delivery to Telegram and answers with
// Telegram's reply. Requests are expected to have passed HookshotGuard.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	delivery, err := readDelivery(w, r)
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}

	result, err := h.relay.Relay(r.Context(), delivery)
	switch {
	case errors.Is(err, services.ErrUnsupportedEvent):
		writeText(w, http.StatusOK, fmt.Sprintf("request method: %s %s", r.Method, r.URL.Path))
		return
	case err != nil:
		middleware.WriteError(w, r, h.logger, err)
		return
	case result.Skipped():
		writeText(w, http.StatusOK, declinedBody)
		return
	}

	resp := result.Response
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		h.logger.Warn("Failed to write Telegram reply", "error", err.Error())
	}
}

func readDelivery(w http.ResponseWriter, r *http.Request) (models.Delivery, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return models.Delivery{}, pkgerrors.NewValidationError("request body too large").
				WithCode("payload_too_large").
				WithContext("limit_bytes", tooLarge.Limit)
		}
		return models.Delivery{}, pkgerrors.NewValidationError("failed to read request body").WithCause(err)
	}

	return models.Delivery{
		EventType: github.WebHookType(r),
		ID:        github.DeliveryID(r),
		Body:      body,
	}, nil
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
