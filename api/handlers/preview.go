package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/igorsal/gh-telegram/api/middleware"
	"github.com/igorsal/gh-telegram/internal/interfaces"
	"github.com/igorsal/gh-telegram/internal/services"
	pkgerrors "github.com/igorsal/gh-telegram/pkg/errors"
)

type PreviewHandler struct {
	relay  interfaces.RelayService
	logger interfaces.Logger
}

type PreviewResponse struct {
	Event      string `json:"event"`
	DeliveryID string `json:"delivery_id"`
	Skipped    bool   `json:"skipped"`
	Text       string `json:"text"`
}

func NewPreviewHandler(relay interfaces.RelayService, logger interfaces.Logger) *PreviewHandler {
	return &PreviewHandler{
		relay:  relay,
		logger: logger,
	}
}

// Handle renders the message a delivery would produce without sending it
func (h *PreviewHandler) Handle(w http.ResponseWriter, r *http.Request) {
	delivery, err := readDelivery(w, r)
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}

	if delivery.EventType == "" {
		middleware.WriteError(w, r, h.logger,
			pkgerrors.NewValidationError("X-GitHub-Event header is required").WithCode("missing_event"))
		return
	}

	result, err := h.relay.Preview(delivery)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedEvent) {
			err = pkgerrors.NewValidationError("unsupported event type").
				WithCode("unsupported_event").
				WithContext("event", delivery.EventType)
		}
		middleware.WriteError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(PreviewResponse{
		Event:      result.EventType,
		DeliveryID: result.DeliveryID,
		Skipped:    result.Skipped(),
		Text:       result.Text,
	}); err != nil {
		h.logger.Error("Failed to encode preview response", err)
	}
}
