package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/igorsal/gh-telegram/internal/interfaces"
)

type HealthHandler struct {
	version string
	breaker interfaces.CircuitBreaker
	logger  interfaces.Logger
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Telegram  string `json:"telegram,omitempty"`
}

// NewHealthHandler creates a health handler. breaker may be nil, as in dry-run mode.
func NewHealthHandler(version string, breaker interfaces.CircuitBreaker, logger interfaces.Logger) *HealthHandler {
	return &HealthHandler{
		version: version,
		breaker: breaker,
		logger:  logger,
	}
}

// Handle reports liveness. An open Telegram breaker degrades the status
// but still answers 200 since the process itself is healthy.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
	}
	if h.breaker != nil {
		response.Telegram = h.breaker.State()
		if response.Telegram == "open" {
			response.Status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode health response", err)
	}
}
