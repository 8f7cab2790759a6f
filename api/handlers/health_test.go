package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igorsal/gh-telegram/pkg/logger"
)

type stubBreaker struct{ state string }

func (b stubBreaker) Execute(req func() (interface{}, error)) (interface{}, error) { return req() }
func (b stubBreaker) Name() string                                                 { return "stub" }
func (b stubBreaker) State() string                                                { return b.state }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name     string
		handler  *HealthHandler
		status   string
		telegram string
	}{
		{name: "no breaker", handler: NewHealthHandler("1.2.3", nil, logger.NewNop()), status: "healthy"},
		{name: "closed breaker", handler: NewHealthHandler("1.2.3", stubBreaker{"closed"}, logger.NewNop()), status: "healthy", telegram: "closed"},
		{name: "open breaker", handler: NewHealthHandler("1.2.3", stubBreaker{"open"}, logger.NewNop()), status: "degraded", telegram: "open"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler.Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, http.StatusOK, rec.Code)
			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, tt.telegram, resp.Telegram)
			assert.Equal(t, "1.2.3", resp.Version)
			assert.NotEmpty(t, resp.Timestamp)
		})
	}
}
