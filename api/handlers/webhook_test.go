package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/igorsal/gh-telegram/internal/middleware"
	"github.com/igorsal/gh-telegram/internal/models"
	"github.com/igorsal/gh-telegram/internal/services"
	pkgerrors "github.com/igorsal/gh-telegram/pkg/errors"
	"github.com/igorsal/gh-telegram/pkg/logger"
	"github.com/igorsal/gh-telegram/pkg/metrics"
)

const pingPayload = `{
  "zen": "Keep it logically awesome.",
  "repository": {"name": "r", "html_url": "https://x"},
  "sender": {"login": "octocat", "html_url": "https://github.com/octocat"}
}`

type fakeNotifier struct {
	texts []string
	reply *models.TelegramResponse
	err   error
}

func (f *fakeNotifier) SendMessage(ctx context.Context, text string) (*models.TelegramResponse, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	if f.reply != nil {
		return f.reply, nil
	}
	return &models.TelegramResponse{
		StatusCode:  http.StatusOK,
		ContentType: "application/json",
		Body:        []byte(`{"ok":true,"result":{"message_id":1}}`),
	}, nil
}

func newRelay(notifier *fakeNotifier) *services.RelayService {
	return services.NewRelayService(
		services.NewDecoder(),
		notifier,
		nil,
		logger.NewNop(),
		metrics.NewPrometheusCollector(prometheus.NewRegistry()),
		noop.NewTracerProvider().Tracer("test"),
	)
}

func webhookServer(notifier *fakeNotifier) http.Handler {
	handler := NewWebhookHandler(newRelay(notifier), logger.NewNop(), metrics.NewPrometheusCollector(prometheus.NewRegistry()))
	return middleware.HookshotGuard("/webhook", logger.NewNop())(http.HandlerFunc(handler.Handle))
}

func delivery(event, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("User-Agent", "GitHub-Hookshot/044aadd")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", event)
	req.Header.Set("X-GitHub-Delivery", "delivery-1")
	return req
}

func TestWebhookPingRelaysTelegramReply(t *testing.T) {
	notifier := &fakeNotifier{}

	rec := httptest.NewRecorder()
	webhookServer(notifier).ServeHTTP(rec, delivery("ping", pingPayload))

	require.Len(t, notifier.texts, 1)
	assert.Equal(t, "*New webhook for* [r](https://x)", notifier.texts[0])
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":true,"result":{"message_id":1}}`, rec.Body.String())
}

func TestWebhookPassesThroughTelegramErrors(t *testing.T) {
	notifier := &fakeNotifier{reply: &models.TelegramResponse{
		StatusCode:  http.StatusBadRequest,
		ContentType: "application/json",
		Body:        []byte(`{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`),
	}}

	rec := httptest.NewRecorder()
	webhookServer(notifier).ServeHTTP(rec, delivery("ping", pingPayload))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "can't parse entities")
}

func TestWebhookRejectsNonHookshotRequests(t *testing.T) {
	notifier := &fakeNotifier{}
	req := delivery("ping", pingPayload)
	req.Header.Set("User-Agent", "curl/8.4.0")

	rec := httptest.NewRecorder()
	webhookServer(notifier).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "403 Forbidden", rec.Body.String())
	assert.Empty(t, notifier.texts)
}

func TestWebhookDeclinedAction(t *testing.T) {
	notifier := &fakeNotifier{}
	body := `{"action":"closed","issue":{"number":1},"repository":{"name":"r"}}`

	rec := httptest.NewRecorder()
	webhookServer(notifier).ServeHTTP(rec, delivery("issues", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Empty(t, notifier.texts)
}

func TestWebhookUnknownEvent(t *testing.T) {
	notifier := &fakeNotifier{}

	rec := httptest.NewRecorder()
	webhookServer(notifier).ServeHTTP(rec, delivery("star", `{"action":"created"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "request method: POST /webhook", rec.Body.String())
	assert.Empty(t, notifier.texts)
}

func TestWebhookInvalidPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "malformed json", body: `{"action":`, code: "invalid_payload"},
		{name: "missing fields", body: `{"action":"opened","issue":{"number":1}}`, code: "missing_fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeNotifier{}

			rec := httptest.NewRecorder()
			webhookServer(notifier).ServeHTTP(rec, delivery("issues", tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, notifier.texts)

			var resp struct {
				Error struct {
					Type string `json:"type"`
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "validation", resp.Error.Type)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestWebhookNotifierFailure(t *testing.T) {
	notifier := &fakeNotifier{err: pkgerrors.NewUnavailableError("telegram")}

	rec := httptest.NewRecorder()
	webhookServer(notifier).ServeHTTP(rec, delivery("ping", pingPayload))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unavailable"`)
}
