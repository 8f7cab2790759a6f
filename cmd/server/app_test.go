package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igorsal/gh-telegram/internal/config"
)

const pingPayload = `{"zen":"Design for failure.","repository":{"name":"r","html_url":"https://x"}}`

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: "0", ReadTimeout: time.Second, WriteTimeout: time.Second},
		Telegram: config.TelegramConfig{DryRun: true},
		GitHub:   config.GitHubConfig{WebhookPath: "/webhook"},
		Logging:  config.LoggingConfig{Level: "disabled", Format: "json"},
		Feed:     config.FeedConfig{Enabled: true},
	}
}

func newTestApp(t *testing.T) *Application {
	t.Helper()
	app, err := initializeApplication(context.Background(), testConfig(), prometheus.NewRegistry())
	require.NoError(t, err)
	return app
}

func hookshot(method, path, event, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("User-Agent", "GitHub-Hookshot/044aadd")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", event)
	return req
}

func TestRoutes(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name   string
		req    *http.Request
		status int
		body   string
	}{
		{name: "ping delivery", req: hookshot(http.MethodPost, "/webhook", "ping", pingPayload), status: http.StatusOK, body: `{"ok":true,"result":{"dry_run":true}}`},
		{name: "get webhook", req: hookshot(http.MethodGet, "/webhook", "ping", ""), status: http.StatusForbidden, body: "403 Forbidden"},
		{name: "unknown path", req: hookshot(http.MethodPost, "/elsewhere", "ping", pingPayload), status: http.StatusForbidden, body: "403 Forbidden"},
		{name: "post health", req: httptest.NewRequest(http.MethodPost, "/health", nil), status: http.StatusForbidden, body: "403 Forbidden"},
		{name: "unknown event", req: hookshot(http.MethodPost, "/webhook", "star", `{}`), status: http.StatusOK, body: "request method: POST /webhook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.server.Handler.ServeHTTP(rec, tt.req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	rec = httptest.NewRecorder()
	app.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRenderCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ping.json")
	require.NoError(t, os.WriteFile(file, []byte(pingPayload), 0o600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"render", "--event", "ping", "--file", file})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "*New webhook for* [r](https://x)\n", out.String())
}

func TestRenderCommandDeclinedAction(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(`{"action":"closed"}`))
	cmd.SetArgs([]string{"render", "--event", "issues"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "no notification")
}

func TestRenderCommandUnknownEvent(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(`{}`))
	cmd.SetArgs([]string{"render", "--event", "star"})

	assert.Error(t, cmd.Execute())
}

func TestWebhookRequiresSignatureWhenSecretSet(t *testing.T) {
	cfg := testConfig()
	cfg.GitHub.WebhookSecret = "s3cret"
	app, err := initializeApplication(context.Background(), cfg, prometheus.NewRegistry())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.server.Handler.ServeHTTP(rec, hookshot(http.MethodPost, "/webhook", "ping", pingPayload))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"missing_signature"`)
}

func TestAppVersion(t *testing.T) {
	original := version
	t.Cleanup(func() { version = original })

	version = ""
	assert.NotEmpty(t, appVersion())

	version = "1.2.3"
	assert.Equal(t, "1.2.3", appVersion())

	rec := httptest.NewRecorder()
	newTestApp(t).server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Contains(t, rec.Body.String(), `"version":"1.2.3"`)
}
