package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/igorsal/gh-telegram/internal/config"
	"github.com/igorsal/gh-telegram/internal/interfaces"
	"github.com/igorsal/gh-telegram/internal/models"
	pkgerrors "github.com/igorsal/gh-telegram/pkg/errors"
)

const (
	serviceName          = "telegram"
	sendMessageOperation = "send_message"
	parseMode            = "MarkdownV2"
)

// errServerReply marks 5xx replies so the circuit breaker counts them
var errServerReply = errors.New("telegram server error")

type Client struct {
	httpClient     *resty.Client
	config         config.TelegramConfig
	logger         interfaces.Logger
	circuitBreaker interfaces.CircuitBreaker
	metrics        interfaces.MetricsCollector
	tracer         trace.Tracer
}

// NewClient creates a Telegram Bot API client with circuit breaker and metrics
func NewClient(cfg config.TelegramConfig, logger interfaces.Logger, metrics interfaces.MetricsCollector, tracer trace.Tracer) *Client {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || (r != nil && r.StatusCode() == http.StatusTooManyRequests)
		}).
		SetLogger(newRestyLogger(logger)).
		SetBaseURL(cfg.BaseURL)

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "telegram-api",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Telegram API circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.SetGauge("circuit_breaker_state", float64(to), map[string]string{"name": name})
		},
	})

	return &Client{
		httpClient:     client,
		config:         cfg,
		logger:         logger,
		circuitBreaker: &circuitBreakerWrapper{cb: cb},
		metrics:        metrics,
		tracer:         tracer,
	}
}

// circuitBreakerWrapper implements interfaces.CircuitBreaker
type circuitBreakerWrapper struct {
	cb *gobreaker.CircuitBreaker
}

func (w *circuitBreakerWrapper) Execute(req func() (interface{}, error)) (interface{}, error) {
	return w.cb.Execute(req)
}

func (w *circuitBreakerWrapper) Name() string {
	return w.cb.Name()
}

func (w *circuitBreakerWrapper) State() string {
	return w.cb.State().String()
}

// SendMessage sends text to the configured chat. Any reply Telegram gives,
// successful or not, is returned verbatim with a nil error. Errors mean no
// reply was obtained.
func (c *Client) SendMessage(ctx context.Context, text string) (*models.TelegramResponse, error) {
	ctx, span := c.tracer.Start(ctx, "telegram.sendMessage", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	startTime := time.Now()
	labels := map[string]string{
		"operation": sendMessageOperation,
	}

	var reply *models.TelegramResponse
	_, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		resp, err := c.executeSendMessage(ctx, text)
		reply = resp
		return resp, err
	})

	c.metrics.RecordDuration("telegram_request_duration_seconds", time.Since(startTime).Seconds(), labels)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		labels["status"] = "rejected"
		c.metrics.IncrementCounter("telegram_requests_total", labels)
		c.logger.Error("Telegram API circuit breaker open", err, "state", c.circuitBreaker.State())
		span.SetStatus(codes.Error, "circuit breaker open")
		return nil, pkgerrors.NewUnavailableError(serviceName).WithCause(err)
	}

	if reply != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", reply.StatusCode))
		if reply.StatusCode >= http.StatusBadRequest {
			labels["status"] = "api_error"
			c.logAPIError(reply)
			span.SetStatus(codes.Error, http.StatusText(reply.StatusCode))
		} else {
			labels["status"] = "success"
		}
		c.metrics.IncrementCounter("telegram_requests_total", labels)
		return reply, nil
	}

	labels["status"] = "error"
	c.metrics.IncrementCounter("telegram_requests_total", labels)
	span.RecordError(err)
	span.SetStatus(codes.Error, "request failed")

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return nil, pkgerrors.NewTimeoutError(serviceName, c.config.Timeout.String()).WithCause(err)
	}
	return nil, pkgerrors.NewExternalError(serviceName, "sendMessage request failed").WithCause(err)
}

func (c *Client) executeSendMessage(ctx context.Context, text string) (*models.TelegramResponse, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"chat_id":                  c.config.ChatID,
			"parse_mode":               parseMode,
			"disable_web_page_preview": "true",
			"text":                     text,
		}).
		Get(fmt.Sprintf("/bot%s/sendMessage", c.config.BotToken))
	if err != nil {
		return nil, err
	}

	reply := &models.TelegramResponse{
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
	}

	if reply.StatusCode >= http.StatusInternalServerError {
		return reply, errServerReply
	}
	return reply, nil
}

func (c *Client) logAPIError(reply *models.TelegramResponse) {
	var parsed apiReply
	if err := json.Unmarshal(reply.Body, &parsed); err != nil {
		c.logger.Warn("Telegram API returned an error", "status_code", reply.StatusCode)
		return
	}

	fields := []interface{}{
		"status_code", reply.StatusCode,
		"description", parsed.Description,
	}
	if parsed.Parameters != nil && parsed.Parameters.RetryAfter > 0 {
		fields = append(fields, "retry_after", parsed.Parameters.RetryAfter)
	}
	c.logger.Warn("Telegram API returned an error", fields...)
}

// Breaker exposes the circuit breaker for health reporting
func (c *Client) Breaker() interfaces.CircuitBreaker {
	return c.circuitBreaker
}
