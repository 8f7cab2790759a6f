package interfaces

import (
	"context"

	"github.com/igorsal/gh-telegram/internal/models"
)

// Notifier delivers a pre-formatted MarkdownV2 message to the target chat
type Notifier interface {
	SendMessage(ctx context.Context, text string) (*models.TelegramResponse, error)
}

// RelayService turns one webhook delivery into at most one notification
type RelayService interface {
	Relay(ctx context.Context, delivery models.Delivery) (*models.RelayResult, error)
	Preview(delivery models.Delivery) (*models.RelayResult, error)
}

// EventDecoder decodes a raw webhook body into a typed event
type EventDecoder interface {
	Decode(eventType string, body []byte) (models.Event, error)
}

// Publisher fans out delivered notifications to live subscribers
type Publisher interface {
	Publish(result *models.RelayResult)
}

// Logger defines the logging interface
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	With(fields ...interface{}) Logger
}

// MetricsCollector defines the interface for collecting metrics
type MetricsCollector interface {
	IncrementCounter(name string, labels map[string]string)
	RecordDuration(name string, duration float64, labels map[string]string)
	SetGauge(name string, value float64, labels map[string]string)
}

// CircuitBreaker defines the interface for circuit breaker pattern
type CircuitBreaker interface {
	Execute(req func() (interface{}, error)) (interface{}, error)
	Name() string
	State() string
}
