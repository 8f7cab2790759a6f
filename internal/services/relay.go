package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/igorsal/gh-telegram/internal/interfaces"
	"github.com/igorsal/gh-telegram/internal/message"
	"github.com/igorsal/gh-telegram/internal/models"
)

type RelayService struct {
	decoder   interfaces.EventDecoder
	notifier  interfaces.Notifier
	publisher interfaces.Publisher
	logger    interfaces.Logger
	metrics   interfaces.MetricsCollector
	tracer    trace.Tracer
}

// NewRelayService creates a relay service. publisher may be nil.
func NewRelayService(
	decoder interfaces.EventDecoder,
	notifier interfaces.Notifier,
	publisher interfaces.Publisher,
	logger interfaces.Logger,
	metrics interfaces.MetricsCollector,
	tracer trace.Tracer,
) *RelayService {
	return &RelayService{
		decoder:   decoder,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
	}
}

// Relay decodes a delivery, renders its message and sends it. Declined
// actions return a skipped result without calling the notifier.
func (s *RelayService) Relay(ctx context.Context, delivery models.Delivery) (*models.RelayResult, error) {
	ctx, span := s.tracer.Start(ctx, "relay.delivery", trace.WithAttributes(
		attribute.String("github.event", delivery.EventType),
		attribute.String("github.delivery", delivery.ID),
	))
	defer span.End()

	startTime := time.Now()
	log := s.logger.With("event", delivery.EventType, "delivery_id", delivery.ID)

	result, err := s.render(delivery)
	if err != nil {
		outcome := "invalid"
		if errors.Is(err, ErrUnsupportedEvent) {
			outcome = "unsupported"
			log.Debug("No template for event type")
		} else {
			log.Warn("Rejected webhook payload", "error", err.Error())
		}
		s.recordOutcome(delivery.EventType, outcome)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}

	if result.Skipped() {
		log.Info("Skipping event action")
		s.recordOutcome(delivery.EventType, string(models.OutcomeSkipped))
		span.SetAttributes(attribute.String("relay.outcome", string(models.OutcomeSkipped)))
		return result, nil
	}

	resp, err := s.notifier.SendMessage(ctx, result.Text)
	s.metrics.RecordDuration("relay_duration_seconds", time.Since(startTime).Seconds(), map[string]string{
		"event": eventLabel(delivery.EventType),
	})
	if err != nil {
		log.Error("Failed to send Telegram notification", err)
		s.recordOutcome(delivery.EventType, "failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		return nil, fmt.Errorf("send %s notification: %w", delivery.EventType, err)
	}

	result.Outcome = models.OutcomeDelivered
	result.Response = resp
	span.SetAttributes(
		attribute.String("relay.outcome", string(models.OutcomeDelivered)),
		attribute.Int("telegram.status_code", resp.StatusCode),
	)
	s.recordOutcome(delivery.EventType, string(models.OutcomeDelivered))

	log.Info("Relayed webhook to Telegram",
		"telegram_status", resp.StatusCode,
		"text_length", len(result.Text),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	if s.publisher != nil {
		s.publisher.Publish(result)
	}

	return result, nil
}

// Preview renders a delivery without sending anything
func (s *RelayService) Preview(delivery models.Delivery) (*models.RelayResult, error) {
	return s.render(delivery)
}

func (s *RelayService) render(delivery models.Delivery) (*models.RelayResult, error) {
	event, err := s.decoder.Decode(delivery.EventType, delivery.Body)
	if err != nil {
		return nil, err
	}

	result := &models.RelayResult{
		EventType:   delivery.EventType,
		DeliveryID:  delivery.ID,
		Outcome:     models.OutcomeRendered,
		ProcessedAt: time.Now().UTC(),
	}

	text, ok := message.Build(event)
	if !ok {
		result.Outcome = models.OutcomeSkipped
		return result, nil
	}
	result.Text = text

	return result, nil
}

func (s *RelayService) recordOutcome(eventType, outcome string) {
	s.metrics.IncrementCounter("webhook_events_total", map[string]string{
		"event":   eventLabel(eventType),
		"outcome": outcome,
	})
}

// eventLabel keeps metric cardinality bounded for arbitrary header values
func eventLabel(eventType string) string {
	if SupportedEvent(eventType) {
		return eventType
	}
	return "other"
}
