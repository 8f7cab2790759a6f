package models

import "time"

// Outcome describes what the relay did with a delivery
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeRendered  Outcome = "rendered"
)

// Delivery is one inbound webhook request
type Delivery struct {
	EventType string
	ID        string
	Body      []byte
}

// TelegramResponse is Telegram's reply, kept verbatim
type TelegramResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// RelayResult is the outcome of relaying one delivery
type RelayResult struct {
	EventType   string            `json:"event"`
	DeliveryID  string            `json:"delivery_id,omitempty"`
	Outcome     Outcome           `json:"outcome"`
	Text        string            `json:"text,omitempty"`
	Response    *TelegramResponse `json:"-"`
	ProcessedAt time.Time         `json:"processed_at"`
}

// Skipped reports whether the payload's action was declined
func (r *RelayResult) Skipped() bool {
	return r.Outcome == OutcomeSkipped
}
