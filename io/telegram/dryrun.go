package telegram

import (
	"context"
	"net/http"

	"github.com/igorsal/gh-telegram/internal/interfaces"
	"github.com/igorsal/gh-telegram/internal/models"
)

var dryRunReply = []byte(`{"ok":true,"result":{"dry_run":true}}`)

// DryRunClient logs messages instead of sending them
type DryRunClient struct {
	logger interfaces.Logger
}

// NewDryRunClient creates a dry-run notifier
func NewDryRunClient(logger interfaces.Logger) *DryRunClient {
	return &DryRunClient{logger: logger}
}

// SendMessage logs text and answers like a successful sendMessage call
func (c *DryRunClient) SendMessage(ctx context.Context, text string) (*models.TelegramResponse, error) {
	c.logger.Info("Dry run, Telegram message not sent",
		"text", text,
		"length", len([]rune(text)),
	)

	return &models.TelegramResponse{
		StatusCode:  http.StatusOK,
		ContentType: "application/json",
		Body:        dryRunReply,
	}, nil
}
