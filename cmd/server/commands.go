package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/igorsal/gh-telegram/internal/interfaces"
	"github.com/igorsal/gh-telegram/internal/models"
	"github.com/igorsal/gh-telegram/internal/services"
	"github.com/igorsal/gh-telegram/internal/telemetry"
	"github.com/igorsal/gh-telegram/io/telegram"
	"github.com/igorsal/gh-telegram/pkg/logger"
	"github.com/igorsal/gh-telegram/pkg/metrics"
)

func newRenderCmd() *cobra.Command {
	var event, file string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the message a webhook payload would produce",
		Example: `  gh-telegram render --event push --file payload.json
  cat payload.json | gh-telegram render --event issues`,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readPayload(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			log := logger.NewNop()
			relay := services.NewRelayService(
				services.NewDecoder(),
				telegram.NewDryRunClient(log),
				nil,
				log,
				metrics.NewPrometheusCollector(prometheus.NewRegistry()),
				noop.NewTracerProvider().Tracer("render"),
			)

			return render(cmd.OutOrStdout(), relay, models.Delivery{EventType: event, Body: body})
		},
	}

	cmd.Flags().StringVar(&event, "event", "", "X-GitHub-Event name of the payload")
	cmd.Flags().StringVar(&file, "file", "-", "payload file, - for stdin")
	_ = cmd.MarkFlagRequired("event")

	return cmd
}

func render(out io.Writer, relay interfaces.RelayService, delivery models.Delivery) error {
	result, err := relay.Preview(delivery)
	if err != nil {
		return fmt.Errorf("render %s payload: %w", delivery.EventType, err)
	}
	if result.Skipped() {
		_, err = fmt.Fprintln(out, "(no notification for this action)")
		return err
	}
	_, err = fmt.Fprintln(out, result.Text)
	return err
}

func readPayload(stdin io.Reader, file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return data, nil
}

func newSendCmd() *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send raw MarkdownV2 text through the configured notifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			log := logger.NewAdapter(cfg.Logging.Level, cfg.Logging.Format)
			collector := metrics.NewPrometheusCollector(prometheus.NewRegistry())
			provider, err := telemetry.NewProvider(cmd.Context(), cfg.Telemetry, appVersion(), log)
			if err != nil {
				return err
			}
			defer func() { _ = provider.Shutdown(context.Background()) }()

			notifier, _ := newNotifier(cfg.Telegram, log, collector, provider)
			return send(cmd.Context(), cmd.OutOrStdout(), notifier, text)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "MarkdownV2 text, already escaped")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

func send(ctx context.Context, out io.Writer, notifier interfaces.Notifier, text string) error {
	resp, err := notifier.SendMessage(ctx, text)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(out, "%d %s\n", resp.StatusCode, resp.Body); err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("telegram answered %d", resp.StatusCode)
	}
	return nil
}
