package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/igorsal/gh-telegram/api/handlers"
	apimiddleware "github.com/igorsal/gh-telegram/api/middleware"
	"github.com/igorsal/gh-telegram/internal/config"
	"github.com/igorsal/gh-telegram/internal/feed"
	"github.com/igorsal/gh-telegram/internal/interfaces"
	"github.com/igorsal/gh-telegram/internal/middleware"
	"github.com/igorsal/gh-telegram/internal/services"
	"github.com/igorsal/gh-telegram/internal/telemetry"
	"github.com/igorsal/gh-telegram/io/telegram"
	"github.com/igorsal/gh-telegram/pkg/logger"
	"github.com/igorsal/gh-telegram/pkg/metrics"
)

const (
	ShutdownTimeout = 30 * time.Second
	IdleTimeout     = 120 * time.Second
)

// Application holds all dependencies
type Application struct {
	config    *config.Config
	logger    interfaces.Logger
	metrics   interfaces.MetricsCollector
	telemetry *telemetry.Provider
	notifier  interfaces.Notifier
	breaker   interfaces.CircuitBreaker
	relay     interfaces.RelayService
	hub       *feed.Hub
	server    *http.Server
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := initializeApplication(ctx, cfg, prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	app.logger.Info("Starting gh-telegram",
		"version", appVersion(),
		"webhook_path", cfg.GitHub.WebhookPath,
		"dry_run", cfg.Telegram.DryRun,
		"feed", cfg.Feed.Enabled,
	)

	return app.run(ctx)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initializeApplication wires every dependency from cfg
func initializeApplication(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*Application, error) {
	log := logger.NewAdapter(cfg.Logging.Level, cfg.Logging.Format)
	collector := metrics.NewPrometheusCollector(reg)

	provider, err := telemetry.NewProvider(ctx, cfg.Telemetry, appVersion(), log)
	if err != nil {
		return nil, err
	}

	notifier, breaker := newNotifier(cfg.Telegram, log, collector, provider)

	app := &Application{
		config:    cfg,
		logger:    log,
		metrics:   collector,
		telemetry: provider,
		notifier:  notifier,
		breaker:   breaker,
	}

	var publisher interfaces.Publisher
	if cfg.Feed.Enabled {
		app.hub = feed.NewHub(log, collector)
		publisher = app.hub
	}

	app.relay = services.NewRelayService(services.NewDecoder(), notifier, publisher, log, collector, provider.Tracer())
	app.setupServer()

	return app, nil
}

// newNotifier returns the dry-run notifier or the real client with its breaker
func newNotifier(cfg config.TelegramConfig, log interfaces.Logger, collector interfaces.MetricsCollector, provider *telemetry.Provider) (interfaces.Notifier, interfaces.CircuitBreaker) {
	if cfg.DryRun {
		log.Warn("Telegram dry run enabled, messages will only be logged")
		return telegram.NewDryRunClient(log), nil
	}
	client := telegram.NewClient(cfg, log, collector, provider.Tracer())
	return client, client.Breaker()
}

// setupServer configures the HTTP server with all routes and middleware
func (app *Application) setupServer() {
	healthHandler := handlers.NewHealthHandler(appVersion(), app.breaker, app.logger)
	webhookHandler := handlers.NewWebhookHandler(app.relay, app.logger, app.metrics)
	previewHandler := handlers.NewPreviewHandler(app.relay, app.logger)

	router := mux.NewRouter()

	tracing := middleware.Tracing(app.telemetry.Tracer(), app.telemetry.Propagator())

	router.Use(middleware.RequestID)
	router.Use(tracing)
	router.Use(apimiddleware.PanicRecoveryMiddleware(app.logger))
	router.Use(apimiddleware.MetricsMiddleware(app.metrics))
	router.Use(middleware.LoggingMiddleware(app.logger))

	// Router middleware only runs for matched routes
	forbidden := middleware.RequestID(tracing(
		apimiddleware.MetricsMiddleware(app.metrics)(
			middleware.LoggingMiddleware(app.logger)(http.HandlerFunc(middleware.Forbidden)))))
	router.NotFoundHandler = forbidden
	router.MethodNotAllowedHandler = forbidden

	router.HandleFunc("/health", healthHandler.Handle).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/preview", previewHandler.Handle).Methods(http.MethodPost)
	if app.hub != nil {
		router.Handle("/feed", app.hub).Methods(http.MethodGet)
	}

	// No method matcher: the guard answers 403 for anything but POST
	router.Handle(app.config.GitHub.WebhookPath,
		middleware.HookshotGuard(app.config.GitHub.WebhookPath, app.logger)(
			apimiddleware.GitHubWebhookAuth(app.config.GitHub.WebhookSecret, app.logger)(
				http.HandlerFunc(webhookHandler.Handle))))

	app.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", app.config.Server.Host, app.config.Server.Port),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}
}

// run serves until ctx is cancelled, then shuts down gracefully
func (app *Application) run(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	if app.hub != nil {
		go app.hub.Run(hubCtx)
	}

	go func() {
		var err error
		if app.config.Server.TLSEnabled() {
			app.logger.Info("Starting HTTPS server",
				"addr", app.server.Addr,
				"cert_file", app.config.Server.TLSCertFile,
			)
			err = app.server.ListenAndServeTLS(app.config.Server.TLSCertFile, app.config.Server.TLSKeyFile)
		} else {
			app.logger.Info("Starting HTTP server", "addr", app.server.Addr)
			err = app.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed to start: %w", err)

	case <-ctx.Done():
		app.logger.Info("Shutdown signal received")
		stopHub()
		return app.gracefulShutdown()
	}
}

// gracefulShutdown drains the HTTP server and flushes traces
func (app *Application) gracefulShutdown() error {
	app.logger.Info("Starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("Graceful shutdown failed, forcing close", err)
		if closeErr := app.server.Close(); closeErr != nil {
			app.logger.Error("Force shutdown also failed", closeErr)
		}
		errs = append(errs, fmt.Errorf("server shutdown failed: %w", err))
	}

	if err := app.telemetry.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("Telemetry shutdown failed", err)
		errs = append(errs, fmt.Errorf("telemetry shutdown failed: %w", err))
	}

	if len(errs) == 0 {
		app.logger.Info("Graceful shutdown completed successfully")
	}
	return errors.Join(errs...)
}
