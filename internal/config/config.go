package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Telegram  TelegramConfig
	GitHub    GitHubConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
	Feed      FeedConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

// TLSEnabled reports whether both certificate and key are configured
func (s ServerConfig) TLSEnabled() bool {
	return s.TLSCertFile != "" && s.TLSKeyFile != ""
}

type TelegramConfig struct {
	BotToken   string
	ChatID     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	DryRun     bool
}

type GitHubConfig struct {
	WebhookSecret string
	WebhookPath   string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type TelemetryConfig struct {
	Enabled  bool
	Endpoint string
	Insecure bool
}

type FeedConfig struct {
	Enabled bool
}

// Load loads configuration from environment variables, reading a .env file
// first when one exists. It does not check required values; call Validate.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnvWithDefault("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvWithDefault("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationFromEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationFromEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			TLSCertFile:  os.Getenv("TLS_CERT_FILE"),
			TLSKeyFile:   os.Getenv("TLS_KEY_FILE"),
		},
		Telegram: TelegramConfig{
			BotToken:   getFirstEnv("TELEGRAM_BOT_TOKEN", "BOT_TOKEN"),
			ChatID:     getFirstEnv("TELEGRAM_CHAT_ID", "CHAT_ID"),
			BaseURL:    strings.TrimRight(getEnvWithDefault("TELEGRAM_BASE_URL", "https://api.telegram.org"), "/"),
			Timeout:    getDurationFromEnv("TELEGRAM_TIMEOUT", 10*time.Second),
			MaxRetries: getIntFromEnv("TELEGRAM_MAX_RETRIES", 0),
			DryRun:     getBoolFromEnv("TELEGRAM_DRY_RUN", false),
		},
		GitHub: GitHubConfig{
			WebhookSecret: os.Getenv("GITHUB_WEBHOOK_SECRET"),
			WebhookPath:   getEnvWithDefault("WEBHOOK_PATH", "/webhook"),
		},
		Logging: LoggingConfig{
			Level:  getEnvWithDefault("LOG_LEVEL", "info"),
			Format: getEnvWithDefault("LOG_FORMAT", "json"),
		},
		Telemetry: TelemetryConfig{
			Enabled:  getBoolFromEnv("OTEL_ENABLED", false),
			Endpoint: getEnvWithDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			Insecure: getBoolFromEnv("OTEL_EXPORTER_OTLP_INSECURE", true),
		},
		Feed: FeedConfig{
			Enabled: getBoolFromEnv("FEED_ENABLED", false),
		},
	}

	return cfg, nil
}

// Validate checks the values needed to run the relay
func (c *Config) Validate() error {
	var errs []error

	if !c.Telegram.DryRun {
		if c.Telegram.BotToken == "" {
			errs = append(errs, errors.New("missing required environment variable: TELEGRAM_BOT_TOKEN (or BOT_TOKEN)"))
		}
		if c.Telegram.ChatID == "" {
			errs = append(errs, errors.New("missing required environment variable: TELEGRAM_CHAT_ID (or CHAT_ID)"))
		}
	}
	if c.Telegram.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("TELEGRAM_MAX_RETRIES must not be negative, got %d", c.Telegram.MaxRetries))
	}
	if !strings.HasPrefix(c.GitHub.WebhookPath, "/") {
		errs = append(errs, fmt.Errorf("WEBHOOK_PATH must start with '/', got %q", c.GitHub.WebhookPath))
	}
	if (c.Server.TLSCertFile == "") != (c.Server.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}

	return errors.Join(errs...)
}

// getFirstEnv returns the first non-empty value among keys
func getFirstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntFromEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolFromEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationFromEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
