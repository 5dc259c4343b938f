package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL and JWT_SECRET are
// required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	ClientURL       string

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Auth
	JWTSecret string

	// HTTP rate limiting: RateLimitRequests per RateLimitWindow per client IP
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Mail delivery
	MailTransport   string // smtp, webhook or log
	MailFrom        string
	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPassword    string
	MailWebhookURL  string
	ProviderTimeout time.Duration
	MailWorkers     int
	MailRateLimit   int
	MailMaxAttempts int

	// Retry backoff durations: index 0 = first retry delay, etc.
	RetryBackoff []time.Duration

	// Background workers
	RetryInterval  time.Duration
	DigestInterval time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "5000"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		ClientURL:       getEnv("CLIENT_URL", "http://localhost:5173"),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		JWTSecret: secret,

		RateLimitRequests: getInt("RATE_LIMIT_REQUESTS", 1000),
		RateLimitWindow:   getDuration("RATE_LIMIT_WINDOW", 15*time.Minute),

		MailTransport:   strings.ToLower(getEnv("MAIL_TRANSPORT", "log")),
		MailFrom:        getEnv("MAIL_FROM", "no-reply@jobboard.local"),
		SMTPHost:        os.Getenv("EMAIL_HOST"),
		SMTPPort:        getInt("EMAIL_PORT", 587),
		SMTPUser:        os.Getenv("EMAIL_USER"),
		SMTPPassword:    os.Getenv("EMAIL_PASS"),
		MailWebhookURL:  os.Getenv("MAIL_WEBHOOK_URL"),
		ProviderTimeout: getDuration("PROVIDER_TIMEOUT", 10*time.Second),
		MailWorkers:     getInt("MAIL_WORKERS", 4),
		MailRateLimit:   getInt("MAIL_RATE_LIMIT", 10),
		MailMaxAttempts: getInt("MAIL_MAX_ATTEMPTS", 3),

		RetryBackoff: []time.Duration{
			getDuration("RETRY_BACKOFF_1", 5*time.Second),
			getDuration("RETRY_BACKOFF_2", 30*time.Second),
			getDuration("RETRY_BACKOFF_3", 120*time.Second),
		},

		RetryInterval:  getDuration("RETRY_INTERVAL", time.Second),
		DigestInterval: getDuration("DIGEST_INTERVAL", time.Hour),
	}

	switch cfg.MailTransport {
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("EMAIL_HOST is required when MAIL_TRANSPORT=smtp")
		}
	case "webhook":
		if cfg.MailWebhookURL == "" {
			return nil, fmt.Errorf("MAIL_WEBHOOK_URL is required when MAIL_TRANSPORT=webhook")
		}
	case "log":
	default:
		return nil, fmt.Errorf("unknown MAIL_TRANSPORT %q", cfg.MailTransport)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
