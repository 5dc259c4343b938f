package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifyhub/jobboard/internal/config"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "s")
	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobboard")
	t.Setenv("JWT_SECRET", "")
	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobboard")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MAIL_TRANSPORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.HTTPPort)
	assert.Equal(t, "log", cfg.MailTransport)
	assert.Equal(t, 1000, cfg.RateLimitRequests)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow)
	assert.Len(t, cfg.RetryBackoff, 3)
	assert.Equal(t, time.Hour, cfg.DigestInterval)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobboard")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("MAIL_WORKERS", "8")
	t.Setenv("RETRY_BACKOFF_1", "1s")
	t.Setenv("MAIL_TRANSPORT", "log")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 8, cfg.MailWorkers)
	assert.Equal(t, time.Second, cfg.RetryBackoff[0])
}

func TestLoad_MailTransportValidation(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobboard")
	t.Setenv("JWT_SECRET", "secret")

	t.Run("smtp needs host", func(t *testing.T) {
		t.Setenv("MAIL_TRANSPORT", "smtp")
		t.Setenv("EMAIL_HOST", "")
		_, err := config.Load()
		require.Error(t, err)
	})

	t.Run("webhook needs url", func(t *testing.T) {
		t.Setenv("MAIL_TRANSPORT", "webhook")
		t.Setenv("MAIL_WEBHOOK_URL", "")
		_, err := config.Load()
		require.Error(t, err)
	})

	t.Run("unknown transport", func(t *testing.T) {
		t.Setenv("MAIL_TRANSPORT", "pigeon")
		_, err := config.Load()
		require.Error(t, err)
	})
}
