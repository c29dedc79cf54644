package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SPREADSHEET_ID", "sheet-1")
	for _, k := range []string{"APP_PORT", "SHEET_NAME", "CACHE_TTL", "VERIFY_ATTEMPTS", "DB_HOST", "JWT_SECRET", "COMPOSIO_API_KEY", "RABBITMQ_URL", "AMQP_URL"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sheet-1", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "Invitados", cfg.Sheets.SheetName)
	assert.Equal(t, 15*time.Second, cfg.Sheets.CacheTTL)
	assert.Equal(t, 2*time.Minute, cfg.Sheets.PendingTTL)
	assert.Equal(t, 4, cfg.Sheets.VerifyAttempts)
	assert.Equal(t, 400*time.Millisecond, cfg.Sheets.VerifyDelay)
	assert.False(t, cfg.Sheets.Writable())
	assert.False(t, cfg.HistoryEnabled())
	assert.False(t, cfg.AuthEnabled())
	assert.False(t, cfg.LoginEnabled())
	assert.Equal(t, "", cfg.AMQPURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SPREADSHEET_ID", "sheet-1")
	t.Setenv("SHEET_NAME", "Lista")
	t.Setenv("CACHE_TTL", "3s")
	t.Setenv("VERIFY_ATTEMPTS", "-2")
	t.Setenv("VERIFY_DELAY", "bogus")
	t.Setenv("COMPOSIO_API_KEY", "k")
	t.Setenv("DB_HOST", "db")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("EDITOR_PASSWORD_HASH", "$2a$10$x")
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://broker/")

	cfg := Load()
	assert.Equal(t, "Lista", cfg.Sheets.SheetName)
	assert.Equal(t, 3*time.Second, cfg.Sheets.CacheTTL)
	assert.Equal(t, 4, cfg.Sheets.VerifyAttempts, "non-positive falls back")
	assert.Equal(t, 400*time.Millisecond, cfg.Sheets.VerifyDelay)
	assert.True(t, cfg.Sheets.Writable())
	assert.True(t, cfg.HistoryEnabled())
	assert.True(t, cfg.LoginEnabled())
	assert.Equal(t, "amqp://broker/", cfg.AMQPURL)
}

func TestRateLimitConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_ENABLED", "off")

	cfg := LoadRateLimitConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 5, cfg.Capacity)
	assert.Equal(t, 5*time.Minute, cfg.TTL, "ttl is at least five refill intervals")
	assert.Equal(t, "ip_editor_route", cfg.KeyStrategy)
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	assert.Equal(t, "cache:6380", LoadRedisConfig().Addr)

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("REDIS_TLS", "true")
	cfg := LoadRedisConfig()
	assert.Equal(t, "redis:6379", cfg.Addr)
	assert.True(t, cfg.TLS)
}
