package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.CookieSecure)
	assert.NotEmpty(t, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://staging.example.com")

	cfg := Load()

	assert.Equal(t, "9999", cfg.ServerPort)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.CORSOrigins)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("SESSION_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
}
