package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL())
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, 10, cfg.AuthRateLimit)
	assert.Equal(t, 24*time.Hour, cfg.Reminder())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("JWT_EXPIRES_IN", "2h")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("TIMEZONE", "America/Sao_Paulo")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("BCRYPT_COST", "50")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.Error(t, err)
}
