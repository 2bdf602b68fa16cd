package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/osdesk")
	t.Setenv("AUTH0_DOMAIN", "osdesk.eu.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.osdesk.app")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 30, cfg.OSNameRateLimit)
	assert.Equal(t, 5, cfg.OSNameRateBurst)
	assert.Equal(t, 5*time.Second, cfg.FaviconTimeout)
	assert.Equal(t, 6*time.Hour, cfg.StateAuditInterval)
	assert.False(t, cfg.S3.Enabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ORIGINS", "https://osdesk.app,https://www.osdesk.app")
	t.Setenv("PUBLIC_BASE_URL", "https://api.osdesk.app/")
	t.Setenv("OS_NAME_RATE_LIMIT", "10")
	t.Setenv("FAVICON_TIMEOUT", "2s")
	t.Setenv("STATE_AUDIT_INTERVAL", "0")
	t.Setenv("S3_BUCKET", "osdesk-icons")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://osdesk.app", "https://www.osdesk.app"}, cfg.CORSOrigins)
	assert.Equal(t, "https://api.osdesk.app", cfg.PublicBaseURL)
	assert.Equal(t, 10, cfg.OSNameRateLimit)
	assert.Equal(t, 2*time.Second, cfg.FaviconTimeout)
	assert.Zero(t, cfg.StateAuditInterval)
	assert.True(t, cfg.S3.Enabled())
	assert.True(t, cfg.IsProduction())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AUTH0_DOMAIN", "osdesk.eu.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.osdesk.app")

	_, err := Load()
	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OS_NAME_RATE_BURST", "0")

	_, err := Load()
	assert.Error(t, err)
}
