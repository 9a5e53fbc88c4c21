package config_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/entitle/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, config.StorageFile, cfg.StorageBackend)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	// No timeout is invented when the environment does not specify one.
	assert.Zero(t, cfg.HTTPTimeout)
	assert.False(t, cfg.BreakerEnabled)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ENTITLE_API_KEY", "sk_live_123")
	t.Setenv("ENTITLE_BASE_URL", "https://api.example.com")
	t.Setenv("ENTITLE_HTTP_TIMEOUT", "15s")
	t.Setenv("ENTITLE_BREAKER_ENABLED", "true")
	t.Setenv("ENTITLE_CACHE_TTL", "1m")
	t.Setenv("ENTITLE_STORAGE", config.StorageRedis)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "sk_live_123", cfg.APIKey)
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.BreakerEnabled)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, config.StorageRedis, cfg.StorageBackend)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("ENTITLE_HTTP_TIMEOUT", "soon")
	t.Setenv("ENTITLE_BREAKER_ENABLED", "sometimes")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Zero(t, cfg.HTTPTimeout)
	assert.False(t, cfg.BreakerEnabled)
}
