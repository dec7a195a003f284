package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "library")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "library")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORAGE_ENDPOINT", "localhost:9000")
	t.Setenv("STORAGE_ACCESS_KEY", "minioadmin")
	t.Setenv("STORAGE_SECRET_KEY", "minioadmin")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "*", cfg.Server.CORSOrigin)
	assert.Equal(t, 168*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 672*time.Hour, cfg.Auth.RefreshTokenDuration)
	assert.Equal(t, "unlocked-library", cfg.Storage.Bucket)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfigCollectsAllErrors(t *testing.T) {
	// Only some of the required variables are set; the error should name
	// every missing one, not just the first.
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORAGE_ENDPOINT", "")
	t.Setenv("STORAGE_ACCESS_KEY", "")
	t.Setenv("STORAGE_SECRET_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "STORAGE_ENDPOINT")
}

func TestLoadConfigRejectsBadNumbers(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_PORT", "not-a-number")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PORT")
}

func TestClampPoolSize(t *testing.T) {
	assert.Equal(t, 2, clampPoolSize(0))
	assert.Equal(t, 10, clampPoolSize(10))
	assert.Equal(t, 100, clampPoolSize(500))
}

func TestDerivedPublicURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_USE_SSL", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://localhost:9000/unlocked-library", cfg.Storage.PublicBaseURL)
}
