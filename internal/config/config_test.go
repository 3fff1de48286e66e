package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "APP_ENV", "JWT_SECRET", "TOKEN_TTL", "STORE", "DATABASE_URL", "SURREAL_URL",
		"SURREAL_NAMESPACE", "SURREAL_DATABASE", "SURREAL_USER", "SURREAL_PASS",
		"ENCRYPTION_KEY", "CORS_ORIGINS", "TIMEZONE",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_CALLBACK_URL", "FRONTEND_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 30*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "chrona", cfg.SurrealNamespace)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.GoogleEnabled())
	assert.Equal(t, "http://localhost:5173", cfg.FrontendURL)
}

func TestGoogleSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9000")
	t.Setenv("GOOGLE_CLIENT_ID", "id")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.GoogleEnabled())
	assert.Equal(t, "http://localhost:9000/api/auth/google/callback", cfg.GoogleCallbackURL)

	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("GOOGLE_CALLBACK_URL", "https://api.example.com/api/auth/google/callback")
	cfg, err = FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.GoogleEnabled())
	assert.Equal(t, "https://api.example.com/api/auth/google/callback", cfg.GoogleCallbackURL)
}

func TestJWTSecretRequired(t *testing.T) {
	clearEnv(t)
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestStoreSelection(t *testing.T) {
	t.Run("database url implies postgres", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("DATABASE_URL", "postgres://localhost/chrona")
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, StorePostgres, cfg.Store)
	})

	t.Run("surreal needs url", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("STORE", "surreal")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("unknown store", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("STORE", "mongo")
		_, err := FromEnv()
		assert.Error(t, err)
	})
}

func TestParsesListsAndZones(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("APP_ENV", "production")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.IsProduction())

	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err = FromEnv()
	assert.Error(t, err)
}
