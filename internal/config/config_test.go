package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"startup-os-backend/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_PUBLISHABLE_KEY", "anon-key")
	t.Setenv("SUPABASE_JWT_SECRET", "jwt-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/startupos")
	t.Setenv("AI_API_KEY", "sk-test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "plan-exports", cfg.SupabaseStorageBucket)
	assert.Equal(t, 5*time.Minute, cfg.PageCacheTTL)
	assert.Equal(t, 120*time.Second, cfg.AIRequestTimeout)
	assert.Equal(t, "https://api.openai.com/v1", cfg.AIBaseURL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AI_API_KEY", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI_API_KEY")
}

func TestValidate_RejectsNonPositiveTimeout(t *testing.T) {
	cfg := &config.Config{
		SupabaseURL:            "https://example.supabase.co",
		SupabasePublishableKey: "anon",
		SupabaseJWTSecret:      "secret",
		DatabaseURL:            "postgres://localhost/db",
		AIAPIKey:               "key",
	}
	assert.Error(t, cfg.Validate())

	cfg.AIRequestTimeout = time.Second
	assert.NoError(t, cfg.Validate())
}

func TestStorageKey_PrefersServiceRole(t *testing.T) {
	cfg := &config.Config{SupabasePublishableKey: "anon"}
	assert.Equal(t, "anon", cfg.StorageKey())

	cfg.SupabaseServiceRoleKey = "service"
	assert.Equal(t, "service", cfg.StorageKey())
}
