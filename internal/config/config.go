package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Supabase
	SupabaseURL            string `envconfig:"SUPABASE_URL"`
	SupabasePublishableKey string `envconfig:"SUPABASE_PUBLISHABLE_KEY"`
	SupabaseJWTSecret      string `envconfig:"SUPABASE_JWT_SECRET"`
	SupabaseServiceRoleKey string `envconfig:"SUPABASE_SERVICE_ROLE_KEY"`
	SupabaseStorageBucket  string `envconfig:"SUPABASE_STORAGE_BUCKET" default:"plan-exports"`
	SupabaseAuthProvider   string `envconfig:"SUPABASE_AUTH_PROVIDER" default:"github"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Page cache (optional)
	RedisURL     string        `envconfig:"REDIS_URL"`
	PageCacheTTL time.Duration `envconfig:"PAGE_CACHE_TTL" default:"5m"`

	// AI completion endpoint
	AIAPIKey         string        `envconfig:"AI_API_KEY"`
	AIBaseURL        string        `envconfig:"AI_BASE_URL" default:"https://api.openai.com/v1"`
	AIModel          string        `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	AIRequestTimeout time.Duration `envconfig:"AI_REQUEST_TIMEOUT" default:"120s"`

	// Server
	Port               string   `envconfig:"PORT" default:"8080"`
	Environment        string   `envconfig:"ENVIRONMENT" default:"development"`
	BaseURL            string   `envconfig:"BASE_URL" default:"http://localhost:8080"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.AIAPIKey == "" {
		return fmt.Errorf("AI_API_KEY is required")
	}
	if c.AIRequestTimeout <= 0 {
		return fmt.Errorf("AI_REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// StorageKey is the key used for plan export uploads. Without a service role
// key uploads go through with the publishable key and rely on bucket policies.
func (c *Config) StorageKey() string {
	if c.SupabaseServiceRoleKey != "" {
		return c.SupabaseServiceRoleKey
	}
	return c.SupabasePublishableKey
}

// IsProduction reports whether secure cookies and release mode should be used.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
