package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSurreal  = "surreal"
)

type Config struct {
	Port   string
	AppEnv string

	JWTSecret string
	TokenTTL  time.Duration

	Store       string
	DatabaseURL string

	SurrealURL       string
	SurrealNamespace string
	SurrealDatabase  string
	SurrealUser      string
	SurrealPass      string

	// EncryptionKey is base64 of 32 bytes; empty disables content sealing.
	EncryptionKey string

	CORSOrigins []string
	Location    *time.Location

	// Google sign-in is enabled when both client credentials are set.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	FrontendURL        string
}

func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

// Load reads a .env file when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from the environment alone.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:             getenv("PORT", "8080"),
		AppEnv:           getenv("APP_ENV", "development"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SurrealURL:       os.Getenv("SURREAL_URL"),
		SurrealNamespace: getenv("SURREAL_NAMESPACE", "chrona"),
		SurrealDatabase:  getenv("SURREAL_DATABASE", "chrona"),
		SurrealUser:      os.Getenv("SURREAL_USER"),
		SurrealPass:      os.Getenv("SURREAL_PASS"),
		EncryptionKey:    os.Getenv("ENCRYPTION_KEY"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		FrontendURL:        getenv("FRONTEND_URL", "http://localhost:5173"),
	}
	cfg.GoogleCallbackURL = getenv("GOOGLE_CALLBACK_URL", "http://localhost:"+cfg.Port+"/api/auth/google/callback")

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	ttl, err := time.ParseDuration(getenv("TOKEN_TTL", "720h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL %q", os.Getenv("TOKEN_TTL"))
	}
	cfg.TokenTTL = ttl

	defaultStore := StoreMemory
	if cfg.DatabaseURL != "" {
		defaultStore = StorePostgres
	}
	cfg.Store = strings.ToLower(getenv("STORE", defaultStore))
	switch cfg.Store {
	case StoreMemory:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("STORE=postgres needs DATABASE_URL")
		}
	case StoreSurreal:
		if cfg.SurrealURL == "" {
			return nil, errors.New("STORE=surreal needs SURREAL_URL")
		}
	default:
		return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
	}

	for _, origin := range strings.Split(getenv("CORS_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	loc, err := time.LoadLocation(getenv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}
