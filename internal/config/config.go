package config

import (
	"errors"
	"log"
	"os"
	"time"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port        string
	DatabaseURL string

	// AppSecret keys the HMAC used to pseudonymize client addresses.
	// The server refuses to start without it.
	AppSecret string

	CORSOrigin    string
	SweepInterval time.Duration

	// Optional bootstrap admin, seeded (upsert by email) on startup.
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Load reads the configuration from environment variables, applying defaults
// for everything except APP_SECRET.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		DatabaseURL:   getenv("DATABASE_URL", "sqlite://sonymous.db"),
		AppSecret:     os.Getenv("APP_SECRET"),
		CORSOrigin:    getenv("CORS_ORIGIN", "http://localhost:3000"),
		SweepInterval: time.Hour,
		AdminName:     os.Getenv("ADMIN_NAME"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.AppSecret == "" {
		return nil, errors.New("APP_SECRET environment variable not set")
	}

	if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Printf("Ignoring invalid SWEEP_INTERVAL %q: %v", raw, err)
		} else {
			cfg.SweepInterval = d
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
