// Package config loads service settings from the environment. A .env
// file, if present, is loaded by the caller before Load runs.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/kbenson/userapi/internal/token"
)

type Config struct {
	Addr          string
	JWTSecret     string
	TokenTTL      time.Duration
	DatabaseURL   string
	AdminEmail    string
	AdminPassword string
	LogLevel      string
}

// Load reads configuration from the environment. JWT_SECRET is
// required; everything else has a default or is optional.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	ttl := token.DefaultTTL
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, errors.New("TOKEN_TTL must be a positive duration")
		}
		ttl = d
	}

	return &Config{
		Addr:          ":" + getenv("PORT", "3001"),
		JWTSecret:     secret,
		TokenTTL:      ttl,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
	}, nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
