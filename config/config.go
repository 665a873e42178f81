// Package config loads server configuration from the environment.
//
// A .env file is loaded best-effort first (development convenience); real
// environments set variables directly. PORT is the one hard requirement:
// the process refuses to start without it rather than guessing a default.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	DBPath string

	Upload struct {
		Endpoint string        // CDN upload URL; empty disables the proxy tier
		Timeout  time.Duration // hard client-side cap per upload attempt
		Dir      string        // local fallback directory, served under /uploads/
	}

	Auth struct {
		AdminUser    string
		PasswordHash string // bcrypt hash of the admin password
		Allowlist    []string
		JWTSecret    string
		TokenTTL     time.Duration
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration. Returns an error when PORT is unset.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Port = os.Getenv("PORT")
	if cfg.Port == "" {
		return nil, errors.New("PORT is required")
	}

	cfg.DBPath = getEnv("DB_PATH", "sitebook.db")

	cfg.Upload.Endpoint = os.Getenv("UPLOAD_ENDPOINT")
	cfg.Upload.Timeout = getDuration("UPLOAD_TIMEOUT", 15*time.Second)
	cfg.Upload.Dir = getEnv("UPLOAD_DIR", "./uploads")

	cfg.Auth.AdminUser = getEnv("ADMIN_USER", "admin")
	cfg.Auth.PasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.Auth.TokenTTL = getDuration("TOKEN_TTL", 12*time.Hour)
	if list := os.Getenv("ADMIN_ALLOWLIST"); list != "" {
		cfg.Auth.Allowlist = splitCSV(list)
	} else {
		cfg.Auth.Allowlist = []string{cfg.Auth.AdminUser}
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "console")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
