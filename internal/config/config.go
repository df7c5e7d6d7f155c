// Package config
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"authgate/internal/domain"
)

type Config struct {
	Address        string
	AllowedOrigins []string
	DatabaseURL    string
	RedisURL       string
	SecretKey      string
	LogLevel       string
	LogFormat      string

	AccessTokenLifetime  time.Duration
	RefreshTokenLifetime time.Duration
	RequestTimeout       time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	// Logs
	logLevel := getEnv("LOG_LEVEL", "info")
	logFormat := getEnv("LOG_FORMAT", "text")

	// Server HTTP Address
	addr := getEnv("HTTP_ADDR", ":8000")

	// Allowed Origins
	var origins []string
	rawOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if rawOrigins != "" {
		parts := strings.SplitSeq(rawOrigins, ",")
		for o := range parts {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	// Collaborators and signing key, all mandatory (see Missing)
	databaseURL := os.Getenv("DATABASE_URL")
	redisURL := os.Getenv("REDIS_URL")
	secretKey := os.Getenv("SECRET_KEY")

	// Token lifetimes
	accessLifetime := domain.AccessTokenLifetime
	if raw := os.Getenv("ACCESS_TOKEN_LIFETIME"); raw != "" {
		if duration, err := time.ParseDuration(raw); err == nil && duration > 0 {
			accessLifetime = duration
		}
	}
	refreshLifetime := domain.RefreshTokenLifetime
	if raw := os.Getenv("REFRESH_TOKEN_LIFETIME"); raw != "" {
		if duration, err := time.ParseDuration(raw); err == nil && duration > 0 {
			refreshLifetime = duration
		}
	}

	requestTimeout := 5 * time.Second
	if raw := os.Getenv("REQUEST_TIMEOUT"); raw != "" {
		if duration, err := time.ParseDuration(raw); err == nil && duration > 0 {
			requestTimeout = duration
		}
	}

	return &Config{
		LogLevel:  logLevel,
		LogFormat: logFormat,

		Address:        addr,
		AllowedOrigins: origins,
		DatabaseURL:    databaseURL,
		RedisURL:       redisURL,
		SecretKey:      secretKey,

		AccessTokenLifetime:  accessLifetime,
		RefreshTokenLifetime: refreshLifetime,
		RequestTimeout:       requestTimeout,
	}
}

// Missing returns the names of mandatory environment variables that are unset.
// Deployment must fail fast when any of these is missing.
func (c *Config) Missing() []string {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.RedisURL == "" {
		missing = append(missing, "REDIS_URL")
	}
	if c.SecretKey == "" {
		missing = append(missing, "SECRET_KEY")
	}
	return missing
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
