// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables, optionally
// seeded from a .env file in the working directory.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// BaseURL is the public URL of the frontend, used in notification
	// mails. Defaults to "http://localhost:5173".
	BaseURL string

	// Currency is the ISO currency code payments are charged in.
	// Defaults to "eur".
	Currency string

	// SweepInterval is how often the lifecycle sweep re-evaluates open
	// trips. Defaults to 24h.
	SweepInterval time.Duration

	// SMTP settings for outbound notification mail. SMTPHost empty
	// disables mail entirely.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string

	// Razorpay API credentials for payment holds. Required.
	RazorpayKeyID     string
	RazorpayKeySecret string
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is loaded first if present; real
// environment variables win over .env entries.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		BaseURL:      getEnv("BASE_URL", "http://localhost:5173"),
		Currency:     getEnv("CURRENCY", "eur"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@adventuretogether.example"),
	}

	var err error
	cfg.SweepInterval, err = time.ParseDuration(getEnv("SWEEP_INTERVAL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}
	cfg.SMTPPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.RazorpayKeyID = os.Getenv("RAZORPAY_KEY_ID")
	if cfg.RazorpayKeyID == "" {
		missing = append(missing, "RAZORPAY_KEY_ID")
	}
	cfg.RazorpayKeySecret = os.Getenv("RAZORPAY_KEY_SECRET")
	if cfg.RazorpayKeySecret == "" {
		missing = append(missing, "RAZORPAY_KEY_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
