// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Upstream audit API
	APIBaseURL     string        // Base URL of the AuditAI backend
	APITimeout     time.Duration // Per-request timeout for backend calls
	HealthInterval time.Duration // Connectivity probe interval

	// Polling
	PollInterval time.Duration // Live view refresh interval
	AlertLimit   int           // Max alerts fetched per tick
	MinScore     float64       // Minimum risk score fetched per tick

	// Local state
	TokenPath    string // Bearer token file (empty = in-memory only)
	SettingsPath string // Risk-threshold settings file

	// Security
	AdminSecret  string // Required for destructive actions (clear alerts)
	RateLimitRPM int
	CORSOrigins  []string

	// Tracing
	OTLPEndpoint string
}

// Defaults
const (
	DefaultPort           = "8080"
	DefaultEnv            = "development"
	DefaultLogLevel       = "info"
	DefaultAPIBaseURL     = "http://localhost:8000"
	DefaultAPITimeout     = 10 * time.Second
	DefaultHealthInterval = 10 * time.Second
	DefaultPollInterval   = 3 * time.Second
	DefaultAlertLimit     = 1000
	DefaultRateLimitRPM   = 120
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", DefaultPort),
		Env:            getEnv("ENV", DefaultEnv),
		LogLevel:       getEnv("LOG_LEVEL", DefaultLogLevel),
		APIBaseURL:     getEnv("AUDIT_API_URL", DefaultAPIBaseURL),
		APITimeout:     getEnvDuration("AUDIT_API_TIMEOUT", DefaultAPITimeout),
		HealthInterval: getEnvDuration("HEALTH_INTERVAL", DefaultHealthInterval),
		PollInterval:   getEnvDuration("POLL_INTERVAL", DefaultPollInterval),
		AlertLimit:     int(getEnvInt64("ALERT_LIMIT", DefaultAlertLimit)),
		MinScore:       getEnvFloat("MIN_SCORE", 0.0),
		TokenPath:      os.Getenv("TOKEN_PATH"),
		SettingsPath:   os.Getenv("SETTINGS_PATH"),
		AdminSecret:    os.Getenv("ADMIN_SECRET"),
		RateLimitRPM:   int(getEnvInt64("RATE_LIMIT_RPM", DefaultRateLimitRPM)),
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and sane
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("AUDIT_API_URL is required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("AUDIT_API_URL must be an absolute URL: %q", c.APIBaseURL)
	}

	if c.PollInterval < time.Second {
		return fmt.Errorf("POLL_INTERVAL must be at least 1s, got %s", c.PollInterval)
	}
	if c.AlertLimit <= 0 || c.AlertLimit > 10000 {
		return fmt.Errorf("ALERT_LIMIT must be between 1 and 10000, got %d", c.AlertLimit)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("MIN_SCORE must be in [0,1], got %g", c.MinScore)
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
