package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper to set env vars and clean up after
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old := os.Getenv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if old == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, old)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "AUDIT_API_URL", "")
	setEnv(t, "PORT", "")
	setEnv(t, "POLL_INTERVAL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, DefaultAlertLimit, cfg.AlertLimit)
	assert.Equal(t, 0.0, cfg.MinScore)
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, "AUDIT_API_URL", "https://audit.example.gov")
	setEnv(t, "PORT", "9090")
	setEnv(t, "POLL_INTERVAL", "5s")
	setEnv(t, "ALERT_LIMIT", "250")
	setEnv(t, "MIN_SCORE", "0.4")
	setEnv(t, "CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://audit.example.gov", cfg.APIBaseURL)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 250, cfg.AlertLimit)
	assert.Equal(t, 0.4, cfg.MinScore)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	setEnv(t, "AUDIT_API_URL", "http://localhost:8000")
	setEnv(t, "POLL_INTERVAL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			APIBaseURL:   "http://localhost:8000",
			PollInterval: 3 * time.Second,
			AlertLimit:   100,
			MinScore:     0,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "missing base URL",
			mutate:  func(c *Config) { c.APIBaseURL = "" },
			wantErr: "AUDIT_API_URL is required",
		},
		{
			name:    "relative base URL",
			mutate:  func(c *Config) { c.APIBaseURL = "localhost:8000/api" },
			wantErr: "absolute URL",
		},
		{
			name:    "poll interval too short",
			mutate:  func(c *Config) { c.PollInterval = 100 * time.Millisecond },
			wantErr: "POLL_INTERVAL",
		},
		{
			name:    "non-positive alert limit",
			mutate:  func(c *Config) { c.AlertLimit = 0 },
			wantErr: "ALERT_LIMIT",
		},
		{
			name:    "alert limit over cap",
			mutate:  func(c *Config) { c.AlertLimit = 20000 },
			wantErr: "ALERT_LIMIT",
		},
		{
			name:    "min score out of range",
			mutate:  func(c *Config) { c.MinScore = 1.5 },
			wantErr: "MIN_SCORE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfig_EnvHelpers(t *testing.T) {
	cfg := Config{Env: "development"}
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg.Env = "production"
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}
