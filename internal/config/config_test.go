package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Port:         "3000",
		SQLiteDBPath: t.TempDir() + "/savesmart.db",
		JWTSecret:    "test-secret",
		TokenTTL:     7 * 24 * time.Hour,
		BcryptCost:   12,
		BackendURL:   "http://localhost:3000",
		FrontendURL:  "http://localhost:5173",
	}
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, validConfig(t).Validate())
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"non-numeric port", func(c *Config) { c.Port = "abc" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port"},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"ttl too short", func(c *Config) { c.TokenTTL = time.Second }, "token TTL"},
		{"bcrypt cost too low", func(c *Config) { c.BcryptCost = 3 }, "bcrypt cost"},
		{"bcrypt cost too high", func(c *Config) { c.BcryptCost = 32 }, "bcrypt cost"},
		{"bad frontend scheme", func(c *Config) { c.FrontendURL = "ftp://x" }, "FRONTEND_URL"},
		{"empty db path", func(c *Config) { c.SQLiteDBPath = "" }, "database path"},
		{"google secret without id", func(c *Config) { c.GoogleClientSecret = "s" }, "GOOGLE_CLIENT_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGoogleEnabled(t *testing.T) {
	cfg := validConfig(t)
	assert.False(t, cfg.GoogleEnabled())

	cfg.GoogleClientID = "id"
	cfg.GoogleClientSecret = "secret"
	assert.True(t, cfg.GoogleEnabled())
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
}
