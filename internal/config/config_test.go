package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                  "development",
		Port:                 "8000",
		DBDriver:             "postgres",
		DBSSLMode:            "disable",
		JWTSecret:            "secure-secret-at-least-32-chars-long",
		DBPassword:           "secure-password",
		PostsPerPage:         10,
		IndexCacheTTLSeconds: 20,
		MaxUploadMB:          10,
		SessionTTLHours:      24,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Valid development config", func(_ *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing JWT secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"Unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"SQLite driver in development", func(c *Config) { c.DBDriver = "sqlite" }, false},
		{"Zero page size", func(c *Config) { c.PostsPerPage = 0 }, true},
		{"Negative cache TTL", func(c *Config) { c.IndexCacheTTLSeconds = -1 }, true},
		{"Zero cache TTL disables caching", func(c *Config) { c.IndexCacheTTLSeconds = 0 }, false},
		{"Zero upload limit", func(c *Config) { c.MaxUploadMB = 0 }, true},
		{"Production with disable SSL mode", func(c *Config) { c.Env = "production" }, true},
		{"Production with require SSL mode", func(c *Config) { c.Env = "production"; c.DBSSLMode = "require" }, false},
		{"Production with default secret", func(c *Config) {
			c.Env = "production"
			c.DBSSLMode = "require"
			c.JWTSecret = defaultJWTSecret
		}, true},
		{"Production with short secret", func(c *Config) {
			c.Env = "prod"
			c.DBSSLMode = "require"
			c.JWTSecret = "short"
		}, true},
		{"Production with default DB password", func(c *Config) {
			c.Env = "production"
			c.DBSSLMode = "verify-full"
			c.DBPassword = "password"
		}, true},
		{"Production with sqlite", func(c *Config) {
			c.Env = "production"
			c.DBSSLMode = "require"
			c.DBDriver = "sqlite"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	c := validConfig()
	c.IndexCacheTTLSeconds = 20
	c.SessionTTLHours = 2
	c.MaxUploadMB = 3

	assert.Equal(t, 20*time.Second, c.IndexCacheTTL())
	assert.Equal(t, 2*time.Hour, c.SessionTTL())
	assert.Equal(t, 3*1024*1024, c.MaxUploadBytes())
}

func TestLoadConfig_DefaultsAndNormalization(t *testing.T) {
	defer viper.Reset()
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("POSTS_PER_PAGE")

	os.Setenv("APP_ENV", "test")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("POSTS_PER_PAGE", "5")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", c.Env)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, 5, c.PostsPerPage)
	assert.Equal(t, 20, c.IndexCacheTTLSeconds)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.False(t, c.IsProduction())
}
