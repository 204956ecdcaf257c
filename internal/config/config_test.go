package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validBase() *Config {
	return &Config{
		Env:        "development",
		Port:       "8264",
		JWTSecret:  "secure-secret-at-least-32-chars-long",
		DBPassword: "secure-password",
		DBSSLMode:  "disable",
		RedisURL:   "localhost:6379",
	}
}

func TestConfig_Validate_Development(t *testing.T) {
	c := validBase()
	assert.NoError(t, c.Validate())
}

func TestConfig_Validate_RequiredFields(t *testing.T) {
	c := validBase()
	c.Port = ""
	assert.Error(t, c.Validate())

	c = validBase()
	c.JWTSecret = ""
	assert.Error(t, c.Validate())
}

func TestConfig_Validate_ProductionChecks(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"default secret rejected", func(c *Config) {
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
		{"short secret rejected", func(c *Config) {
			c.JWTSecret = "short"
		}, true},
		{"default db password rejected", func(c *Config) {
			c.DBPassword = "password"
		}, true},
		{"ssl disable rejected", func(c *Config) {
			c.DBSSLMode = "disable"
		}, true},
		{"ssl empty rejected", func(c *Config) {
			c.DBSSLMode = ""
		}, true},
		{"hardened config accepted", func(c *Config) {}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validBase()
			c.Env = "production"
			c.DBSSLMode = "require"
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
