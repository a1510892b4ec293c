package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:                     "8375",
		Env:                      "development",
		DBDriver:                 DriverPostgres,
		DBPassword:               "secure-password",
		DBSSLMode:                "require",
		JWTSecret:                "secure-secret-at-least-32-chars-long",
		SessionExpirationHours:   24,
		FeedLimit:                100,
		DBConnMaxLifetimeMinutes: 5,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid development", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"sqlite without path", func(c *Config) { c.DBDriver = DriverSQLite }, true},
		{"sqlite with path", func(c *Config) { c.DBDriver = DriverSQLite; c.DBSQLitePath = "w.db" }, false},
		{"zero feed limit", func(c *Config) { c.FeedLimit = 0 }, true},
		{"zero session expiration", func(c *Config) { c.SessionExpirationHours = 0 }, true},
		{"production ok", func(c *Config) { c.Env = "production" }, false},
		{"production default secret", func(c *Config) { c.Env = "production"; c.JWTSecret = defaultJWTSecret }, true},
		{"production short secret", func(c *Config) { c.Env = "prod"; c.JWTSecret = "short" }, true},
		{"production weak db password", func(c *Config) { c.Env = "production"; c.DBPassword = "password" }, true},
		{"production ssl disabled", func(c *Config) { c.Env = "production"; c.DBSSLMode = "disable" }, true},
		{"production sqlite", func(c *Config) {
			c.Env = "production"
			c.DBDriver = DriverSQLite
			c.DBSQLitePath = "w.db"
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

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_DRIVER", "  SQLite ")
	t.Setenv("DB_SQLITE_PATH", "/tmp/warbler-test.db")
	t.Setenv("FEED_LIMIT", "25")
	t.Setenv("FEATURE_FLAGS", "self_follow=on")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, c.DBDriver)
	assert.Equal(t, "/tmp/warbler-test.db", c.DBSQLitePath)
	assert.Equal(t, 25, c.FeedLimit)
	assert.Equal(t, "self_follow=on", c.FeatureFlags)
	assert.Equal(t, "8375", c.Port)
	assert.Equal(t, "warbler_session", c.SessionCookieName)
}

func TestLoadConfig_MissingProfileFile(t *testing.T) {
	defer viper.Reset()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	t.Setenv("APP_ENV", "staging")

	_, err = LoadConfig()
	assert.Error(t, err)
}
