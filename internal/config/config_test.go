package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("LinkingCodeTTL converts hours to duration", func(t *testing.T) {
		cfg := &Config{LinkingCodeTTLHours: 24}
		assert.Equal(t, 24*time.Hour, cfg.LinkingCodeTTL())
	})

	t.Run("StatsInterval converts minutes to duration", func(t *testing.T) {
		cfg := &Config{StatsIntervalMinutes: 5}
		assert.Equal(t, 5*time.Minute, cfg.StatsInterval())
	})

	t.Run("EventsEnabled follows REDIS_URL presence", func(t *testing.T) {
		assert.False(t, (&Config{}).EventsEnabled())
		assert.True(t, (&Config{RedisURL: "redis://localhost:6379"}).EventsEnabled())
	})
}

func TestLoad(t *testing.T) {
	originalEnv := map[string]string{
		"PORT":                   os.Getenv("PORT"),
		"DATABASE_URL":           os.Getenv("DATABASE_URL"),
		"REDIS_URL":              os.Getenv("REDIS_URL"),
		"LOG_LEVEL":              os.Getenv("LOG_LEVEL"),
		"LINKING_CODE_TTL_HOURS": os.Getenv("LINKING_CODE_TTL_HOURS"),
		"STATS_INTERVAL_MINUTES": os.Getenv("STATS_INTERVAL_MINUTES"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	t.Run("loads config with defaults", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Unsetenv("PORT")
		os.Unsetenv("REDIS_URL")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("LINKING_CODE_TTL_HOURS")
		os.Unsetenv("STATS_INTERVAL_MINUTES")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
		assert.Empty(t, cfg.RedisURL)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 24, cfg.LinkingCodeTTLHours)
		assert.Equal(t, 5, cfg.StatsIntervalMinutes)
	})

	t.Run("loads custom values", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Setenv("REDIS_URL", "redis://localhost:6379")
		os.Setenv("PORT", "3000")
		os.Setenv("LINKING_CODE_TTL_HOURS", "48")
		os.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
		assert.Equal(t, 48, cfg.LinkingCodeTTLHours)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("fails without required DATABASE_URL", func(t *testing.T) {
		os.Unsetenv("DATABASE_URL")

		_, err := Load()
		assert.Error(t, err)
	})
}
