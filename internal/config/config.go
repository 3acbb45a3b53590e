package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port                 int    `env:"PORT" envDefault:"8080"`
	DatabaseURL          string `env:"DATABASE_URL,required"`
	RedisURL             string `env:"REDIS_URL"`
	LogLevel             string `env:"LOG_LEVEL" envDefault:"info"`
	LinkingCodeTTLHours  int    `env:"LINKING_CODE_TTL_HOURS" envDefault:"24"`
	StatsIntervalMinutes int    `env:"STATS_INTERVAL_MINUTES" envDefault:"5"`
}

func (c *Config) LinkingCodeTTL() time.Duration {
	return time.Duration(c.LinkingCodeTTLHours) * time.Hour
}

func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.StatsIntervalMinutes) * time.Minute
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// EventsEnabled reports whether Redis-backed event publishing is configured.
// An empty REDIS_URL runs the server without the audit mirror and the
// notification channels; the linking workflow itself does not depend on them.
func (c *Config) EventsEnabled() bool {
	return c.RedisURL != ""
}

func Load() (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
