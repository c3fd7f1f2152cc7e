package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the daemon configuration, read from the environment.
type Config struct {
	Addr     string `env:"MEMBERSHIP_ADDR"      envDefault:":8080"`
	BasePath string `env:"MEMBERSHIP_BASE_PATH" envDefault:"/v1/membership"`
	LogLevel string `env:"MEMBERSHIP_LOG_LEVEL" envDefault:"info"`

	// Store selects the backend: "memory", "redis", "sqlite", "postgres"
	// or "mongo".
	Store     string `env:"MEMBERSHIP_STORE"      envDefault:"memory"`
	RedisURL  string `env:"MEMBERSHIP_REDIS_URL"  envDefault:"redis://localhost:6379/0"`
	KeyPrefix string `env:"MEMBERSHIP_KEY_PREFIX" envDefault:"membership:record:"`

	// DSN is the connection string for the sqlite, postgres and mongo stores.
	DSN string `env:"MEMBERSHIP_DSN"`

	ServiceIdentity string        `env:"MEMBERSHIP_SERVICE_IDENTITY,required,notEmpty"`
	Fee             uint64        `env:"MEMBERSHIP_FEE"          envDefault:"1000000"`
	Duration        uint64        `env:"MEMBERSHIP_DURATION"     envDefault:"1000"`
	TickPeriod      time.Duration `env:"MEMBERSHIP_TICK_PERIOD"  envDefault:"4s"`
	Genesis         time.Time     `env:"MEMBERSHIP_GENESIS"`
	GenesisTick     uint64        `env:"MEMBERSHIP_GENESIS_TICK" envDefault:"0"`

	ShutdownTimeout time.Duration `env:"MEMBERSHIP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// LoadConfig parses the environment into a Config.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.Store {
	case "memory", "redis":
	case "sqlite", "postgres", "mongo":
		if cfg.DSN == "" {
			return Config{}, fmt.Errorf("MEMBERSHIP_DSN is required for the %s store", cfg.Store)
		}
	default:
		return Config{}, fmt.Errorf("unknown store %q", cfg.Store)
	}
	if cfg.TickPeriod <= 0 {
		return Config{}, fmt.Errorf("tick period must be positive, got %s", cfg.TickPeriod)
	}
	// Stored expirations outlive the process. A genesis taken from the start
	// time would restart the tick count and revive expired members.
	if cfg.Durable() && cfg.Genesis.IsZero() {
		return Config{}, fmt.Errorf("MEMBERSHIP_GENESIS is required with the %s store", cfg.Store)
	}
	return cfg, nil
}

// Durable reports whether records survive a restart.
func (c Config) Durable() bool { return c.Store != "memory" }

// Level maps LogLevel to a slog level, defaulting to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
