/*
Package config
File: config.go
Description:
    Process settings for the ChronoQuest server, read from CHRONO_* environment
    variables and CHRONOSECRET. Game balance lives in the universe YAML file.
*/

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pixil98/go-errors"
)

// Config holds everything the server reads at start-up.
// Game balance lives in the YAML file at BalancePath, not here.
type Config struct {
	Addr        string  `env:"CHRONO_ADDR"         envDefault:":8080"`
	DBPath      string  `env:"CHRONO_DB_PATH"      envDefault:"chronoquest.db"`
	Secret      string  `env:"CHRONOSECRET"        envDefault:"dev-secret-please-change"`
	BalancePath string  `env:"CHRONO_BALANCE_PATH" envDefault:"chronoquest.yaml"`
	StaticDir   string  `env:"CHRONO_STATIC_DIR"`
	LogLevel    string  `env:"CHRONO_LOG_LEVEL"    envDefault:"info"`
	LoginRate   float64 `env:"CHRONO_LOGIN_RATE"   envDefault:"1"`
	LoginBurst  int     `env:"CHRONO_LOGIN_BURST"  envDefault:"5"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	el := errors.NewErrorList()

	if strings.TrimSpace(c.Addr) == "" {
		el.Add(fmt.Errorf("CHRONO_ADDR must not be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		el.Add(fmt.Errorf("CHRONO_DB_PATH must not be empty"))
	}
	if strings.TrimSpace(c.Secret) == "" {
		el.Add(fmt.Errorf("CHRONOSECRET must not be empty"))
	}
	if strings.TrimSpace(c.BalancePath) == "" {
		el.Add(fmt.Errorf("CHRONO_BALANCE_PATH must not be empty"))
	}
	if c.LoginRate <= 0 {
		el.Add(fmt.Errorf("CHRONO_LOGIN_RATE must be positive, got %v", c.LoginRate))
	}
	if c.LoginBurst < 1 {
		el.Add(fmt.Errorf("CHRONO_LOGIN_BURST must be at least 1, got %d", c.LoginBurst))
	}
	if _, err := c.SlogLevel(); err != nil {
		el.Add(err)
	}

	return el.Err()
}

// SlogLevel maps LogLevel onto a slog.Level.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("CHRONO_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// DefaultSecret reports whether the signing secret is the development fallback.
func (c Config) DefaultSecret() bool {
	return c.Secret == "dev-secret-please-change"
}
