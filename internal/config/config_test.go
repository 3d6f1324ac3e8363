package config

import (
	"log/slog"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "addr", cfg.Addr, ":8080")
	testutil.AssertEqual(t, "db path", cfg.DBPath, "chronoquest.db")
	testutil.AssertEqual(t, "default secret", cfg.DefaultSecret(), true)
	testutil.AssertEqual(t, "login rate", cfg.LoginRate, 1.0)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHRONO_ADDR", "127.0.0.1:9000")
	t.Setenv("CHRONOSECRET", "s3cret")
	t.Setenv("CHRONO_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "addr", cfg.Addr, "127.0.0.1:9000")
	testutil.AssertEqual(t, "default secret", cfg.DefaultSecret(), false)

	lvl, err := cfg.SlogLevel()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "level", lvl, slog.LevelDebug)
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("CHRONO_LOGIN_RATE", "fast")

	_, err := Load()
	testutil.AssertErrorContains(t, err, "parse env:")
}

func TestValidate(t *testing.T) {
	valid := Config{
		Addr:        ":8080",
		DBPath:      "x.db",
		Secret:      "k",
		BalancePath: "b.yaml",
		LogLevel:    "info",
		LoginRate:   1,
		LoginBurst:  1,
	}

	tests := map[string]struct {
		mutate func(*Config)
		expErr string
	}{
		"valid": {
			mutate: func(*Config) {},
		},
		"empty secret": {
			mutate: func(c *Config) { c.Secret = " " },
			expErr: "CHRONOSECRET",
		},
		"bad level": {
			mutate: func(c *Config) { c.LogLevel = "loud" },
			expErr: "CHRONO_LOG_LEVEL",
		},
		"zero rate": {
			mutate: func(c *Config) { c.LoginRate = 0 },
			expErr: "CHRONO_LOGIN_RATE",
		},
		"several problems": {
			mutate: func(c *Config) {
				c.Addr = ""
				c.LoginBurst = 0
			},
			expErr: "CHRONO_LOGIN_BURST",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}
