// Package config loads runtime configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Backend selects the persistence strategy.
type Backend string

const (
	BackendRemote   Backend = "remote"
	BackendLocal    Backend = "local"
	BackendFallback Backend = "fallback"
)

// Config is the full application configuration.
type Config struct {
	SupabaseURL     string `env:"SUPABASE_URL"`
	SupabaseAnonKey string `env:"SUPABASE_ANON_KEY"`

	// Backend picks where project records live. The fallback strategy
	// writes remotely and stashes locally when the remote is unreachable.
	Backend Backend `env:"FIREDEAL_BACKEND, default=fallback"`

	// DataDir holds the local stash and the persisted session.
	DataDir string `env:"FIREDEAL_DATA_DIR"`

	// LogFile receives structured logs. The terminal belongs to the UI,
	// so logs never go to stderr while the program runs.
	LogFile string `env:"FIREDEAL_LOG_FILE"`
}

// Load reads .env (if present) and the process environment, then fills
// in defaults for paths that were left unset.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if cfg.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolving data dir: %w", err)
		}
		cfg.DataDir = filepath.Join(base, "firedeal")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "firedeal.log")
	}

	return &cfg, nil
}

// Validate checks the backend choice and the Supabase credentials.
// Identity always comes from Supabase; the backend only decides where
// project records live.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendRemote, BackendLocal, BackendFallback:
	default:
		return fmt.Errorf("unknown backend %q (want remote, local, or fallback)", c.Backend)
	}
	if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY are required")
	}
	return nil
}
