package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP listen address, e.g. ":8080"
	Address string `env:"ADDRESS" envDefault:":8080"`

	// Per-image download timeout.
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`

	// How often the reclamation sweep runs.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"60s"`

	// Age past which a registered resource becomes reclaimable.
	StalenessThreshold time.Duration `env:"STALENESS_THRESHOLD" envDefault:"300s"`

	// Directory for staged temp images; empty means the OS default.
	TempDir string `env:"TEMP_DIR"`
}

// Load reads .env (if present) and parses environment variables into Config.
func Load() (Config, error) {
	// Ignore error if the file does not exist
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return cfg, nil
}
