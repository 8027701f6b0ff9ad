// Package config reads runtime settings from the environment, after loading
// an optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/piwi3910/metre/internal/log"
	"github.com/piwi3910/metre/internal/model"
)

type Config struct {
	DataDir string
	Storage string // model.StorageJSON or model.StorageSQLite

	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Log log.Options
}

// Load reads .env from the working directory when present, then the environment.
func Load() (Config, error) {
	return LoadFiles()
}

// LoadFiles loads the given env files (or .env when none is given) before
// reading the environment. Variables already set are never overridden.
func LoadFiles(files ...string) (Config, error) {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := Config{
		DataDir:      getEnv("METRE_DATA_DIR", defaultDataDir()),
		Storage:      strings.ToLower(getEnv("METRE_STORAGE", model.StorageJSON)),
		Addr:         getEnv("METRE_ADDR", ":8080"),
		ReadTimeout:  getEnvDuration("METRE_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvDuration("METRE_WRITE_TIMEOUT", 30*time.Second),
		Log:          log.FromEnv(),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that have a closed set of choices.
func (c Config) Validate() error {
	switch c.Storage {
	case model.StorageJSON, model.StorageSQLite:
	default:
		return fmt.Errorf("invalid METRE_STORAGE %q: want %s or %s", c.Storage, model.StorageJSON, model.StorageSQLite)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("missing required env var: METRE_DATA_DIR")
	}
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".metre")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// getEnvDuration accepts Go durations ("20s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if d, err := time.ParseDuration(value + "s"); err == nil {
		return d
	}
	return fallback
}
