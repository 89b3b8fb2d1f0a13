// Package config handles loading and parsing application configuration.
// It supports two sources (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// The parsed values are returned as a *Config pointer so the struct is
// shared by reference rather than copied everywhere.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Backend names accepted in storage.backend.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	// Latency is the simulated round-trip delay applied to every store
	// operation. Zero disables it.
	Latency time.Duration `yaml:"latency" env:"LATENCY" env-default:"150ms"`

	Storage `yaml:"storage"`
}

// Storage selects and configures the persistent key-value slot.
// Nested under storage: in the YAML file.
type Storage struct {
	// Backend is one of sqlite, bolt, memory or none.
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"sqlite"`

	// Path is the database file for the sqlite and bolt backends.
	Path string `yaml:"path" env:"STORAGE_PATH"`

	// Key is the slot the serialized collection is stored under.
	Key string `yaml:"key" env:"STORAGE_KEY" env-default:"sms.students.v1"`

	// Bucket is the bbolt bucket name; ignored by other backends.
	Bucket string `yaml:"bucket" env:"STORAGE_BUCKET" env-default:"students"`
}

// Load reads the YAML file at path, applies env overrides and checks
// that the storage section is usable.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
	}

	switch cfg.Storage.Backend {
	case BackendSQLite, BackendBolt:
		if cfg.Storage.Path == "" {
			return nil, fmt.Errorf("config.Load: storage.path is required for the %s backend", cfg.Storage.Backend)
		}
	case BackendMemory, BackendNone:
	default:
		return nil, fmt.Errorf("config.Load: unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Latency < 0 {
		return nil, fmt.Errorf("config.Load: latency must not be negative, got %s", cfg.Latency)
	}

	return &cfg, nil
}

// MustLoad reads, validates, and returns the application config.
// Functions prefixed with "Must" are allowed to fatal on failure, so if
// this returns, the config is valid.
func MustLoad() *Config {
	// ── Source 1: environment variable ───────────────────────────────
	configPath := os.Getenv("CONFIG_PATH")

	// ── Source 2: command-line flag ───────────────────────────────────
	//   go run ./cmd/students-api --config=config/local.yaml
	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}

	return cfg
}
