// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings, populated from environment variables.
type Config struct {
	// Seed for the run's random source. Zero means seed from the clock.
	Seed int64 `env:"ECHOCRAWL_SEED" envDefault:"0"`

	// StorageBackend selects the persistence layer: "json" or "sqlite".
	StorageBackend string `env:"ECHOCRAWL_STORAGE" envDefault:"json"`

	// StoragePath is the backing file for whichever backend is selected.
	StoragePath string `env:"ECHOCRAWL_STORAGE_PATH" envDefault:"echocrawl.json"`

	// TelemetryEnabled turns on OTLP trace export. The exporter itself is
	// configured through the standard OTEL_* variables.
	TelemetryEnabled bool `env:"ECHOCRAWL_TELEMETRY" envDefault:"false"`

	// ClassID and FactionID pick the character for a new run.
	ClassID   string `env:"ECHOCRAWL_CLASS" envDefault:"warrior"`
	FactionID string `env:"ECHOCRAWL_FACTION" envDefault:"ironveil"`

	// ResumeRunID resumes a saved run instead of starting a new one.
	ResumeRunID string `env:"ECHOCRAWL_RESUME" envDefault:""`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.StorageBackend != "json" && cfg.StorageBackend != "sqlite" {
		return nil, fmt.Errorf("unknown storage backend %q (want json or sqlite)", cfg.StorageBackend)
	}
	return cfg, nil
}
