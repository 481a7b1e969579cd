// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package config loads thornmark's YAML configuration, with
// "${VAR:default}" substitution and environment variable overrides
// layered on top, the way the rest of its ambient stack is configured.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is thornmark's top-level configuration.
type Config struct {
	Environment string         `yaml:"environment" json:"environment"`
	Storage     StorageConfig  `yaml:"storage" json:"storage"`
	Identity    IdentityConfig `yaml:"identity" json:"identity"`
	Logging     LoggingConfig  `yaml:"logging" json:"logging"`
	Metrics     MetricsConfig  `yaml:"metrics" json:"metrics"`
}

// StorageConfig selects and configures the storage.Store backend.
type StorageConfig struct {
	Backend string `yaml:"backend" json:"backend"` // memory, bolt
	Path    string `yaml:"path" json:"path"`        // bolt db file path
}

// IdentityConfig holds identity-related settings. Only PassphraseEnv
// is read outside this package (by the CLI); the identity manager
// wraps keys with crypto.PBKDF2Iterations and does not read
// PBKDF2Iterations, Directory or ReplayWindow.
type IdentityConfig struct {
	Directory      string        `yaml:"directory" json:"directory"`
	PassphraseEnv  string        `yaml:"passphrase_env" json:"passphrase_env"`
	PBKDF2Iterations int         `yaml:"pbkdf2_iterations" json:"pbkdf2_iterations"`
	ReplayWindow   time.Duration `yaml:"replay_window" json:"replay_window"`
}

// LoggingConfig holds logging settings. The telemetry logger does not
// read it; telemetry.NewDefaultLogger takes its level from
// THORNMARK_LOG_LEVEL and always writes to stdout.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Output string `yaml:"output" json:"output"` // stdout, stderr, file path
}

// MetricsConfig controls the Prometheus metrics HTTP server.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
	Path    string `yaml:"path" json:"path"`
}

// LoadFromFile reads and parses a YAML config file, applying defaults
// to any field left unset.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// SaveToFile marshals cfg to YAML and writes it to path.
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "memory"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = ".thornmark/store.db"
	}
	if cfg.Identity.Directory == "" {
		cfg.Identity.Directory = ".thornmark/identity"
	}
	if cfg.Identity.PassphraseEnv == "" {
		cfg.Identity.PassphraseEnv = "THORNMARK_PASSPHRASE"
	}
	if cfg.Identity.PBKDF2Iterations == 0 {
		cfg.Identity.PBKDF2Iterations = 100_000
	}
	if cfg.Identity.ReplayWindow == 0 {
		cfg.Identity.ReplayWindow = 5 * time.Minute
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
