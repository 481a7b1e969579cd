// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoaderOptions configures Load.
type LoaderOptions struct {
	// ConfigDir is the directory containing config files (default "config").
	ConfigDir string
	// Environment overrides automatic environment detection.
	Environment string
	// SkipEnvSubstitution disables "${VAR}" interpolation.
	SkipEnvSubstitution bool
}

// DefaultLoaderOptions returns Load's defaults.
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{ConfigDir: "config"}
}

// Load loads a .env file (if present), then the environment-specific
// config file, applying defaults, "${VAR}" substitution and
// THORNMARK_* environment overrides in that order.
func Load(opts ...LoaderOptions) (*Config, error) {
	options := DefaultLoaderOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	// A missing .env is not an error; it's how production deployments
	// that set real environment variables are expected to run.
	_ = godotenv.Load()

	env := options.Environment
	if env == "" {
		env = GetEnvironment()
	}

	cfg, err := loadFirstAvailable(options.ConfigDir, env)
	if err != nil {
		cfg = &Config{}
	}

	if cfg.Environment == "" {
		cfg.Environment = env
	}
	setDefaults(cfg)

	if !options.SkipEnvSubstitution {
		SubstituteEnvVarsInConfig(cfg)
	}
	applyEnvironmentOverrides(cfg)

	return cfg, nil
}

func loadFirstAvailable(dir, env string) (*Config, error) {
	candidates := []string{
		filepath.Join(dir, env+".yaml"),
		filepath.Join(dir, "default.yaml"),
		filepath.Join(dir, "config.yaml"),
	}
	var lastErr error
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			lastErr = err
			continue
		}
		return LoadFromFile(path)
	}
	return nil, fmt.Errorf("config: no config file found in %s: %w", dir, lastErr)
}

// MustLoad loads configuration or panics.
func MustLoad(opts ...LoaderOptions) *Config {
	cfg, err := Load(opts...)
	if err != nil {
		panic(fmt.Sprintf("config: load: %v", err))
	}
	return cfg
}
