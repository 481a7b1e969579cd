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
	"os"
	"regexp"
	"strconv"
	"strings"
)

// envVarPattern matches ${VAR} or ${VAR:default}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// SubstituteEnvVars replaces ${VAR} or ${VAR:default} with the named
// environment variable's value, falling back to default when unset.
func SubstituteEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) > 2 {
			return parts[2]
		}
		return ""
	})
}

// SubstituteEnvVarsInConfig rewrites every string field in cfg that
// supports ${VAR} interpolation.
func SubstituteEnvVarsInConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Storage.Path = SubstituteEnvVars(cfg.Storage.Path)
	cfg.Identity.Directory = SubstituteEnvVars(cfg.Identity.Directory)
	cfg.Identity.PassphraseEnv = SubstituteEnvVars(cfg.Identity.PassphraseEnv)
	cfg.Logging.Level = SubstituteEnvVars(cfg.Logging.Level)
	cfg.Logging.Output = SubstituteEnvVars(cfg.Logging.Output)
	cfg.Metrics.Addr = SubstituteEnvVars(cfg.Metrics.Addr)
	cfg.Metrics.Path = SubstituteEnvVars(cfg.Metrics.Path)
}

// applyEnvironmentOverrides lets THORNMARK_* environment variables
// take priority over whatever the config file said, highest priority
// in the load order.
func applyEnvironmentOverrides(cfg *Config) {
	if backend := os.Getenv("THORNMARK_STORAGE_BACKEND"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if path := os.Getenv("THORNMARK_STORAGE_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if dir := os.Getenv("THORNMARK_IDENTITY_DIR"); dir != "" {
		cfg.Identity.Directory = dir
	}
	if level := os.Getenv("THORNMARK_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if enabled := os.Getenv("THORNMARK_METRICS_ENABLED"); enabled != "" {
		if v, err := strconv.ParseBool(enabled); err == nil {
			cfg.Metrics.Enabled = v
		}
	}
	if addr := os.Getenv("THORNMARK_METRICS_ADDR"); addr != "" {
		cfg.Metrics.Addr = addr
	}
}

// GetEnvironment returns the current environment from THORNMARK_ENV,
// defaulting to "development".
func GetEnvironment() string {
	env := os.Getenv("THORNMARK_ENV")
	if env == "" {
		env = "development"
	}
	return strings.ToLower(env)
}

// IsProduction reports whether GetEnvironment is "production".
func IsProduction() bool {
	return GetEnvironment() == "production"
}
