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

package main

import (
	"fmt"
	"os"

	"thornmark/config"
)

// loadConfig reads the config file at configPath directly when given,
// otherwise defers to config.Load's directory-based discovery and
// THORNMARK_* environment overrides.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// passphrase resolves the identity passphrase from an explicit
// --password flag value when set, falling back to the environment
// variable cfg.Identity.PassphraseEnv names.
func passphrase(cfg *config.Config, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if v := os.Getenv(cfg.Identity.PassphraseEnv); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("no passphrase: set --password or %s", cfg.Identity.PassphraseEnv)
}
