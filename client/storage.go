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

package client

import (
	"encoding/json"
	"fmt"

	"thornmark/config"
	"thornmark/storage"
	"thornmark/storage/boltstore"
	"thornmark/storage/memory"
)

// storeFromConfig builds the storage.Store backend cfg.Storage selects.
func storeFromConfig(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "", "memory":
		return memory.New(), nil
	case "bolt":
		store, err := boltstore.Open(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("client: open bolt store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("client: unsupported storage backend %q", cfg.Storage.Backend)
	}
}

func jsonUnmarshalString(raw json.RawMessage, out *string) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: unmarshal string: %w", err)
	}
	return nil
}
