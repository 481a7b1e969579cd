// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, SaveToFile(&Config{Storage: StorageConfig{Backend: "bolt"}}, path))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "bolt", cfg.Storage.Backend)
	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, 100_000, cfg.Identity.PBKDF2Iterations)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	original := &Config{
		Environment: "staging",
		Storage:     StorageConfig{Backend: "bolt", Path: "/tmp/x.db"},
	}
	require.NoError(t, SaveToFile(original, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "staging", loaded.Environment)
	require.Equal(t, "/tmp/x.db", loaded.Storage.Path)
}
