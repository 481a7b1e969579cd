// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubstituteEnvVarsUsesDefault(t *testing.T) {
	t.Setenv("THORNMARK_TEST_UNSET_VAR", "")
	require.Equal(t, "fallback", SubstituteEnvVars("${THORNMARK_TEST_UNSET_VAR:fallback}"))
}

func TestSubstituteEnvVarsUsesValue(t *testing.T) {
	t.Setenv("THORNMARK_TEST_VAR", "actual")
	require.Equal(t, "actual", SubstituteEnvVars("${THORNMARK_TEST_VAR:fallback}"))
}

func TestApplyEnvironmentOverrides(t *testing.T) {
	t.Setenv("THORNMARK_STORAGE_BACKEND", "bolt")
	t.Setenv("THORNMARK_METRICS_ENABLED", "true")

	cfg := &Config{}
	setDefaults(cfg)
	applyEnvironmentOverrides(cfg)

	require.Equal(t, "bolt", cfg.Storage.Backend)
	require.True(t, cfg.Metrics.Enabled)
}

func TestGetEnvironmentDefault(t *testing.T) {
	t.Setenv("THORNMARK_ENV", "")
	require.Equal(t, "development", GetEnvironment())
}
