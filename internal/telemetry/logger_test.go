// SPDX-License-Identifier: LGPL-3.0-or-later

package telemetry

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, WarnLevel)

	l.Info("should not appear")
	require.Empty(t, buf.String())

	l.Warn("should appear", String("key", "value"))
	require.Contains(t, buf.String(), "should appear")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "WARN", entry["level"])
	require.Equal(t, "value", entry["key"])
}

func TestWithFieldsMerges(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&buf, DebugLevel).WithFields(String("component", "thread"))
	base.Info("hi")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "thread", entry["component"])
}
