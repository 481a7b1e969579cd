// SPDX-License-Identifier: LGPL-3.0-or-later

package boltstore

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thornmark.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetSetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", json.RawMessage(`{"a":1}`)))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"a":1}`, string(v))
}

func TestAppendListPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		b, _ := json.Marshal(i)
		require.NoError(t, s.Append(ctx, "thread-1", b))
	}

	items, err := s.List(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, items, 5)
	require.JSONEq(t, "0", string(items[0]))
	require.JSONEq(t, "4", string(items[4]))
}

func TestListUnknownKeyIsEmpty(t *testing.T) {
	s := openTestStore(t)
	items, err := s.List(context.Background(), "nope")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "thornmark.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, "k", json.RawMessage(`"v"`)))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	v, ok, err := s2.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `"v"`, string(v))
}
