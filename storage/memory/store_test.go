// SPDX-License-Identifier: LGPL-3.0-or-later

package memory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", json.RawMessage(`{"a":1}`)))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"a":1}`, string(v))

	has, err := s.Has(ctx, "k")
	require.NoError(t, err)
	require.True(t, has)
}

func TestAppendListPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 0; i < 3; i++ {
		b, _ := json.Marshal(i)
		require.NoError(t, s.Append(ctx, "thread-1", b))
	}

	items, err := s.List(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.JSONEq(t, "0", string(items[0]))
	require.JSONEq(t, "2", string(items[2]))
}

func TestListUnknownKeyIsEmpty(t *testing.T) {
	s := New()
	items, err := s.List(context.Background(), "nope")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Set(ctx, "k", json.RawMessage(`[1]`)))

	v, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	v[0] = 'X'

	v2, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.JSONEq(t, "[1]", string(v2))
}
