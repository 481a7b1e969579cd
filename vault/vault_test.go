// SPDX-License-Identifier: LGPL-3.0-or-later

package vault

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"thornmark/identity"
	"thornmark/jose"
	"thornmark/storage/memory"
)

func testIdentity(t *testing.T) *identity.Manager {
	t.Helper()
	mgr, err := identity.Generate(context.Background(), memory.New(), "pw")
	require.NoError(t, err)
	return mgr
}

func TestRoundTripSelfEncryption(t *testing.T) {
	mgr := testIdentity(t)

	compact, err := EncryptToSelf(mgr, []byte("hello vault"))
	require.NoError(t, err)

	plaintext, err := DecryptFromSelf(mgr, compact)
	require.NoError(t, err)
	require.Equal(t, "hello vault", plaintext)
}

func TestEncryptToSelfIsNonDeterministic(t *testing.T) {
	mgr := testIdentity(t)

	a, err := EncryptToSelf(mgr, []byte("x"))
	require.NoError(t, err)
	b, err := EncryptToSelf(mgr, []byte("x"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	pa, err := DecryptFromSelf(mgr, a)
	require.NoError(t, err)
	pb, err := DecryptFromSelf(mgr, b)
	require.NoError(t, err)
	require.Equal(t, "x", pa)
	require.Equal(t, "x", pb)
}

func TestDecryptFromSelfTamperedFails(t *testing.T) {
	mgr := testIdentity(t)

	compact, err := EncryptToSelf(mgr, []byte("hello"))
	require.NoError(t, err)

	replacement := "A"
	if compact[len(compact)-1] == 'A' {
		replacement = "B"
	}
	tampered := compact[:len(compact)-1] + replacement
	_, err = DecryptFromSelf(mgr, tampered)
	require.ErrorIs(t, err, jose.ErrBadSignature)
}

func TestDecryptFromSelfWrongIdentityFails(t *testing.T) {
	mgr := testIdentity(t)
	other := testIdentity(t)

	compact, err := EncryptToSelf(mgr, []byte("hello"))
	require.NoError(t, err)

	_, err = DecryptFromSelf(other, compact)
	require.Error(t, err)
}
