// SPDX-License-Identifier: LGPL-3.0-or-later

package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"thornmark/storage/memory"
)

func TestGenerateThenLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	mgr, err := Generate(ctx, store, "correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, mgr.Thumbprint)

	loaded, err := Load(ctx, store, mgr.Thumbprint, "correct horse battery staple")
	require.NoError(t, err)
	require.Equal(t, mgr.Thumbprint, loaded.Thumbprint)
	require.Equal(t, mgr.Signing.Private.D, loaded.Signing.Private.D)
}

func TestLoadWrongPasswordFails(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	mgr, err := Generate(ctx, store, "correct password")
	require.NoError(t, err)

	_, err = Load(ctx, store, mgr.Thumbprint, "wrong password")
	require.ErrorIs(t, err, ErrBadPassword)
}

func TestLoadUnknownThumbprintFails(t *testing.T) {
	_, err := Load(context.Background(), memory.New(), "not-a-real-thumbprint", "pw")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMakeBackupAndRestore(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	mgr, err := Generate(ctx, store, "original password")
	require.NoError(t, err)

	backup, err := mgr.MakeBackup("backup password")
	require.NoError(t, err)

	restored, err := RestoreBackup(backup, "backup password")
	require.NoError(t, err)
	require.Equal(t, mgr.Thumbprint, restored.Thumbprint)
	require.Equal(t, mgr.Signing.Private.D, restored.Signing.Private.D)
}

func TestRestoreBackupWrongPasswordFails(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	mgr, err := Generate(ctx, store, "original password")
	require.NoError(t, err)

	backup, err := mgr.MakeBackup("backup password")
	require.NoError(t, err)

	_, err = RestoreBackup(backup, "wrong password")
	require.ErrorIs(t, err, ErrBadPassword)
}

func TestCloseZeroizesKeys(t *testing.T) {
	ctx := context.Background()
	mgr, err := Generate(ctx, memory.New(), "pw")
	require.NoError(t, err)

	mgr.Close()
	require.Equal(t, int64(0), mgr.Signing.Private.D.Int64())
}
