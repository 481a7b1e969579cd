// SPDX-License-Identifier: LGPL-3.0-or-later

package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"thornmark/storage/memory"
	"thornmark/thread"
)

func TestClientInvitationRoundTrip(t *testing.T) {
	ctx := context.Background()

	alice, err := Generate(ctx, memory.New(), "alice-pw")
	require.NoError(t, err)
	defer alice.Close()

	bob, err := Generate(ctx, memory.New(), "bob-pw")
	require.NoError(t, err)
	defer bob.Close()

	invite, err := alice.CreateInvitation(ctx, thread.InvitationOptions{Nickname: "alice"})
	require.NoError(t, err)

	reply, err := bob.ReplyToInvitation(ctx, invite, []byte("hi"))
	require.NoError(t, err)

	result, err := alice.AppendThread(ctx, reply, nil)
	require.NoError(t, err)
	require.Equal(t, "hi", result.Message)

	threads, err := alice.Threads(ctx)
	require.NoError(t, err)
	require.Contains(t, threads, result.ThreadThumbprint)
}

func TestClientLoadWrongPassword(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	c, err := Generate(ctx, store, "right-password")
	require.NoError(t, err)
	thumbprint := c.Thumbprint()
	c.Close()

	_, err = Load(ctx, store, thumbprint, "wrong-password")
	require.Error(t, err)
}

func TestClientMakeBackup(t *testing.T) {
	ctx := context.Background()
	c, err := Generate(ctx, memory.New(), "pw")
	require.NoError(t, err)
	defer c.Close()

	backup, err := c.MakeBackup("backup-pw")
	require.NoError(t, err)
	require.NotEmpty(t, backup)
}
