// SPDX-License-Identifier: LGPL-3.0-or-later

package thread

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"thornmark/identity"
	"thornmark/jose"
	"thornmark/storage/memory"
)

func newParty(t *testing.T, password string) (*identity.Manager, *memory.Store, *Engine) {
	t.Helper()
	store := memory.New()
	mgr, err := identity.Generate(context.Background(), store, password)
	require.NoError(t, err)
	return mgr, store, New(mgr, store, nil)
}

// newEngine is newParty for tests that only need the engine.
func newEngine(t *testing.T, password string) *Engine {
	t.Helper()
	_, _, engine := newParty(t, password)
	return engine
}

func TestAliceInvitesBobRepliesAliceIngests(t *testing.T) {
	ctx := context.Background()
	aliceEngine := newEngine(t, "alice-pw")
	bobEngine := newEngine(t, "bob-pw")

	invite, err := aliceEngine.CreateInvitation(ctx, InvitationOptions{Nickname: "alice"})
	require.NoError(t, err)

	reply, err := bobEngine.ReplyToInvitation(ctx, invite, []byte("hi"))
	require.NoError(t, err)

	header, payload, err := jose.Parse[ReplyPayload](reply, nil)
	require.NoError(t, err)
	require.NotNil(t, header.JWK, "first reply must self-sign")
	require.NotNil(t, payload.EPK, "first reply must carry epk")

	result, err := aliceEngine.AppendThread(ctx, reply, nil)
	require.NoError(t, err)
	require.Equal(t, "hi", result.Message)

	_, invPayload, err := jose.Parse[InvitationPayload](invite, nil)
	require.NoError(t, err)
	wantThumbprint, err := invPayload.EPK.Thumbprint()
	require.NoError(t, err)
	require.Equal(t, wantThumbprint, result.ThreadThumbprint)
}

func TestSecondMessageHasNoEmbeddedKeyAndAdvancesMessageID(t *testing.T) {
	ctx := context.Background()
	aliceEngine := newEngine(t, "alice-pw")
	bobEngine := newEngine(t, "bob-pw")

	invite, err := aliceEngine.CreateInvitation(ctx, InvitationOptions{})
	require.NoError(t, err)
	_, invPayload, err := jose.Parse[InvitationPayload](invite, nil)
	require.NoError(t, err)

	reply, err := bobEngine.ReplyToInvitation(ctx, invite, []byte("hi"))
	require.NoError(t, err)

	result, err := aliceEngine.AppendThread(ctx, reply, nil)
	require.NoError(t, err)

	second, err := aliceEngine.ReplyToThread(ctx, result.ThreadThumbprint, []byte("hello bob"), false)
	require.NoError(t, err)

	header, payload, err := jose.Parse[ReplyPayload](second, nil)
	require.NoError(t, err)
	require.Nil(t, header.JWK)
	require.Nil(t, payload.EPK)

	expected, err := nextMessageID(invPayload.MessageID)
	require.NoError(t, err)
	expected, err = nextMessageID(expected)
	require.NoError(t, err)
	require.True(t, messageIDEquals(expected, payload.MessageID))
}

func TestBobIngestsAlicesSecondMessage(t *testing.T) {
	ctx := context.Background()
	aliceEngine := newEngine(t, "alice-pw")
	bobEngine := newEngine(t, "bob-pw")

	invite, err := aliceEngine.CreateInvitation(ctx, InvitationOptions{})
	require.NoError(t, err)
	reply, err := bobEngine.ReplyToInvitation(ctx, invite, []byte("hi"))
	require.NoError(t, err)
	aliceResult, err := aliceEngine.AppendThread(ctx, reply, nil)
	require.NoError(t, err)

	second, err := aliceEngine.ReplyToThread(ctx, aliceResult.ThreadThumbprint, []byte("hello bob"), false)
	require.NoError(t, err)

	// Bob's local thread id is the thumbprint of his own ephemeral key,
	// which he embedded in his self-signed first reply's payload.epk.
	_, firstPayload, err := jose.Parse[ReplyPayload](reply, nil)
	require.NoError(t, err)
	myThumbprint, err := firstPayload.EPK.Thumbprint()
	require.NoError(t, err)

	bobResult, err := bobEngine.AppendThread(ctx, second, &myThumbprint)
	require.NoError(t, err)
	require.Equal(t, "hello bob", bobResult.Message)
}

func TestOutOfOrderRejected(t *testing.T) {
	ctx := context.Background()
	aliceEngine := newEngine(t, "alice-pw")
	bobEngine := newEngine(t, "bob-pw")

	invite, err := aliceEngine.CreateInvitation(ctx, InvitationOptions{})
	require.NoError(t, err)
	reply, err := bobEngine.ReplyToInvitation(ctx, invite, []byte("hi"))
	require.NoError(t, err)

	header, payload, err := jose.Parse[ReplyPayload](reply, nil)
	require.NoError(t, err)

	// Bump messageId past the expected predecessor+1 and re-sign with
	// Bob's identity key, preserving the self-signed shape.
	bobMgr := bobEngine.id
	tampered, err := nextMessageID(payload.MessageID)
	require.NoError(t, err)
	payload.MessageID = tampered
	resigned, err := jose.Sign(header, payload, bobMgr.Signing)
	require.NoError(t, err)

	_, err = aliceEngine.AppendThread(ctx, resigned, nil)
	require.ErrorIs(t, err, ErrOutOfOrder)
}

func TestWrongPasswordFailsWithoutMutatingState(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	mgr, err := identity.Generate(ctx, store, "correct-horse")
	require.NoError(t, err)

	_, err = identity.Load(ctx, store, mgr.Thumbprint, "wrong-password")
	require.ErrorIs(t, err, identity.ErrBadPassword)

	reloaded, err := identity.Load(ctx, store, mgr.Thumbprint, "correct-horse")
	require.NoError(t, err)
	require.Equal(t, mgr.Thumbprint, reloaded.Thumbprint)
}

func TestTamperedCiphertextFailsSignatureCheck(t *testing.T) {
	ctx := context.Background()
	aliceEngine := newEngine(t, "alice-pw")
	bobEngine := newEngine(t, "bob-pw")

	invite, err := aliceEngine.CreateInvitation(ctx, InvitationOptions{})
	require.NoError(t, err)
	reply, err := bobEngine.ReplyToInvitation(ctx, invite, []byte("hi"))
	require.NoError(t, err)

	header, payload, err := jose.Parse[ReplyPayload](reply, nil)
	require.NoError(t, err)
	payload.Message = payload.Message[:len(payload.Message)-1] + "_"

	// Re-sign the altered payload with Bob's key; the signature check
	// only fails once the signature segment is corrupted below.
	tampered, err := jose.Sign(header, payload, bobEngine.id.Signing)
	require.NoError(t, err)
	// Corrupt the signature segment itself, not just the payload, so
	// the failure is unambiguously a signature mismatch.
	tampered = tampered[:len(tampered)-1] + "_"

	_, err = aliceEngine.AppendThread(ctx, tampered, nil)
	require.Error(t, err)
}

func TestCreateInvitationTwiceYieldsDistinctInvitations(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, "pw")

	invite1, err := engine.CreateInvitation(ctx, InvitationOptions{})
	require.NoError(t, err)
	invite2, err := engine.CreateInvitation(ctx, InvitationOptions{})
	require.NoError(t, err)
	require.NotEqual(t, invite1, invite2)
}

func TestNoCrossThreadLeakage(t *testing.T) {
	ctx := context.Background()
	aliceEngine := newEngine(t, "alice-pw")
	bobEngine := newEngine(t, "bob-pw")
	carolEngine := newEngine(t, "carol-pw")

	inviteBob, err := aliceEngine.CreateInvitation(ctx, InvitationOptions{})
	require.NoError(t, err)
	replyBob, err := bobEngine.ReplyToInvitation(ctx, inviteBob, []byte("from bob"))
	require.NoError(t, err)
	resultBob, err := aliceEngine.AppendThread(ctx, replyBob, nil)
	require.NoError(t, err)

	inviteCarol, err := aliceEngine.CreateInvitation(ctx, InvitationOptions{})
	require.NoError(t, err)
	replyCarol, err := carolEngine.ReplyToInvitation(ctx, inviteCarol, []byte("from carol"))
	require.NoError(t, err)
	resultCarol, err := aliceEngine.AppendThread(ctx, replyCarol, nil)
	require.NoError(t, err)

	require.NotEqual(t, resultBob.ThreadThumbprint, resultCarol.ThreadThumbprint)

	secretBob, _, err := aliceEngine.ReadThreadSecret(ctx, resultBob.ThreadThumbprint)
	require.NoError(t, err)
	secretCarol, _, err := aliceEngine.ReadThreadSecret(ctx, resultCarol.ThreadThumbprint)
	require.NoError(t, err)
	require.NotEqual(t, secretBob, secretCarol)
}

func TestReplayGuardDeduplicatesAppend(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	aliceMgr, err := identity.Generate(ctx, store, "alice-pw")
	require.NoError(t, err)
	guard := NewReplayGuard()
	aliceEngine := New(aliceMgr, store, guard)

	bobStore := memory.New()
	bobMgr, err := identity.Generate(ctx, bobStore, "bob-pw")
	require.NoError(t, err)
	bobEngine := New(bobMgr, bobStore, nil)

	invite, err := aliceEngine.CreateInvitation(ctx, InvitationOptions{})
	require.NoError(t, err)
	reply, err := bobEngine.ReplyToInvitation(ctx, invite, []byte("hi"))
	require.NoError(t, err)

	result1, err := aliceEngine.AppendThread(ctx, reply, nil)
	require.NoError(t, err)
	thumbprint := result1.ThreadThumbprint

	result2, err := aliceEngine.AppendThread(ctx, reply, &thumbprint)
	require.NoError(t, err)
	require.Equal(t, result1.Message, result2.Message)

	// The log holds the invitation (appended by startThread) and the
	// reply once; the replayed reply adds nothing.
	log, err := store.List(ctx, messagesKey(thumbprint))
	require.NoError(t, err)
	require.Len(t, log, 2, "replay guard must not double-log the same message id")
}

func TestAppendUnknownThreadFails(t *testing.T) {
	ctx := context.Background()
	aliceEngine := newEngine(t, "alice-pw")
	bobEngine := newEngine(t, "bob-pw")

	invite, err := aliceEngine.CreateInvitation(ctx, InvitationOptions{})
	require.NoError(t, err)
	reply, err := bobEngine.ReplyToInvitation(ctx, invite, []byte("hi"))
	require.NoError(t, err)
	result, err := aliceEngine.AppendThread(ctx, reply, nil)
	require.NoError(t, err)

	second, err := aliceEngine.ReplyToThread(ctx, result.ThreadThumbprint, []byte("hello"), false)
	require.NoError(t, err)

	bogus := "not-a-real-thumbprint"
	_, err = bobEngine.AppendThread(ctx, second, &bogus)
	require.Error(t, err)
}
