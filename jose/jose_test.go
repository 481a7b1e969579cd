// SPDX-License-Identifier: LGPL-3.0-or-later

package jose

import (
	"testing"

	"github.com/stretchr/testify/require"

	sagecrypto "thornmark/crypto"
)

type examplePayload struct {
	Message string `json:"message"`
}

func TestSignParseDetached(t *testing.T) {
	kp, err := sagecrypto.GenerateSigningKeyPair()
	require.NoError(t, err)

	compact, err := Sign(Header{}, examplePayload{Message: "hi"}, kp)
	require.NoError(t, err)

	header, payload, err := Parse[examplePayload](compact, &kp.Private.PublicKey)
	require.NoError(t, err)
	require.Equal(t, AlgES384, header.Alg)
	require.Equal(t, "hi", payload.Message)
}

func TestSignParseEmbedded(t *testing.T) {
	kp, err := sagecrypto.GenerateSigningKeyPair()
	require.NoError(t, err)
	pubJWK := kp.PublicJWK()

	compact, err := Sign(Header{JWK: &pubJWK}, examplePayload{Message: "hi"}, kp)
	require.NoError(t, err)

	_, payload, err := Parse[examplePayload](compact, nil)
	require.NoError(t, err)
	require.Equal(t, "hi", payload.Message)
}

func TestParseUnverifiedWithoutKey(t *testing.T) {
	kp, err := sagecrypto.GenerateSigningKeyPair()
	require.NoError(t, err)

	compact, err := Sign(Header{}, examplePayload{Message: "hi"}, kp)
	require.NoError(t, err)

	// No pub, no embedded jwk: parse succeeds but is unverified.
	_, payload, err := Parse[examplePayload](compact, nil)
	require.NoError(t, err)
	require.Equal(t, "hi", payload.Message)
}

func TestVerifyTamperedSignatureFails(t *testing.T) {
	kp, err := sagecrypto.GenerateSigningKeyPair()
	require.NoError(t, err)

	compact, err := Sign(Header{}, examplePayload{Message: "hi"}, kp)
	require.NoError(t, err)

	replacement := "A"
	if compact[len(compact)-1] == 'A' {
		replacement = "B"
	}
	tampered := compact[:len(compact)-1] + replacement
	ok, err := Verify(tampered, &kp.Private.PublicKey)
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = Parse[examplePayload](tampered, &kp.Private.PublicKey)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyWrongKeyFails(t *testing.T) {
	kp, err := sagecrypto.GenerateSigningKeyPair()
	require.NoError(t, err)
	other, err := sagecrypto.GenerateSigningKeyPair()
	require.NoError(t, err)

	compact, err := Sign(Header{}, examplePayload{Message: "hi"}, kp)
	require.NoError(t, err)

	ok, err := Verify(compact, &other.Private.PublicKey)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestParseMalformed(t *testing.T) {
	_, _, err := Parse[examplePayload]("not-a-jws", nil)
	require.ErrorIs(t, err, ErrMalformedEnvelope)
}
