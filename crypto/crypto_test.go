// SPDX-License-Identifier: LGPL-3.0-or-later

package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	kp, err := GenerateSigningKeyPair()
	require.NoError(t, err)

	msg := []byte("hello thread")
	sig, err := kp.Sign(msg)
	require.NoError(t, err)
	require.True(t, Verify(&kp.Private.PublicKey, msg, sig))

	tampered := append([]byte{}, msg...)
	tampered[0] ^= 0xFF
	require.False(t, Verify(&kp.Private.PublicKey, tampered, sig))
}

func TestDeriveSharedSymmetry(t *testing.T) {
	a, err := GenerateAgreementKeyPair()
	require.NoError(t, err)
	b, err := GenerateAgreementKeyPair()
	require.NoError(t, err)

	secretA, err := DeriveShared(a.Private, b.Private.PublicKey())
	require.NoError(t, err)
	secretB, err := DeriveShared(b.Private, a.Private.PublicKey())
	require.NoError(t, err)
	require.Equal(t, secretA, secretB)
}

func TestAESGCMRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	iv, err := NewIV()
	require.NoError(t, err)

	ct, err := AESGCMEncrypt(key, iv, []byte("payload"))
	require.NoError(t, err)
	pt, err := AESGCMDecrypt(key, iv, ct)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), pt)

	ct[0] ^= 0xFF
	_, err = AESGCMDecrypt(key, iv, ct)
	require.ErrorIs(t, err, ErrBadCiphertext)
}

func TestThumbprintStable(t *testing.T) {
	kp, err := GenerateAgreementKeyPair()
	require.NoError(t, err)
	jwk, err := kp.PublicJWK()
	require.NoError(t, err)

	tp1, err := jwk.Thumbprint()
	require.NoError(t, err)

	// Re-import as an ECDH key and re-export; thumbprint must be stable.
	reimported, err := jwk.ECDHPublicKey()
	require.NoError(t, err)
	jwk2, err := JWKFromECDHPublic(reimported)
	require.NoError(t, err)
	tp2, err := jwk2.Thumbprint()
	require.NoError(t, err)

	require.Equal(t, tp1, tp2)
}

func TestWrapUnwrapPrivate(t *testing.T) {
	kp, err := GenerateSigningKeyPair()
	require.NoError(t, err)
	jwk := kp.PrivateJWK()

	blob, err := WrapPrivateWithIterations(jwk, "correct horse", 2048)
	require.NoError(t, err)

	unwrapped, err := UnwrapPrivateWithIterations(blob, "correct horse", 2048)
	require.NoError(t, err)
	require.Equal(t, jwk, unwrapped)

	_, err = UnwrapPrivateWithIterations(blob, "wrong password", 2048)
	require.ErrorIs(t, err, ErrBadPassword)
}
