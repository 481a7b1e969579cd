// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha512"
	"fmt"
	"math/big"
)

// SigningKeyPair holds a P-384 ECDSA keypair used to sign and verify
// JWS envelopes.
type SigningKeyPair struct {
	Private *ecdsa.PrivateKey
}

// GenerateSigningKeyPair creates a fresh P-384 ECDSA keypair.
func GenerateSigningKeyPair() (*SigningKeyPair, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("crypto: generate ECDSA key: %w", err)
	}
	return &SigningKeyPair{Private: priv}, nil
}

// PublicJWK exports the public half as a JWK.
func (k *SigningKeyPair) PublicJWK() JWK {
	return JWKFromECDSAPublic(&k.Private.PublicKey)
}

// PrivateJWK exports the full keypair as a JWK.
func (k *SigningKeyPair) PrivateJWK() JWK {
	return JWKFromECDSAPrivate(k.Private)
}

// Sign signs msg with ES384 (ECDSA over SHA-384), returning the raw
// fixed-length r||s signature compact JWS expects (RFC 7518 §3.4),
// not the ASN.1 DER form crypto/ecdsa.Sign* returns by default.
func (k *SigningKeyPair) Sign(msg []byte) ([]byte, error) {
	digest := sha512.Sum384(msg)
	r, s, err := ecdsa.Sign(rand.Reader, k.Private, digest[:])
	if err != nil {
		return nil, fmt.Errorf("crypto: sign: %w", err)
	}
	size := (elliptic.P384().Params().BitSize + 7) / 8
	out := make([]byte, 2*size)
	rBytes, sBytes := r.Bytes(), s.Bytes()
	copy(out[size-len(rBytes):size], rBytes)
	copy(out[2*size-len(sBytes):], sBytes)
	return out, nil
}

// Zeroize scrubs the private scalar in place. Callers must not use k
// after calling this; it exists so identity.Manager.Close can release
// signing key material deterministically rather than waiting on GC.
func (k *SigningKeyPair) Zeroize() {
	if k == nil || k.Private == nil || k.Private.D == nil {
		return
	}
	k.Private.D.SetInt64(0)
}

// Verify checks an ES384 signature produced by Sign against pub.
func Verify(pub *ecdsa.PublicKey, msg, sig []byte) bool {
	size := (elliptic.P384().Params().BitSize + 7) / 8
	if len(sig) != 2*size {
		return false
	}
	digest := sha512.Sum384(msg)
	r := new(big.Int).SetBytes(sig[:size])
	s := new(big.Int).SetBytes(sig[size:])
	return ecdsa.Verify(pub, digest[:], r, s)
}
