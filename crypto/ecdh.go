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
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
)

// AgreementKeyPair holds a P-384 ECDH keypair used for per-thread
// Diffie-Hellman secret derivation and for self-encryption.
type AgreementKeyPair struct {
	Private *ecdh.PrivateKey
}

// GenerateAgreementKeyPair creates a fresh P-384 ECDH keypair.
func GenerateAgreementKeyPair() (*AgreementKeyPair, error) {
	priv, err := ecdh.P384().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("crypto: generate ECDH key: %w", err)
	}
	return &AgreementKeyPair{Private: priv}, nil
}

// PublicJWK exports the public half as a JWK.
func (k *AgreementKeyPair) PublicJWK() (JWK, error) {
	return JWKFromECDHPublic(k.Private.PublicKey())
}

// PrivateJWK exports the full keypair as a JWK.
func (k *AgreementKeyPair) PrivateJWK() (JWK, error) {
	return JWKFromECDHPrivate(k.Private)
}

// Zeroize best-effort scrubs a copy of the private key bytes. The
// stdlib ecdh.PrivateKey holds its scalar behind an opaque internal
// representation this package cannot reach directly, so this clears
// what it can and drops the reference; it is not a guarantee against
// memory inspection. Callers must not use k after calling this.
func (k *AgreementKeyPair) Zeroize() {
	if k == nil || k.Private == nil {
		return
	}
	b := k.Private.Bytes()
	for i := range b {
		b[i] = 0
	}
	k.Private = nil
}

// DeriveShared computes a 256-bit AES-GCM key from an ECDH exchange
// between priv and pub. Both sides of a thread call this with their
// own private key and the counterparty's public key; by ECDH
// symmetry they derive the same key.
func DeriveShared(priv *ecdh.PrivateKey, pub *ecdh.PublicKey) ([]byte, error) {
	raw, err := priv.ECDH(pub)
	if err != nil {
		return nil, fmt.Errorf("crypto: derive shared secret: %w", err)
	}
	sum := sha256.Sum256(raw)
	return sum[:], nil
}
