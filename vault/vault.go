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

// Package vault implements self-encryption: a client encrypting data
// to its own long-term storage key, used to back up ephemeral thread
// private keys. Grounded on the teacher's session key-schedule idiom
// (ECDH shared secret run through HKDF before use as an AEAD key),
// adapted here from a two-party session secret to a self-addressed
// ECDH exchange.
package vault

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	sagecrypto "thornmark/crypto"
	"thornmark/identity"
	"thornmark/jose"
)

// ErrSelfEncryptMismatch is returned by EncryptToSelf when the
// construction self-test (sign, verify, decrypt, compare) disagrees
// with the plaintext that was just encrypted. No JWS is returned when
// this happens.
var ErrSelfEncryptMismatch = errors.New("vault: self-encrypt verification mismatch")

const hkdfInfo = "thornmark/vault/self-encrypt"

// selfEncryptedPayload is the JWS payload shape for self-encrypted
// blobs: ciphertext, IV, and the fresh ephemeral public key used to
// derive the encryption secret.
type selfEncryptedPayload struct {
	Message string         `json:"message"`
	IV      string         `json:"iv"`
	EPK     sagecrypto.JWK `json:"epk"`
}

// deriveKey runs the raw ECDH output through HKDF-SHA256 (no salt),
// with the fresh ephemeral key's thumbprint bound into the info
// string, so the final AES key is never the bare ECDH secret.
func deriveKey(secret []byte, epkThumbprint string) ([]byte, error) {
	r := hkdf.New(sha256.New, secret, nil, []byte(hkdfInfo+":"+epkThumbprint))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("vault: derive key: %w", err)
	}
	return key, nil
}

func encodeIV(iv []byte) string {
	return base64.RawURLEncoding.EncodeToString(iv)
}

// decodeIV tolerates both base64url and standard base64, matching the
// spec's documented asymmetry between SelfEncrypted's IV and the rest
// of the envelope fields.
func decodeIV(s string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return nil, fmt.Errorf("vault: decode iv: invalid base64")
}

// EncryptToSelf encrypts msg to id's own storage key: a fresh ECDH
// keypair is generated, its shared secret with id's storage public key
// is derived and expanded via HKDF, and msg is sealed under the result
// with a random IV. The result is signed with id's identity key and
// embeds the public identity JWK so it is self-describing.
//
// Before returning, EncryptToSelf verifies and decrypts its own output
// and compares it against msg; any discrepancy is a construction bug
// and surfaces as ErrSelfEncryptMismatch rather than a silently broken
// JWS.
func EncryptToSelf(id *identity.Manager, msg []byte) (string, error) {
	epk, err := sagecrypto.GenerateAgreementKeyPair()
	if err != nil {
		return "", fmt.Errorf("vault: generate epk: %w", err)
	}
	epkPub, err := epk.PublicJWK()
	if err != nil {
		return "", fmt.Errorf("vault: export epk: %w", err)
	}
	epkThumbprint, err := epkPub.Thumbprint()
	if err != nil {
		return "", fmt.Errorf("vault: epk thumbprint: %w", err)
	}

	secret, err := sagecrypto.DeriveShared(epk.Private, id.Storage.Private.PublicKey())
	if err != nil {
		return "", fmt.Errorf("vault: derive shared secret: %w", err)
	}
	key, err := deriveKey(secret, epkThumbprint)
	if err != nil {
		return "", err
	}

	iv, err := sagecrypto.NewIV()
	if err != nil {
		return "", fmt.Errorf("vault: generate iv: %w", err)
	}
	ct, err := sagecrypto.AESGCMEncrypt(key, iv, msg)
	if err != nil {
		return "", fmt.Errorf("vault: encrypt: %w", err)
	}

	payload := selfEncryptedPayload{
		Message: base64.RawURLEncoding.EncodeToString(ct),
		IV:      encodeIV(iv),
		EPK:     epkPub,
	}
	header := jose.Header{JWK: idPtr(id.Signing.PublicJWK())}
	compact, err := jose.Sign(header, payload, id.Signing)
	if err != nil {
		return "", fmt.Errorf("vault: sign: %w", err)
	}

	plaintext, err := DecryptFromSelf(id, compact)
	if err != nil || plaintext != string(msg) {
		return "", ErrSelfEncryptMismatch
	}

	return compact, nil
}

// DecryptFromSelf verifies compact against id's identity public key,
// re-derives the encryption secret from id's storage private key and
// the embedded ephemeral public key, and decrypts the payload.
func DecryptFromSelf(id *identity.Manager, compact string) (string, error) {
	pub := &id.Signing.Private.PublicKey
	header, payload, err := jose.Parse[selfEncryptedPayload](compact, pub)
	if err != nil {
		return "", fmt.Errorf("vault: parse: %w", err)
	}
	_ = header

	epkPub, err := payload.EPK.ECDHPublicKey()
	if err != nil {
		return "", fmt.Errorf("vault: import epk: %w", err)
	}
	epkThumbprint, err := payload.EPK.Thumbprint()
	if err != nil {
		return "", fmt.Errorf("vault: epk thumbprint: %w", err)
	}

	secret, err := sagecrypto.DeriveShared(id.Storage.Private, epkPub)
	if err != nil {
		return "", fmt.Errorf("vault: derive shared secret: %w", err)
	}
	key, err := deriveKey(secret, epkThumbprint)
	if err != nil {
		return "", err
	}

	iv, err := decodeIV(payload.IV)
	if err != nil {
		return "", err
	}
	ct, err := base64.RawURLEncoding.DecodeString(payload.Message)
	if err != nil {
		return "", fmt.Errorf("vault: decode ciphertext: %w", err)
	}

	pt, err := sagecrypto.AESGCMDecrypt(key, iv, ct)
	if err != nil {
		return "", fmt.Errorf("vault: decrypt: %w", err)
	}
	return string(pt), nil
}

func idPtr(j sagecrypto.JWK) *sagecrypto.JWK { return &j }
