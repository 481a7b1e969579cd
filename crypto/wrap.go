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
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2Iterations is the iteration count used to derive a wrapping
// key from a password. 100,000 matches the teacher vault's default
// and is configurable by callers that need a different cost via
// WrapPrivateWithIterations.
const PBKDF2Iterations = 100_000

const saltSize = 32

// wrappedBlob is the JSON shape persisted for a password-wrapped JWK:
// PBKDF2 salt + AES-GCM(iv, JSON(jwk)).
type wrappedBlob struct {
	Salt string `json:"salt"`
	IV   string `json:"iv"`
	CT   string `json:"ct"`
}

// WrapPrivate serializes jwk to JSON and encrypts it under a key
// derived from password via PBKDF2-SHA256, returning an opaque string
// suitable for long-term storage.
func WrapPrivate(jwk JWK, password string) (string, error) {
	return WrapPrivateWithIterations(jwk, password, PBKDF2Iterations)
}

// WrapPrivateWithIterations is WrapPrivate with an explicit PBKDF2
// iteration count, for callers that tune the cost/latency tradeoff.
func WrapPrivateWithIterations(jwk JWK, password string, iterations int) (string, error) {
	plaintext, err := json.Marshal(jwk)
	if err != nil {
		return "", fmt.Errorf("crypto: marshal jwk: %w", err)
	}
	salt, err := randomBytes(saltSize)
	if err != nil {
		return "", err
	}
	key := pbkdf2.Key([]byte(password), salt, iterations, 32, sha256.New)
	iv, err := NewIV()
	if err != nil {
		return "", err
	}
	ct, err := AESGCMEncrypt(key, iv, plaintext)
	if err != nil {
		return "", err
	}
	blob := wrappedBlob{
		Salt: base64.StdEncoding.EncodeToString(salt),
		IV:   base64.StdEncoding.EncodeToString(iv),
		CT:   base64.StdEncoding.EncodeToString(ct),
	}
	out, err := json.Marshal(blob)
	if err != nil {
		return "", fmt.Errorf("crypto: marshal wrapped blob: %w", err)
	}
	return string(out), nil
}

// UnwrapPrivate reverses WrapPrivate, returning ErrBadPassword if the
// password does not match (the AES-GCM tag fails to verify).
func UnwrapPrivate(blob string, password string) (JWK, error) {
	return UnwrapPrivateWithIterations(blob, password, PBKDF2Iterations)
}

// UnwrapPrivateWithIterations is UnwrapPrivate with an explicit
// PBKDF2 iteration count; it must match the count WrapPrivate* used.
func UnwrapPrivateWithIterations(blob string, password string, iterations int) (JWK, error) {
	var wb wrappedBlob
	if err := json.Unmarshal([]byte(blob), &wb); err != nil {
		return JWK{}, fmt.Errorf("crypto: unmarshal wrapped blob: %w", err)
	}
	salt, err := base64.StdEncoding.DecodeString(wb.Salt)
	if err != nil {
		return JWK{}, fmt.Errorf("crypto: decode salt: %w", err)
	}
	iv, err := base64.StdEncoding.DecodeString(wb.IV)
	if err != nil {
		return JWK{}, fmt.Errorf("crypto: decode iv: %w", err)
	}
	ct, err := base64.StdEncoding.DecodeString(wb.CT)
	if err != nil {
		return JWK{}, fmt.Errorf("crypto: decode ciphertext: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, iterations, 32, sha256.New)
	plaintext, err := AESGCMDecrypt(key, iv, ct)
	if err != nil {
		return JWK{}, ErrBadPassword
	}
	var jwk JWK
	if err := json.Unmarshal(plaintext, &jwk); err != nil {
		return JWK{}, fmt.Errorf("crypto: unmarshal jwk: %w", err)
	}
	return jwk, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("crypto: generate random bytes: %w", err)
	}
	return b, nil
}
