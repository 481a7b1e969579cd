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

// Package crypto provides the cryptographic primitives thornmark is
// built on: P-384 ECDSA signing, P-384 ECDH key agreement, AES-GCM,
// JWK import/export with RFC 7638 thumbprints, and PBKDF2-based
// password wrapping of private key material.
//
// This file is intentionally minimal to avoid circular dependencies.
// The actual implementations live alongside it:
//   - ecdsa.go: signing keypairs
//   - ecdh.go: agreement keypairs and shared-secret derivation
//   - aesgcm.go: symmetric encryption
//   - wrap.go: password-based wrapping of private JWKs
//   - jwk.go: JWK import/export and RFC 7638 thumbprints
package crypto

import "errors"

// Sentinel errors. Callers branch on these with errors.Is, never by
// matching error strings.
var (
	ErrBadPassword    = errors.New("crypto: bad password")
	ErrBadCiphertext  = errors.New("crypto: ciphertext authentication failed")
	ErrInvalidKeyType = errors.New("crypto: invalid key type")
	ErrInvalidJWK     = errors.New("crypto: invalid JWK")
)
