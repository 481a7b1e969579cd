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

package thread

import (
	"errors"

	sagecrypto "thornmark/crypto"
	"thornmark/jose"
	"thornmark/vault"
)

// Error kinds the thread engine surfaces. JWS- and ciphertext-level
// failures are re-exported from the packages that actually detect
// them so callers can errors.Is against one set of sentinels without
// caring which layer raised it.
var (
	ErrNotFound          = errors.New("thread: not found")
	ErrBadSignature      = jose.ErrBadSignature
	ErrUnverifiedSigner  = errors.New("thread: no rule identifies a verification key")
	ErrBadCiphertext     = sagecrypto.ErrBadCiphertext
	ErrMalformedEnvelope = jose.ErrMalformedEnvelope
	ErrMalformedFirstReply = errors.New("thread: first reply missing jwk header or epk payload")
	ErrUnknownInvitation = errors.New("thread: unknown invitation")
	ErrUnknownThread     = errors.New("thread: unknown thread")
	ErrOutOfOrder        = errors.New("thread: message id out of sequence")
	ErrSelfEncryptMismatch = vault.ErrSelfEncryptMismatch
	ErrMessageIDOverflow = errors.New("thread: message id exceeds maximum; no wraparound")
)
