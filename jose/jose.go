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

// Package jose implements the compact JWS envelope thornmark signs
// and verifies every cryptographic artifact with: invitations,
// replies, and self-encrypted blobs. It supports both detached-key
// verification (caller supplies the public key out of band) and
// embedded-key verification (the header carries a "jwk" member), per
// RFC 7515 compact serialization.
package jose

import (
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sagecrypto "thornmark/crypto"
)

// Errors surfaced while parsing or verifying a JWS. Named after the
// spec's error taxonomy so callers can branch with errors.Is.
var (
	ErrMalformedEnvelope = errors.New("jose: malformed envelope")
	ErrBadSignature      = errors.New("jose: signature verification failed")
)

const AlgES384 = "ES384"

// Header is the JWS protected header. JWK is only populated for
// embedded-key verification (first reply in a thread, invitations,
// self-encrypted blobs); detached-key JWS envelopes omit it.
type Header struct {
	Alg string        `json:"alg"`
	JWK *sagecrypto.JWK `json:"jwk,omitempty"`
}

// Sign builds a compact JWS: b64url(header) + "." + b64url(payload)
// + "." + b64url(signature), signing the ASCII "header.payload"
// string with the given key.
func Sign(header Header, payload any, signer *sagecrypto.SigningKeyPair) (string, error) {
	if header.Alg == "" {
		header.Alg = AlgES384
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("jose: marshal header: %w", err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("jose: marshal payload: %w", err)
	}
	b64header := base64.RawURLEncoding.EncodeToString(headerJSON)
	b64payload := base64.RawURLEncoding.EncodeToString(payloadJSON)
	signingInput := b64header + "." + b64payload
	sig, err := signer.Sign([]byte(signingInput))
	if err != nil {
		return "", fmt.Errorf("jose: sign: %w", err)
	}
	b64sig := base64.RawURLEncoding.EncodeToString(sig)
	return signingInput + "." + b64sig, nil
}

// split decodes the three compact-JWS segments without verifying.
func split(compact string) (header Header, headerJSON, payloadJSON, sig []byte, signingInput string, err error) {
	parts := strings.Split(compact, ".")
	if len(parts) != 3 {
		err = fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedEnvelope, len(parts))
		return
	}
	headerJSON, err = base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		err = fmt.Errorf("%w: header: %v", ErrMalformedEnvelope, err)
		return
	}
	payloadJSON, err = base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		err = fmt.Errorf("%w: payload: %v", ErrMalformedEnvelope, err)
		return
	}
	sig, err = base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		err = fmt.Errorf("%w: signature: %v", ErrMalformedEnvelope, err)
		return
	}
	if jsonErr := json.Unmarshal(headerJSON, &header); jsonErr != nil {
		err = fmt.Errorf("%w: header json: %v", ErrMalformedEnvelope, jsonErr)
		return
	}
	signingInput = parts[0] + "." + parts[1]
	return
}

// Verify reports whether compact's signature is valid. With pub nil,
// it verifies against the header's embedded JWK if present; with no
// embedded key and no pub, it cannot verify and returns false.
func Verify(compact string, pub *ecdsa.PublicKey) (bool, error) {
	header, _, _, sig, signingInput, err := split(compact)
	if err != nil {
		return false, err
	}
	key := pub
	if key == nil {
		if header.JWK == nil {
			return false, nil
		}
		key, err = header.JWK.ECDSAPublicKey()
		if err != nil {
			return false, fmt.Errorf("%w: embedded jwk: %v", ErrMalformedEnvelope, err)
		}
	}
	return sagecrypto.Verify(key, []byte(signingInput), sig), nil
}

// Parse decodes compact into a typed header+payload. If pub is
// supplied, it verifies first and returns ErrBadSignature on
// mismatch. If pub is nil and the header embeds a jwk, it verifies
// against that embedded key. If neither is available, Parse returns
// the decoded payload unverified — the thread engine relies on this
// to read "re" before it knows which key to verify against; callers
// taking this path MUST verify before acting on the result.
func Parse[T any](compact string, pub *ecdsa.PublicKey) (Header, T, error) {
	var payload T
	header, _, payloadJSON, sig, signingInput, err := split(compact)
	if err != nil {
		return header, payload, err
	}

	switch {
	case pub != nil:
		if !sagecrypto.Verify(pub, []byte(signingInput), sig) {
			return header, payload, ErrBadSignature
		}
	case header.JWK != nil:
		embedded, jwkErr := header.JWK.ECDSAPublicKey()
		if jwkErr != nil {
			return header, payload, fmt.Errorf("%w: embedded jwk: %v", ErrMalformedEnvelope, jwkErr)
		}
		if !sagecrypto.Verify(embedded, []byte(signingInput), sig) {
			return header, payload, ErrBadSignature
		}
	default:
		// No key available yet; caller must verify later.
	}

	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return header, payload, fmt.Errorf("%w: payload json: %v", ErrMalformedEnvelope, err)
	}
	return header, payload, nil
}
