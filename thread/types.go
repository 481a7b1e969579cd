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

// Package thread implements the invitation/reply handshake and the
// per-thread append-only message log. Grounded on the teacher's
// handshake phase vocabulary (core/handshake) generalized from a
// four-phase A2A handshake to a two-phase invitation/reply exchange,
// and on session/manager.go's registry idiom for thread bookkeeping.
package thread

import (
	sagecrypto "thornmark/crypto"
)

// InvitationPayload is the JWS payload of a signed invitation.
type InvitationPayload struct {
	MessageID string         `json:"messageId"`
	EPK       sagecrypto.JWK `json:"epk"`
	Note      string         `json:"note,omitempty"`
	Nickname  string         `json:"nickname,omitempty"`
}

// ReplyPayload is the JWS payload of a reply message.
type ReplyPayload struct {
	Re        string          `json:"re"`
	MessageID string          `json:"messageId"`
	Message   string          `json:"message"` // base64url ciphertext
	IV        string          `json:"iv"`      // base64url
	EPK       *sagecrypto.JWK `json:"epk,omitempty"`
}

// Info is the persisted thread-info record: everything about a thread
// except its message-id counter, which storage tracks under its own
// namespaced key so concurrent readers can check sequence without
// decoding the whole record.
type Info struct {
	MyThumbprint   string         `json:"myThumbprint"`
	TheirEPK       sagecrypto.JWK `json:"theirEPK"`
	TheirSignature sagecrypto.JWK `json:"theirSignature"`
	SignedInvite   string         `json:"signedInvite"`
}

// threadKeyBundle is the payload self-encrypted under
// encrypted-thread-key:<thumbprint>: the full ephemeral ECDH keypair,
// private half included, so read_thread_secret can reimport it.
type threadKeyBundle struct {
	JWK sagecrypto.JWK `json:"jwk"`
}

func invitationKey(thumbprint string) string       { return "invitation:" + thumbprint }
func publicKeyKey(thumbprint string) string        { return "public-key:" + thumbprint }
func threadInfoKey(thumbprint string) string       { return "thread-info:" + thumbprint }
func encryptedThreadKeyKey(thumbprint string) string { return "encrypted-thread-key:" + thumbprint }
func threadsKey(clientThumbprint string) string    { return "threads:" + clientThumbprint }
func messagesKey(thumbprint string) string         { return "messages:" + thumbprint }
func messageIDKey(thumbprint string) string        { return "message-id:" + thumbprint }

// AppendResult is what AppendThread returns on success.
type AppendResult struct {
	ThreadThumbprint string
	Message          string
}

// InvitationOptions carries the optional human-facing fields a caller
// may attach to an invitation.
type InvitationOptions struct {
	Note     string
	Nickname string
}

func ptrJWK(j sagecrypto.JWK) *sagecrypto.JWK { return &j }
