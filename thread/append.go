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
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	sagecrypto "thornmark/crypto"
	"thornmark/jose"
)

// AppendThread implements spec.md §4.5.4's two-mode dispatch for
// ingesting a message. When threadThumbprint is nil the caller does
// not yet know which thread the message belongs to (the common case
// for a peer's reply arriving at the inviter); AppendThread resolves it
// from the envelope itself. When threadThumbprint is supplied the
// caller already knows the thread and AppendThread only verifies,
// decrypts, and logs.
func (e *Engine) AppendThread(ctx context.Context, jwsCompact string, threadThumbprint *string) (*AppendResult, error) {
	if threadThumbprint != nil {
		return e.appendKnown(ctx, *threadThumbprint, jwsCompact)
	}
	return e.appendUnknown(ctx, jwsCompact)
}

// appendUnknown resolves an incoming message to a thread before
// delegating to appendKnown. A message with no embedded jwk must
// address an existing thread-info via its re-field; a message with an
// embedded jwk is treated as the first reply to one of this client's
// own invitations and starts a new thread.
func (e *Engine) appendUnknown(ctx context.Context, jwsCompact string) (*AppendResult, error) {
	header, payload, err := jose.Parse[ReplyPayload](jwsCompact, nil)
	if err != nil {
		return nil, fmt.Errorf("thread: parse reply: %w", err)
	}

	if header.JWK == nil {
		exists, err := e.store.Has(ctx, threadInfoKey(payload.Re))
		if err != nil {
			return nil, fmt.Errorf("thread: check thread-info: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrUnknownThread, payload.Re)
		}
		return e.appendKnown(ctx, payload.Re, jwsCompact)
	}

	if payload.EPK == nil {
		return nil, ErrMalformedFirstReply
	}

	invRaw, ok, err := e.store.Get(ctx, invitationKey(payload.Re))
	if err != nil {
		return nil, fmt.Errorf("thread: load invitation: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInvitation, payload.Re)
	}
	var invCompact string
	if err := json.Unmarshal(invRaw, &invCompact); err != nil {
		return nil, fmt.Errorf("thread: unmarshal invitation: %w", err)
	}
	_, invPayload, err := jose.Parse[InvitationPayload](invCompact, nil)
	if err != nil {
		return nil, fmt.Errorf("thread: parse stored invitation: %w", err)
	}

	expected, err := nextMessageID(invPayload.MessageID)
	if err != nil {
		return nil, err
	}
	if !messageIDEquals(expected, payload.MessageID) {
		return nil, ErrOutOfOrder
	}

	myThumbprint, err := invPayload.EPK.Thumbprint()
	if err != nil {
		return nil, fmt.Errorf("thread: thumbprint invitation epk: %w", err)
	}
	if err := e.startThread(ctx, invCompact, *payload.EPK, *header.JWK, payload.MessageID, myThumbprint); err != nil {
		return nil, err
	}
	return e.appendKnown(ctx, myThumbprint, jwsCompact)
}

// appendKnown implements spec.md §4.5.4(B): verify against the
// appropriate key, decrypt with the thread's derived secret, and
// append to the log.
func (e *Engine) appendKnown(ctx context.Context, threadThumbprint, jwsCompact string) (*AppendResult, error) {
	info, err := e.loadThreadInfo(ctx, threadThumbprint)
	if err != nil {
		return nil, err
	}

	header, payload, err := jose.Parse[ReplyPayload](jwsCompact, nil)
	if err != nil {
		return nil, fmt.Errorf("thread: parse reply: %w", err)
	}

	if header.JWK == nil {
		theirEPKThumbprint, err := info.TheirEPK.Thumbprint()
		if err != nil {
			return nil, fmt.Errorf("thread: thumbprint their epk: %w", err)
		}
		var signerKey sagecrypto.JWK
		switch {
		case payload.Re == info.MyThumbprint:
			signerKey = info.TheirSignature
		case payload.Re == theirEPKThumbprint:
			signerKey = e.id.Signing.PublicJWK()
		default:
			return nil, ErrUnverifiedSigner
		}
		pub, err := signerKey.ECDSAPublicKey()
		if err != nil {
			return nil, fmt.Errorf("thread: import verification key: %w", err)
		}
		verified, err := jose.Verify(jwsCompact, pub)
		if err != nil {
			return nil, fmt.Errorf("thread: verify: %w", err)
		}
		if !verified {
			return nil, ErrBadSignature
		}
	}

	secret, _, err := e.ReadThreadSecret(ctx, threadThumbprint)
	if err != nil {
		return nil, err
	}
	ct, err := base64.RawURLEncoding.DecodeString(payload.Message)
	if err != nil {
		return nil, fmt.Errorf("%w: message: %v", ErrMalformedEnvelope, err)
	}
	iv, err := base64.RawURLEncoding.DecodeString(payload.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: iv: %v", ErrMalformedEnvelope, err)
	}
	pt, err := sagecrypto.AESGCMDecrypt(secret, iv, ct)
	if err != nil {
		return nil, ErrBadCiphertext
	}

	if e.guard == nil || !e.guard.Seen(threadThumbprint, payload.MessageID) {
		if err := e.store.Append(ctx, messagesKey(threadThumbprint), json.RawMessage(mustQuote(jwsCompact))); err != nil {
			return nil, fmt.Errorf("thread: append message: %w", err)
		}
	}

	return &AppendResult{ThreadThumbprint: threadThumbprint, Message: string(pt)}, nil
}
