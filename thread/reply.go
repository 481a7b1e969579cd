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

// ReplyToThread implements spec.md §4.5.3: it encrypts msg under the
// thread's derived secret, advances the thread's message-id by one,
// signs the result with the identity key (embedding the identity JWK
// and the thread epk only when selfSign is set), and appends it to the
// thread's message log. Before committing anything, ReplyToThread
// self-verifies the signature it just produced and self-decrypts the
// ciphertext to confirm it recovers msg; any mismatch is
// ErrSelfEncryptMismatch and nothing is persisted.
func (e *Engine) ReplyToThread(ctx context.Context, threadThumbprint string, msg []byte, selfSign bool) (string, error) {
	secret, myPub, err := e.ReadThreadSecret(ctx, threadThumbprint)
	if err != nil {
		return "", err
	}
	info, err := e.loadThreadInfo(ctx, threadThumbprint)
	if err != nil {
		return "", err
	}
	theirEPKThumbprint, err := info.TheirEPK.Thumbprint()
	if err != nil {
		return "", fmt.Errorf("thread: thumbprint their epk: %w", err)
	}

	iv, err := sagecrypto.NewIV()
	if err != nil {
		return "", fmt.Errorf("thread: generate iv: %w", err)
	}
	ct, err := sagecrypto.AESGCMEncrypt(secret, iv, msg)
	if err != nil {
		return "", fmt.Errorf("thread: encrypt: %w", err)
	}

	currentRaw, ok, err := e.store.Get(ctx, messageIDKey(threadThumbprint))
	if err != nil {
		return "", fmt.Errorf("thread: load message id: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: message-id:%s", ErrNotFound, threadThumbprint)
	}
	var current string
	if err := json.Unmarshal(currentRaw, &current); err != nil {
		return "", fmt.Errorf("thread: unmarshal message id: %w", err)
	}
	nextID, err := nextMessageID(current)
	if err != nil {
		return "", err
	}

	payload := ReplyPayload{
		Re:        theirEPKThumbprint,
		MessageID: nextID,
		Message:   base64.RawURLEncoding.EncodeToString(ct),
		IV:        base64.RawURLEncoding.EncodeToString(iv),
	}
	var header jose.Header
	if selfSign {
		header.JWK = ptrJWK(e.id.Signing.PublicJWK())
		payload.EPK = ptrJWK(myPub)
	}

	compact, err := jose.Sign(header, payload, e.id.Signing)
	if err != nil {
		return "", fmt.Errorf("thread: sign reply: %w", err)
	}

	signerPub := &e.id.Signing.Private.PublicKey
	verified, err := jose.Verify(compact, signerPub)
	if err != nil || !verified {
		return "", ErrSelfEncryptMismatch
	}
	decrypted, err := sagecrypto.AESGCMDecrypt(secret, iv, ct)
	if err != nil || string(decrypted) != string(msg) {
		return "", ErrSelfEncryptMismatch
	}

	if err := e.store.Set(ctx, messageIDKey(threadThumbprint), json.RawMessage(mustQuote(nextID))); err != nil {
		return "", fmt.Errorf("thread: persist message id: %w", err)
	}
	if err := e.store.Append(ctx, messagesKey(threadThumbprint), json.RawMessage(mustQuote(compact))); err != nil {
		return "", fmt.Errorf("thread: append message: %w", err)
	}
	return compact, nil
}
