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
	"encoding/json"
	"fmt"

	sagecrypto "thornmark/crypto"
	"thornmark/identity"
	"thornmark/storage"
	"thornmark/vault"
)

// Engine runs the invitation/reply handshake and thread message log
// for one identity against one storage backend. Storage is an unowned
// collaborator: the Engine never assumes it is transactional and
// documents, per operation, the write order recoverable state depends
// on.
type Engine struct {
	id    *identity.Manager
	store storage.Store
	guard *ReplayGuard
}

// New returns an Engine for id backed by store. guard may be nil, in
// which case replayed message ids are accepted at-least-once per the
// base spec rather than deduplicated.
func New(id *identity.Manager, store storage.Store, guard *ReplayGuard) *Engine {
	return &Engine{id: id, store: store, guard: guard}
}

// threadKeys is an unwrapped ephemeral ECDH keypair for one side of
// one thread, plus its thumbprint.
type threadKeys struct {
	Thumbprint string
	KeyPair    *sagecrypto.AgreementKeyPair
}

// makeThreadKeys generates a fresh ephemeral ECDH keypair, self-
// encrypts its full JWK (private half included) under e's identity,
// and stores the result under encrypted-thread-key:<thumbprint>.
func (e *Engine) makeThreadKeys(ctx context.Context) (*threadKeys, error) {
	kp, err := sagecrypto.GenerateAgreementKeyPair()
	if err != nil {
		return nil, fmt.Errorf("thread: generate thread keys: %w", err)
	}
	pubJWK, err := kp.PublicJWK()
	if err != nil {
		return nil, fmt.Errorf("thread: export thread public key: %w", err)
	}
	thumbprint, err := pubJWK.Thumbprint()
	if err != nil {
		return nil, fmt.Errorf("thread: thumbprint thread key: %w", err)
	}

	privJWK, err := kp.PrivateJWK()
	if err != nil {
		return nil, fmt.Errorf("thread: export thread private key: %w", err)
	}
	bundle, err := json.Marshal(threadKeyBundle{JWK: privJWK})
	if err != nil {
		return nil, fmt.Errorf("thread: marshal thread key bundle: %w", err)
	}

	sealed, err := vault.EncryptToSelf(e.id, bundle)
	if err != nil {
		return nil, fmt.Errorf("thread: self-encrypt thread key: %w", err)
	}
	if err := e.store.Set(ctx, encryptedThreadKeyKey(thumbprint), json.RawMessage(mustQuote(sealed))); err != nil {
		return nil, fmt.Errorf("thread: persist thread key: %w", err)
	}

	return &threadKeys{Thumbprint: thumbprint, KeyPair: kp}, nil
}

// ReadThreadSecret implements spec.md §4.5.5: it loads thread-info,
// unseals this side's ephemeral private key, and derives the shared
// AES-GCM key with the counterparty's ephemeral public key.
func (e *Engine) ReadThreadSecret(ctx context.Context, threadThumbprint string) ([]byte, sagecrypto.JWK, error) {
	info, err := e.loadThreadInfo(ctx, threadThumbprint)
	if err != nil {
		return nil, sagecrypto.JWK{}, err
	}
	theirPub, err := info.TheirEPK.ECDHPublicKey()
	if err != nil {
		return nil, sagecrypto.JWK{}, fmt.Errorf("thread: import their epk: %w", err)
	}

	sealedRaw, ok, err := e.store.Get(ctx, encryptedThreadKeyKey(info.MyThumbprint))
	if err != nil {
		return nil, sagecrypto.JWK{}, fmt.Errorf("thread: load thread key: %w", err)
	}
	if !ok {
		return nil, sagecrypto.JWK{}, fmt.Errorf("%w: encrypted-thread-key:%s", ErrNotFound, info.MyThumbprint)
	}
	var sealed string
	if err := json.Unmarshal(sealedRaw, &sealed); err != nil {
		return nil, sagecrypto.JWK{}, fmt.Errorf("thread: unmarshal sealed thread key: %w", err)
	}
	plaintext, err := vault.DecryptFromSelf(e.id, sealed)
	if err != nil {
		return nil, sagecrypto.JWK{}, fmt.Errorf("thread: unseal thread key: %w", err)
	}
	var bundle threadKeyBundle
	if err := json.Unmarshal([]byte(plaintext), &bundle); err != nil {
		return nil, sagecrypto.JWK{}, fmt.Errorf("thread: unmarshal thread key bundle: %w", err)
	}
	myPriv, err := bundle.JWK.ECDHPrivateKey()
	if err != nil {
		return nil, sagecrypto.JWK{}, fmt.Errorf("thread: import my thread key: %w", err)
	}

	secret, err := sagecrypto.DeriveShared(myPriv, theirPub)
	if err != nil {
		return nil, sagecrypto.JWK{}, fmt.Errorf("thread: derive shared secret: %w", err)
	}
	return secret, bundle.JWK.PublicOnly(), nil
}

func (e *Engine) loadThreadInfo(ctx context.Context, threadThumbprint string) (Info, error) {
	raw, ok, err := e.store.Get(ctx, threadInfoKey(threadThumbprint))
	if err != nil {
		return Info{}, fmt.Errorf("thread: load thread-info: %w", err)
	}
	if !ok {
		return Info{}, fmt.Errorf("%w: thread-info:%s", ErrNotFound, threadThumbprint)
	}
	var info Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return Info{}, fmt.Errorf("thread: unmarshal thread-info: %w", err)
	}
	return info, nil
}

func mustQuote(s string) []byte {
	b, _ := json.Marshal(s)
	return b
}

// startThread implements the storage side of spec.md §4.5.2's
// start_thread: it records the counterparty's identity key, registers
// myThumbprint under this client's thread list, appends signedInvite
// as the first entry of the message log, stores the initial
// message-id, and then writes the thread-info record. thread-info is written last,
// matching §5's atomicity note: a crash before it commits leaves no
// half-registered thread for callers to observe.
func (e *Engine) startThread(ctx context.Context, signedInvite string, theirEPK, theirSignature sagecrypto.JWK, messageID, myThumbprint string) error {
	theirSigThumbprint, err := theirSignature.Thumbprint()
	if err != nil {
		return fmt.Errorf("thread: thumbprint their signature: %w", err)
	}
	theirSigJSON, err := json.Marshal(theirSignature)
	if err != nil {
		return fmt.Errorf("thread: marshal their signature: %w", err)
	}
	if err := e.store.Set(ctx, publicKeyKey(theirSigThumbprint), theirSigJSON); err != nil {
		return fmt.Errorf("thread: persist public key: %w", err)
	}

	if err := e.store.Append(ctx, threadsKey(e.id.Thumbprint), json.RawMessage(mustQuote(myThumbprint))); err != nil {
		return fmt.Errorf("thread: register thread: %w", err)
	}
	if err := e.store.Append(ctx, messagesKey(myThumbprint), json.RawMessage(mustQuote(signedInvite))); err != nil {
		return fmt.Errorf("thread: append invitation to log: %w", err)
	}
	if err := e.store.Set(ctx, messageIDKey(myThumbprint), json.RawMessage(mustQuote(messageID))); err != nil {
		return fmt.Errorf("thread: persist message id: %w", err)
	}

	info := Info{
		MyThumbprint:   myThumbprint,
		TheirEPK:       theirEPK,
		TheirSignature: theirSignature,
		SignedInvite:   signedInvite,
	}
	infoJSON, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("thread: marshal thread-info: %w", err)
	}
	if err := e.store.Set(ctx, threadInfoKey(myThumbprint), infoJSON); err != nil {
		return fmt.Errorf("thread: persist thread-info: %w", err)
	}
	return nil
}
