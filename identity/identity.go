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

// Package identity manages a client's long-term cryptographic
// identity: a signing keypair and a key-agreement ("storage") keypair,
// both password-wrapped at rest. It generates, loads, and backs up
// identities the way the teacher's crypto.Manager wraps a KeyStorage
// and the teacher's secure_storage vault wraps/unwraps under a
// password.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sagecrypto "thornmark/crypto"
	"thornmark/jose"
	"thornmark/storage"
)

// Errors surfaced by the identity manager, named after the spec's
// error taxonomy.
var (
	ErrNotFound   = errors.New("identity: not found")
	ErrBadPassword = sagecrypto.ErrBadPassword
)

// IdentityRecord is the persisted shape of a client identity: the
// signing keypair and storage keypair, each public JWK in the clear
// and private half password-wrapped.
type IdentityRecord struct {
	ID      WrappedKeyPair `json:"id"`
	Storage WrappedKeyPair `json:"storage"`
}

// WrappedKeyPair is one keypair as persisted: the public JWK in the
// clear, the private JWK opaque and password-wrapped.
type WrappedKeyPair struct {
	JWK     sagecrypto.JWK `json:"jwk"`
	Private string         `json:"private"`
}

func recordKey(thumbprint string) string {
	return "identity:" + thumbprint
}

// Manager holds a client's unwrapped identity for the lifetime of the
// process that loaded or generated it. Private key material must be
// released with Close when the manager is no longer needed.
type Manager struct {
	Thumbprint string
	Signing    *sagecrypto.SigningKeyPair
	Storage    *sagecrypto.AgreementKeyPair
}

// Close zeroizes the signing scalar in place and drops the storage
// key (see AgreementKeyPair.Zeroize for what that can and cannot
// scrub). The Manager must not be used after Close returns.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.Signing.Zeroize()
	m.Storage.Zeroize()
}

// Generate creates a fresh identity, wraps both private keys under
// password, persists the record under identity:<thumbprint>, and
// returns a Manager over the unwrapped keys.
func Generate(ctx context.Context, store storage.Store, password string) (*Manager, error) {
	signing, err := sagecrypto.GenerateSigningKeyPair()
	if err != nil {
		return nil, fmt.Errorf("identity: generate signing key: %w", err)
	}
	agreement, err := sagecrypto.GenerateAgreementKeyPair()
	if err != nil {
		return nil, fmt.Errorf("identity: generate storage key: %w", err)
	}

	thumbprint, err := signing.PublicJWK().Thumbprint()
	if err != nil {
		return nil, fmt.Errorf("identity: thumbprint: %w", err)
	}

	wrappedSigning, err := sagecrypto.WrapPrivate(signing.PrivateJWK(), password)
	if err != nil {
		return nil, fmt.Errorf("identity: wrap signing key: %w", err)
	}
	storageJWK, err := agreement.PrivateJWK()
	if err != nil {
		return nil, fmt.Errorf("identity: export storage key: %w", err)
	}
	wrappedStorage, err := sagecrypto.WrapPrivate(storageJWK, password)
	if err != nil {
		return nil, fmt.Errorf("identity: wrap storage key: %w", err)
	}

	record := IdentityRecord{
		ID:      WrappedKeyPair{JWK: signing.PublicJWK(), Private: wrappedSigning},
		Storage: WrappedKeyPair{JWK: storageJWK.PublicOnly(), Private: wrappedStorage},
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("identity: marshal record: %w", err)
	}
	if err := store.Set(ctx, recordKey(thumbprint), data); err != nil {
		return nil, fmt.Errorf("identity: persist record: %w", err)
	}

	return &Manager{Thumbprint: thumbprint, Signing: signing, Storage: agreement}, nil
}

// Load reads the identity record for thumbprint and unwraps both
// private keys under password. It fails with ErrNotFound if no
// identity exists for thumbprint, or ErrBadPassword if password is
// wrong.
func Load(ctx context.Context, store storage.Store, thumbprint, password string) (*Manager, error) {
	data, ok, err := store.Get(ctx, recordKey(thumbprint))
	if err != nil {
		return nil, fmt.Errorf("identity: load record: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}

	var record IdentityRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("identity: unmarshal record: %w", err)
	}

	signingJWK, err := sagecrypto.UnwrapPrivate(record.ID.Private, password)
	if err != nil {
		return nil, fmt.Errorf("identity: unwrap signing key: %w", err)
	}
	signingPriv, err := signingJWK.ECDSAPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("identity: import signing key: %w", err)
	}

	storageJWK, err := sagecrypto.UnwrapPrivate(record.Storage.Private, password)
	if err != nil {
		return nil, fmt.Errorf("identity: unwrap storage key: %w", err)
	}
	storagePriv, err := storageJWK.ECDHPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("identity: import storage key: %w", err)
	}

	return &Manager{
		Thumbprint: thumbprint,
		Signing:    &sagecrypto.SigningKeyPair{Private: signingPriv},
		Storage:    &sagecrypto.AgreementKeyPair{Private: storagePriv},
	}, nil
}

// backupPayload is the JWS payload make_backup emits: the identity
// record re-wrapped under the backup password.
type backupPayload struct {
	Record IdentityRecord `json:"record"`
}

// MakeBackup serializes m's identity record, re-wrapping both private
// keys under password (which may differ from the password used at
// Generate/Load time), and signs the result with m's identity key so
// the backup is self-authenticating. The returned compact JWS is
// suitable for offline storage.
func (m *Manager) MakeBackup(password string) (string, error) {
	wrappedSigning, err := sagecrypto.WrapPrivate(m.Signing.PrivateJWK(), password)
	if err != nil {
		return "", fmt.Errorf("identity: wrap signing key for backup: %w", err)
	}
	storageJWK, err := m.Storage.PrivateJWK()
	if err != nil {
		return "", fmt.Errorf("identity: export storage key for backup: %w", err)
	}
	wrappedStorage, err := sagecrypto.WrapPrivate(storageJWK, password)
	if err != nil {
		return "", fmt.Errorf("identity: wrap storage key for backup: %w", err)
	}

	record := IdentityRecord{
		ID:      WrappedKeyPair{JWK: m.Signing.PublicJWK(), Private: wrappedSigning},
		Storage: WrappedKeyPair{JWK: storageJWK.PublicOnly(), Private: wrappedStorage},
	}

	header := jose.Header{JWK: ptr(m.Signing.PublicJWK())}
	compact, err := jose.Sign(header, backupPayload{Record: record}, m.Signing)
	if err != nil {
		return "", fmt.Errorf("identity: sign backup: %w", err)
	}
	return compact, nil
}

// RestoreBackup verifies a backup JWS against its embedded identity
// key, unwraps both private keys under password, and returns a Manager
// over the restored identity. It does not persist anything to store;
// callers that want the restored identity durable must re-Generate or
// write the record themselves.
func RestoreBackup(compact string, password string) (*Manager, error) {
	header, payload, err := jose.Parse[backupPayload](compact, nil)
	if err != nil {
		return nil, fmt.Errorf("identity: parse backup: %w", err)
	}
	if header.JWK == nil {
		return nil, fmt.Errorf("identity: backup missing embedded key: %w", jose.ErrMalformedEnvelope)
	}
	pub, err := header.JWK.ECDSAPublicKey()
	if err != nil {
		return nil, fmt.Errorf("identity: backup key: %w", err)
	}
	ok, err := jose.Verify(compact, pub)
	if err != nil {
		return nil, fmt.Errorf("identity: verify backup: %w", err)
	}
	if !ok {
		return nil, jose.ErrBadSignature
	}

	thumbprint, err := header.JWK.Thumbprint()
	if err != nil {
		return nil, fmt.Errorf("identity: thumbprint: %w", err)
	}

	signingJWK, err := sagecrypto.UnwrapPrivate(payload.Record.ID.Private, password)
	if err != nil {
		return nil, fmt.Errorf("identity: unwrap signing key: %w", err)
	}
	signingPriv, err := signingJWK.ECDSAPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("identity: import signing key: %w", err)
	}
	storageJWK, err := sagecrypto.UnwrapPrivate(payload.Record.Storage.Private, password)
	if err != nil {
		return nil, fmt.Errorf("identity: unwrap storage key: %w", err)
	}
	storagePriv, err := storageJWK.ECDHPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("identity: import storage key: %w", err)
	}

	return &Manager{
		Thumbprint: thumbprint,
		Signing:    &sagecrypto.SigningKeyPair{Private: signingPriv},
		Storage:    &sagecrypto.AgreementKeyPair{Private: storagePriv},
	}, nil
}

func ptr[T any](v T) *T { return &v }
