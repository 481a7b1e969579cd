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

// Package boltstore implements storage.Store on top of go.etcd.io/bbolt,
// the on-disk analogue of storage/memory for long-lived clients that
// need their identity, invitations and thread entries to survive
// restarts.
package boltstore

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"thornmark/storage"
)

var (
	kvBucket   = []byte("kv")
	listBucket = []byte("lists")
)

// Store is a storage.Store backed by a single bbolt database file.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the bbolt database at path and
// returns a ready-to-use Store. Callers must call Close when done.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(kvBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(listBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltstore: init buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ storage.Store = (*Store)(nil)

func (s *Store) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	var out json.RawMessage
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(kvBucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		out = make(json.RawMessage, len(v))
		copy(out, v)
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("boltstore: get %s: %w", key, err)
	}
	return out, out != nil, nil
}

func (s *Store) Set(_ context.Context, key string, value json.RawMessage) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(kvBucket).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("boltstore: set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Has(_ context.Context, key string) (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		ok = tx.Bucket(kvBucket).Get([]byte(key)) != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("boltstore: has %s: %w", key, err)
	}
	return ok, nil
}

// Append stores list entries as a nested bucket keyed by listKey, with
// each member keyed by its monotonically increasing sequence number so
// iteration order matches insertion order.
func (s *Store) Append(_ context.Context, listKey string, value json.RawMessage) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		lists := tx.Bucket(listBucket)
		b, err := lists.CreateBucketIfNotExists([]byte(listKey))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), value)
	})
	if err != nil {
		return fmt.Errorf("boltstore: append %s: %w", listKey, err)
	}
	return nil
}

func (s *Store) List(_ context.Context, listKey string) ([]json.RawMessage, error) {
	out := []json.RawMessage{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(listBucket).Bucket([]byte(listKey))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			cp := make(json.RawMessage, len(v))
			copy(cp, v)
			out = append(out, cp)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: list %s: %w", listKey, err)
	}
	return out, nil
}

func seqKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%020d", seq))
}
