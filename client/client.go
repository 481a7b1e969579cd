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

// Package client wires identity, vault, and thread into the handful of
// operations an external caller (UI, transport) needs, the way the
// teacher's top-level Core wires crypto, DID, and verification behind
// one entry point. Storage is injected, never owned: the Client holds
// a reference to the storage.Store the host supplies and never assumes
// any backend-specific behavior beyond the storage.Store contract.
package client

import (
	"context"
	"fmt"
	"time"

	"thornmark/config"
	"thornmark/identity"
	"thornmark/internal/telemetry"
	"thornmark/storage"
	"thornmark/thread"
)

// Client is a loaded identity plus the thread engine operating over
// it. Operations on the same thread must be serialized by the caller;
// the Client enforces no internal ordering beyond what its ReplayGuard
// provides (see thread.ReplayGuard).
type Client struct {
	id     *identity.Manager
	store  storage.Store
	engine *thread.Engine
	log    telemetry.Logger
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithLogger overrides the default telemetry logger.
func WithLogger(l telemetry.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithReplayGuard enables thread-level message-id deduplication. By
// default a Client accepts replayed messages at-least-once per the base
// spec; a guard hardens that to at-most-once logging.
func WithReplayGuard(guard *thread.ReplayGuard) Option {
	return func(c *Client) { c.engine = thread.New(c.id, c.store, guard) }
}

func newClient(id *identity.Manager, store storage.Store, opts []Option) *Client {
	c := &Client{id: id, store: store, log: telemetry.Default()}
	c.engine = thread.New(id, store, nil)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate creates a fresh identity under store and returns a Client
// over it. See identity.Generate.
func Generate(ctx context.Context, store storage.Store, password string, opts ...Option) (*Client, error) {
	start := time.Now()
	id, err := identity.Generate(ctx, store, password)
	recordOutcome("generate", start, err)
	if err != nil {
		return nil, fmt.Errorf("client: generate identity: %w", err)
	}
	c := newClient(id, store, opts)
	c.log.Info("identity generated", telemetry.String("thumbprint", id.Thumbprint))
	return c, nil
}

// Load loads an existing identity from store and returns a Client over
// it. See identity.Load.
func Load(ctx context.Context, store storage.Store, thumbprint, password string, opts ...Option) (*Client, error) {
	start := time.Now()
	id, err := identity.Load(ctx, store, thumbprint, password)
	recordOutcome("load", start, err)
	if err != nil {
		return nil, fmt.Errorf("client: load identity: %w", err)
	}
	c := newClient(id, store, opts)
	c.log.Info("identity loaded", telemetry.String("thumbprint", id.Thumbprint))
	return c, nil
}

// FromConfig builds the storage.Store cfg.Storage describes and
// Generate's or Load's an identity over it depending on whether one
// already exists under thumbprint. An empty thumbprint always
// generates a fresh identity.
func FromConfig(ctx context.Context, cfg *config.Config, thumbprint, password string, opts ...Option) (*Client, error) {
	store, err := storeFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if thumbprint == "" {
		return Generate(ctx, store, password, opts...)
	}
	has, err := store.Has(ctx, "identity:"+thumbprint)
	if err != nil {
		return nil, fmt.Errorf("client: check existing identity: %w", err)
	}
	if !has {
		return Generate(ctx, store, password, opts...)
	}
	return Load(ctx, store, thumbprint, password, opts...)
}

// Thumbprint is this client's stable identity id.
func (c *Client) Thumbprint() string { return c.id.Thumbprint }

// Close releases the client's unwrapped private key material.
func (c *Client) Close() { c.id.Close() }

// MakeBackup re-wraps the client's identity under password and signs a
// self-authenticating backup JWS. See identity.Manager.MakeBackup.
func (c *Client) MakeBackup(password string) (string, error) {
	start := time.Now()
	backup, err := c.id.MakeBackup(password)
	recordOutcome("make_backup", start, err)
	return backup, err
}

// CreateInvitation issues a new signed invitation. See
// thread.Engine.CreateInvitation.
func (c *Client) CreateInvitation(ctx context.Context, opts thread.InvitationOptions) (string, error) {
	start := time.Now()
	compact, err := c.engine.CreateInvitation(ctx, opts)
	c.observe("create_invitation", start, err)
	return compact, err
}

// ReplyToInvitation replies to a counterparty's invitation, starting a
// new thread. See thread.Engine.ReplyToInvitation.
func (c *Client) ReplyToInvitation(ctx context.Context, signedInvite string, msg []byte) (string, error) {
	start := time.Now()
	compact, err := c.engine.ReplyToInvitation(ctx, signedInvite, msg)
	c.observe("reply_to_invitation", start, err)
	return compact, err
}

// ReplyToThread sends msg on an already-established thread. See
// thread.Engine.ReplyToThread.
func (c *Client) ReplyToThread(ctx context.Context, threadThumbprint string, msg []byte, selfSign bool) (string, error) {
	start := time.Now()
	compact, err := c.engine.ReplyToThread(ctx, threadThumbprint, msg, selfSign)
	c.observe("reply_to_thread", start, err)
	return compact, err
}

// AppendThread ingests a message, resolving its thread automatically
// when threadThumbprint is nil. See thread.Engine.AppendThread.
func (c *Client) AppendThread(ctx context.Context, jws string, threadThumbprint *string) (*thread.AppendResult, error) {
	start := time.Now()
	result, err := c.engine.AppendThread(ctx, jws, threadThumbprint)
	c.observe("append_thread", start, err)
	return result, err
}

// Threads lists the thread thumbprints this client has registered.
func (c *Client) Threads(ctx context.Context) ([]string, error) {
	raw, err := c.store.List(ctx, "threads:"+c.id.Thumbprint)
	if err != nil {
		return nil, fmt.Errorf("client: list threads: %w", err)
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		var s string
		if err := jsonUnmarshalString(v, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (c *Client) observe(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	telemetry.ThreadOperations.WithLabelValues(operation, outcome).Inc()
	telemetry.ThreadOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		c.log.Warn("thread operation failed",
			telemetry.String("operation", operation),
			telemetry.String("correlation_id", telemetry.CorrelationID()),
			telemetry.Error(err))
	}
}

func recordOutcome(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	telemetry.IdentityOperations.WithLabelValues(operation, outcome).Inc()
	_ = start
}
