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

	"thornmark/jose"
)

// CreateInvitation implements spec.md §4.5.1: it mints a fresh thread
// keypair (self-encrypting the private half for later recovery),
// builds and signs an Invitation carrying a random message-id and the
// new keypair's public half, and stores the signed invitation under
// invitation:<thumbprint-of-epk> for later lookup by a replier's "re".
func (e *Engine) CreateInvitation(ctx context.Context, opts InvitationOptions) (string, error) {
	keys, err := e.makeThreadKeys(ctx)
	if err != nil {
		return "", err
	}

	messageID, err := randomMessageID()
	if err != nil {
		return "", err
	}
	epkPub, err := keys.KeyPair.PublicJWK()
	if err != nil {
		return "", fmt.Errorf("thread: export invitation epk: %w", err)
	}

	payload := InvitationPayload{
		MessageID: messageID,
		EPK:       epkPub,
		Note:      opts.Note,
		Nickname:  opts.Nickname,
	}
	header := jose.Header{JWK: ptrJWK(e.id.Signing.PublicJWK())}
	compact, err := jose.Sign(header, payload, e.id.Signing)
	if err != nil {
		return "", fmt.Errorf("thread: sign invitation: %w", err)
	}

	if err := e.store.Set(ctx, invitationKey(keys.Thumbprint), json.RawMessage(mustQuote(compact))); err != nil {
		return "", fmt.Errorf("thread: persist invitation: %w", err)
	}
	return compact, nil
}

// ReplyToInvitation implements spec.md §4.5.2: it verifies the
// inviter's signed invitation, starts a fresh thread on the replier's
// side keyed by a new ephemeral keypair, and sends msg as the thread's
// first, self-signed reply.
func (e *Engine) ReplyToInvitation(ctx context.Context, signedInvite string, msg []byte) (string, error) {
	header, payload, err := jose.Parse[InvitationPayload](signedInvite, nil)
	if err != nil {
		return "", fmt.Errorf("thread: parse invitation: %w", err)
	}
	if header.JWK == nil {
		return "", fmt.Errorf("thread: invitation missing embedded key: %w", ErrMalformedEnvelope)
	}

	keys, err := e.makeThreadKeys(ctx)
	if err != nil {
		return "", err
	}
	if err := e.startThread(ctx, signedInvite, payload.EPK, *header.JWK, payload.MessageID, keys.Thumbprint); err != nil {
		return "", err
	}
	return e.ReplyToThread(ctx, keys.Thumbprint, msg, true)
}
