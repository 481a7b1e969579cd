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
	"crypto/rand"
	"fmt"
	"math/big"
)

// maxMessageID is 2^53/2, the ceiling the spec places on message ids
// so they round-trip through any JSON number representation without
// precision loss.
var maxMessageID = new(big.Int).Lsh(big.NewInt(1), 52)

// randomMessageID returns a random hex-encoded integer in [0, maxMessageID).
func randomMessageID() (string, error) {
	n, err := rand.Int(rand.Reader, maxMessageID)
	if err != nil {
		return "", fmt.Errorf("thread: generate message id: %w", err)
	}
	return n.Text(16), nil
}

// nextMessageID parses hex, increments by one, and re-encodes as hex.
// It never wraps: exceeding maxMessageID is ErrMessageIDOverflow, per
// the spec's adopted "no wrap; fail if exceeded" policy.
func nextMessageID(hex string) (string, error) {
	n, ok := new(big.Int).SetString(hex, 16)
	if !ok {
		return "", fmt.Errorf("%w: invalid hex message id %q", ErrMalformedEnvelope, hex)
	}
	n.Add(n, big.NewInt(1))
	if n.Cmp(maxMessageID) >= 0 {
		return "", ErrMessageIDOverflow
	}
	return n.Text(16), nil
}

// messageIDEquals reports whether two hex-encoded message ids denote
// the same integer value, tolerating differing leading-zero padding.
func messageIDEquals(a, b string) bool {
	an, aok := new(big.Int).SetString(a, 16)
	bn, bok := new(big.Int).SetString(b, 16)
	return aok && bok && an.Cmp(bn) == 0
}
