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

package crypto

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
)

// JWK is a JSON Web Key restricted to the EC/P-384 keys thornmark
// uses for both signing (ECDSA) and key agreement (ECDH). The shape
// matches RFC 7518 section 6.2; kty is always "EC" and crv is always
// "P-384".
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
	D   string `json:"d,omitempty"` // present only for private JWKs
}

const p384Crv = "P-384"

func coordToB64(v *big.Int) string {
	size := (elliptic.P384().Params().BitSize + 7) / 8
	b := v.Bytes()
	if len(b) < size {
		padded := make([]byte, size)
		copy(padded[size-len(b):], b)
		b = padded
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func b64ToBig(s string) (*big.Int, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("jwk: decode coordinate: %w", err)
	}
	return new(big.Int).SetBytes(b), nil
}

// JWKFromECDSAPublic exports the public half of an ECDSA P-384 key.
func JWKFromECDSAPublic(pub *ecdsa.PublicKey) JWK {
	return JWK{Kty: "EC", Crv: p384Crv, X: coordToB64(pub.X), Y: coordToB64(pub.Y)}
}

// JWKFromECDSAPrivate exports a full ECDSA P-384 keypair.
func JWKFromECDSAPrivate(priv *ecdsa.PrivateKey) JWK {
	jwk := JWKFromECDSAPublic(&priv.PublicKey)
	jwk.D = coordToB64(priv.D)
	return jwk
}

// ECDSAPublicKey imports the public half of a JWK as an ECDSA key,
// usable only for signature verification.
func (j JWK) ECDSAPublicKey() (*ecdsa.PublicKey, error) {
	if j.Kty != "EC" || j.Crv != p384Crv {
		return nil, fmt.Errorf("%w: kty=%s crv=%s", ErrInvalidJWK, j.Kty, j.Crv)
	}
	x, err := b64ToBig(j.X)
	if err != nil {
		return nil, err
	}
	y, err := b64ToBig(j.Y)
	if err != nil {
		return nil, err
	}
	return &ecdsa.PublicKey{Curve: elliptic.P384(), X: x, Y: y}, nil
}

// ECDSAPrivateKey imports a full ECDSA P-384 keypair from a JWK that
// carries the "d" member.
func (j JWK) ECDSAPrivateKey() (*ecdsa.PrivateKey, error) {
	if j.D == "" {
		return nil, fmt.Errorf("%w: missing private component", ErrInvalidJWK)
	}
	pub, err := j.ECDSAPublicKey()
	if err != nil {
		return nil, err
	}
	d, err := b64ToBig(j.D)
	if err != nil {
		return nil, err
	}
	return &ecdsa.PrivateKey{PublicKey: *pub, D: d}, nil
}

// JWKFromECDHPublic exports the public half of an ECDH P-384 key.
func JWKFromECDHPublic(pub *ecdh.PublicKey) (JWK, error) {
	ecdsaPub, err := ecdhToECDSAPublic(pub)
	if err != nil {
		return JWK{}, err
	}
	return JWKFromECDSAPublic(ecdsaPub), nil
}

// JWKFromECDHPrivate exports a full ECDH P-384 keypair.
func JWKFromECDHPrivate(priv *ecdh.PrivateKey) (JWK, error) {
	jwk, err := JWKFromECDHPublic(priv.PublicKey())
	if err != nil {
		return JWK{}, err
	}
	d := new(big.Int).SetBytes(priv.Bytes())
	jwk.D = coordToB64(d)
	return jwk, nil
}

// ECDHPublicKey imports the public half of a JWK as an ECDH key,
// usable only for shared-secret derivation.
func (j JWK) ECDHPublicKey() (*ecdh.PublicKey, error) {
	ecdsaPub, err := j.ECDSAPublicKey()
	if err != nil {
		return nil, err
	}
	return ecdsaPub.ECDH()
}

// ECDHPrivateKey imports a full ECDH P-384 keypair from a JWK that
// carries the "d" member.
func (j JWK) ECDHPrivateKey() (*ecdh.PrivateKey, error) {
	if j.D == "" {
		return nil, fmt.Errorf("%w: missing private component", ErrInvalidJWK)
	}
	d, err := b64ToBig(j.D)
	if err != nil {
		return nil, err
	}
	size := (elliptic.P384().Params().BitSize + 7) / 8
	db := d.Bytes()
	if len(db) < size {
		padded := make([]byte, size)
		copy(padded[size-len(db):], db)
		db = padded
	}
	return ecdh.P384().NewPrivateKey(db)
}

func ecdhToECDSAPublic(pub *ecdh.PublicKey) (*ecdsa.PublicKey, error) {
	raw := pub.Bytes()
	// Uncompressed SEC1 point: 0x04 || X || Y
	size := (elliptic.P384().Params().BitSize + 7) / 8
	if len(raw) != 1+2*size || raw[0] != 0x04 {
		return nil, fmt.Errorf("%w: malformed ECDH public key", ErrInvalidJWK)
	}
	x := new(big.Int).SetBytes(raw[1 : 1+size])
	y := new(big.Int).SetBytes(raw[1+size:])
	return &ecdsa.PublicKey{Curve: elliptic.P384(), X: x, Y: y}, nil
}

// PublicOnly strips the private "d" member, leaving a JWK safe to
// embed in a JWS header or hand to a counterparty.
func (j JWK) PublicOnly() JWK {
	j.D = ""
	return j
}

// Thumbprint computes the RFC 7638 canonical SHA-256 thumbprint of
// the JWK's public members, base64url-encoded without padding. Only
// {crv, kty, x, y} participate, in that lexicographic order, with no
// surrounding whitespace, matching the spec's canonicalization rule
// for EC keys exactly.
func (j JWK) Thumbprint() (string, error) {
	if j.Kty != "EC" || j.Crv == "" || j.X == "" || j.Y == "" {
		return "", fmt.Errorf("%w: incomplete key for thumbprint", ErrInvalidJWK)
	}
	ordered := []struct {
		name  string
		value string
	}{
		{"crv", j.Crv},
		{"kty", j.Kty},
		{"x", j.X},
		{"y", j.Y},
	}
	buf := []byte{'{'}
	for i, kv := range ordered {
		if i > 0 {
			buf = append(buf, ',')
		}
		valueJSON, err := json.Marshal(kv.value)
		if err != nil {
			return "", fmt.Errorf("jwk: marshal thumbprint member: %w", err)
		}
		buf = append(buf, fmt.Sprintf("%q:%s", kv.name, valueJSON)...)
	}
	buf = append(buf, '}')
	sum := sha256.Sum256(buf)
	return base64.RawURLEncoding.EncodeToString(sum[:]), nil
}
