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
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

// IVSize is the length in bytes of the random nonce every AES-GCM
// call in this package expects. Never reuse an IV under the same key.
const IVSize = 12

// NewIV draws a fresh random 12-byte nonce from the CSPRNG.
func NewIV() ([]byte, error) {
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("crypto: generate iv: %w", err)
	}
	return iv, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: new AES cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// AESGCMEncrypt encrypts pt under key with the given 12-byte iv,
// appending the 16-byte authentication tag to the returned ciphertext.
func AESGCMEncrypt(key, iv, pt []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, iv, pt, nil), nil
}

// AESGCMDecrypt decrypts ct (produced by AESGCMEncrypt) under key and
// iv, returning ErrBadCiphertext if the authentication tag does not
// verify.
func AESGCMDecrypt(key, iv, ct []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, iv, ct, nil)
	if err != nil {
		return nil, ErrBadCiphertext
	}
	return pt, nil
}
