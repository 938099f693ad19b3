// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

// Package crypto owns the symmetric key lifecycle and all authenticated
// encryption in ClipVault. Every persisted ciphertext is produced and
// consumed through the Engine; no other component touches key material
// or sealed blobs directly.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/toeirei/clipvault/internal/keystore"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// ErrCiphertextInvalid is returned by Open when the authentication tag
// does not verify or the blob is malformed. Open fails closed: it never
// returns partial or altered plaintext.
var ErrCiphertextInvalid = errors.New("crypto: ciphertext invalid or tampered")

// Engine performs AES-256-GCM seal/open with a single long-lived key.
// The key is loaded from the secret store on first use, or generated and
// persisted if none exists. After initialization the cached AEAD is safe
// for unsynchronized concurrent use.
type Engine struct {
	store keystore.Store

	mu   sync.Mutex   // serializes first-time load-or-generate only
	aead atomic.Value // cipher.AEAD once initialized
}

// NewEngine returns an Engine backed by the given secret store. The key
// is not touched until the first operation (or an explicit Init).
func NewEngine(store keystore.Store) *Engine {
	return &Engine{store: store}
}

// Init forces key initialization. Callers that want to treat a missing or
// unreachable secret store as fatal at startup should call this before
// starting capture.
func (e *Engine) Init() error {
	_, err := e.cipher()
	return err
}

// cipher returns the cached AEAD, initializing it on first call. After
// initialization the cached value is read without locking, so steady-state
// Seal/Open calls never contend. The mutex only makes generate-or-load
// single-writer: concurrent first callers cannot race into generating two
// different keys.
func (e *Engine) cipher() (cipher.AEAD, error) {
	if v := e.aead.Load(); v != nil {
		return v.(cipher.AEAD), nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if v := e.aead.Load(); v != nil {
		return v.(cipher.AEAD), nil
	}

	key, err := e.store.Get()
	if errors.Is(err, keystore.ErrNotFound) {
		key = make([]byte, KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("crypto: generating key: %w", err)
		}
		// Persist before first use so a crash cannot strand ciphertext
		// sealed under a key that was never stored.
		if err := e.store.Set(key); err != nil {
			return nil, fmt.Errorf("crypto: storing new key: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("crypto: loading key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: stored key has length %d, want %d", keystore.ErrUnavailable, len(key), KeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: %w", err)
	}
	e.aead.Store(aead)
	return aead, nil
}

// Seal encrypts plaintext and returns an opaque blob laid out as
// nonce || ciphertext+tag. A fresh random nonce is generated per call.
func (e *Engine) Seal(plaintext []byte) ([]byte, error) {
	aead, err := e.cipher()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: generating nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a blob produced by Seal, verifying its authentication
// tag. Any tampering or truncation yields ErrCiphertextInvalid.
func (e *Engine) Open(blob []byte) ([]byte, error) {
	aead, err := e.cipher()
	if err != nil {
		return nil, err
	}
	if len(blob) < aead.NonceSize() {
		return nil, ErrCiphertextInvalid
	}
	nonce, sealed := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrCiphertextInvalid
	}
	return plaintext, nil
}
