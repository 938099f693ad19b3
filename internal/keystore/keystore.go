// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

// Package keystore abstracts the platform secret store that holds the
// long-lived encryption key. The key must only be readable while the
// device is unlocked and must never be replicated off-device; backends
// are responsible for honoring that contract.
package keystore

import "errors"

// ErrNotFound is returned by Get when no key has been stored yet. It is
// the signal for the crypto engine to generate a fresh key.
var ErrNotFound = errors.New("keystore: no key stored")

// ErrUnavailable is returned when the secret store itself cannot be
// reached (missing permissions, unreadable file, locked device). This is
// fatal at startup: without a key the vault cannot operate.
var ErrUnavailable = errors.New("keystore: secret store unavailable")

// Store holds exactly one symmetric key.
type Store interface {
	// Get returns the stored key bytes, ErrNotFound if none exist, or an
	// error wrapping ErrUnavailable if the store cannot be read.
	Get() ([]byte, error)
	// Set persists the key bytes, overwriting any previous key.
	Set(key []byte) error
}
