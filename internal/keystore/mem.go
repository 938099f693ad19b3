// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

package keystore

import "sync"

// MemStore is an in-memory Store used by tests and as a stand-in where no
// persistent secret store is wanted. Safe for concurrent use.
type MemStore struct {
	mu  sync.Mutex
	key []byte
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Get returns a copy of the stored key or ErrNotFound.
func (s *MemStore) Get() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key == nil {
		return nil, ErrNotFound
	}
	out := make([]byte, len(s.key))
	copy(out, s.key)
	return out, nil
}

// Set stores a copy of key so the caller's slice is not retained.
func (s *MemStore) Set(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = make([]byte, len(key))
	copy(s.key, key)
	return nil
}
