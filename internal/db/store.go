// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"time"

	"github.com/toeirei/clipvault/internal/model"
)

// Store defines the interface for all database operations in ClipVault.
// This allows for multiple database backends to be implemented. Every
// mutation commits as a single transaction, so concurrent readers see
// either the pre-write or post-write state, never a torn write.
type Store interface {
	// InsertEntry persists a new entry. Returns ErrDuplicate if an entry
	// with the same fingerprint already exists; the fingerprint unique
	// index is enforced by the schema, not application logic.
	InsertEntry(e *model.Entry) error
	// GetEntry returns the entry with the given id, or nil if absent.
	GetEntry(id string) (*model.Entry, error)
	// GetEntryByFingerprint returns the entry with the given fingerprint,
	// or nil if absent.
	GetEntryByFingerprint(fp string) (*model.Entry, error)
	// TouchEntry updates last_seen_at for a dedup hit. Content columns
	// are never written.
	TouchEntry(id string, seenAt time.Time) error
	// SetEntryPinned sets the pinned flag.
	SetEntryPinned(id string, pinned bool) error
	// DeleteEntry removes one entry.
	DeleteEntry(id string) error
	// ListEntries returns all entries, pinned first, each group ordered
	// by last_seen_at descending.
	ListEntries() ([]model.Entry, error)
	// CountUnpinned returns the number of unpinned entries.
	CountUnpinned() (int, error)
	// PruneUnpinned deletes the oldest unpinned entries (last_seen_at
	// ascending) until at most keep remain, in a single transaction.
	// Pinned entries are never touched. Returns the number deleted.
	PruneUnpinned(keep int) (int, error)
	// ClearUnpinned deletes all unpinned entries.
	ClearUnpinned() error
	// ClearAll deletes every entry, pinned included.
	ClearAll() error
	// ImportEntries inserts entries in one transaction, skipping any
	// whose fingerprint is already present.
	ImportEntries(entries []model.Entry) (int, error)
	// Close releases the underlying database handle.
	Close() error
}
