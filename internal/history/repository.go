// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

// Package history implements the entry repository: dedup-aware saving,
// listing, search, pin/delete lifecycle and the bounded-retention
// eviction policy. It is the only component that moves plaintext through
// the crypto engine; the storage layer below it only ever sees
// ciphertext.
package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/toeirei/clipvault/internal/crypto"
	"github.com/toeirei/clipvault/internal/db"
	"github.com/toeirei/clipvault/internal/fingerprint"
	"github.com/toeirei/clipvault/internal/logging"
	"github.com/toeirei/clipvault/internal/model"
)

// Repository mediates all reads and writes of persisted entries.
type Repository struct {
	store  db.Store
	engine *crypto.Engine

	// maxUnpinned is the eviction ceiling for unpinned entries.
	maxUnpinned int

	// now is swappable for tests.
	now func() time.Time
}

// New returns a Repository enforcing the given unpinned-entry ceiling.
func New(store db.Store, engine *crypto.Engine, maxUnpinned int) *Repository {
	return &Repository{
		store:       store,
		engine:      engine,
		maxUnpinned: maxUnpinned,
		now:         time.Now,
	}
}

// Save performs the dedup-aware upsert. A fingerprint hit updates
// last_seen_at and returns the stored entry unchanged in content — a
// duplicate never overwrites ciphertext, even if the new candidate
// differs in formatting, and source_app keeps the first capturer. A miss
// encrypts the candidate, inserts a fresh entry and then enforces the
// eviction policy.
func (r *Repository) Save(c model.Candidate) (*model.Entry, error) {
	fp := fingerprint.Of(c.PlainText)

	existing, err := r.store.GetEntryByFingerprint(fp)
	if err != nil {
		return nil, fmt.Errorf("history: dedup lookup: %w", err)
	}
	if existing != nil {
		seen := r.now()
		if err := r.store.TouchEntry(existing.ID, seen); err != nil {
			return nil, fmt.Errorf("history: touching entry %s: %w", existing.ID, err)
		}
		existing.LastSeenAt = seen
		logging.Debugf("history: dedup hit for %s (entry %s)", fingerprint.Short(fp), existing.ID)
		return existing, nil
	}

	sealedPlain, err := r.engine.Seal([]byte(c.PlainText))
	if err != nil {
		return nil, fmt.Errorf("history: sealing plain text: %w", err)
	}
	var sealedRich []byte
	if len(c.RichBytes) > 0 {
		sealedRich, err = r.engine.Seal(c.RichBytes)
		if err != nil {
			return nil, fmt.Errorf("history: sealing rich content: %w", err)
		}
	}

	now := r.now()
	entry := &model.Entry{
		ID:             uuid.NewString(),
		CreatedAt:      now,
		LastSeenAt:     now,
		Fingerprint:    fp,
		EncryptedPlain: sealedPlain,
		EncryptedRich:  sealedRich,
		SourceApp:      c.SourceApp,
	}
	if err := r.store.InsertEntry(entry); err != nil {
		return nil, fmt.Errorf("history: inserting entry: %w", err)
	}
	r.evict()
	return entry, nil
}

// evict enforces the unpinned ceiling after a successful insert. Eviction
// failures are logged, not propagated: the capture itself succeeded.
func (r *Repository) evict() {
	if r.maxUnpinned <= 0 {
		return
	}
	deleted, err := r.store.PruneUnpinned(r.maxUnpinned)
	if err != nil {
		logging.Errorf("history: eviction failed: %v", err)
		return
	}
	if deleted > 0 {
		logging.Debugf("history: evicted %d entries over ceiling %d", deleted, r.maxUnpinned)
	}
}

// List returns all entries, pinned first, newest first within each group.
func (r *Repository) List() ([]model.Entry, error) {
	return r.store.ListEntries()
}

// Search decrypts each entry's plain representation and keeps those whose
// text contains query case-insensitively. Entries that fail to decrypt
// are skipped and logged so one corrupt record cannot hide the rest.
func (r *Repository) Search(query string) ([]model.Entry, error) {
	entries, err := r.store.ListEntries()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	var out []model.Entry
	for _, e := range entries {
		text, err := r.engine.Open(e.EncryptedPlain)
		if err != nil {
			logging.Warnf("history: skipping entry %s in search: %v", e.ID, err)
			continue
		}
		if strings.Contains(strings.ToLower(string(text)), needle) {
			out = append(out, e)
		}
	}
	return out, nil
}

// PlainText decrypts an entry's plain representation.
func (r *Repository) PlainText(id string) (string, error) {
	e, err := r.mustGet(id)
	if err != nil {
		return "", err
	}
	text, err := r.engine.Open(e.EncryptedPlain)
	if err != nil {
		return "", fmt.Errorf("history: decrypting entry %s: %w", id, err)
	}
	return string(text), nil
}

// TogglePin flips an entry's pinned flag and returns the new state.
func (r *Repository) TogglePin(id string) (bool, error) {
	e, err := r.mustGet(id)
	if err != nil {
		return false, err
	}
	pinned := !e.Pinned
	if err := r.store.SetEntryPinned(id, pinned); err != nil {
		return false, fmt.Errorf("history: toggling pin on %s: %w", id, err)
	}
	return pinned, nil
}

// Delete removes one entry.
func (r *Repository) Delete(id string) error {
	return r.store.DeleteEntry(id)
}

// ClearUnpinned removes all unpinned entries.
func (r *Repository) ClearUnpinned() error {
	return r.store.ClearUnpinned()
}

// ClearAll removes every entry, pinned included.
func (r *Repository) ClearAll() error {
	return r.store.ClearAll()
}

// WriteOut decrypts the content to place back on the clipboard: the rich
// representation when one was captured, the plain text otherwise. This is
// the inverse of capture, exposed to the UI and never used by the
// pipeline itself.
func (r *Repository) WriteOut(id string) (isRich bool, data []byte, err error) {
	e, err := r.mustGet(id)
	if err != nil {
		return false, nil, err
	}
	if e.HasRich() {
		data, err := r.engine.Open(e.EncryptedRich)
		if err != nil {
			return false, nil, fmt.Errorf("history: decrypting rich content of %s: %w", id, err)
		}
		return true, data, nil
	}
	data, err = r.engine.Open(e.EncryptedPlain)
	if err != nil {
		return false, nil, fmt.Errorf("history: decrypting entry %s: %w", id, err)
	}
	return false, data, nil
}

func (r *Repository) mustGet(id string) (*model.Entry, error) {
	e, err := r.store.GetEntry(id)
	if err != nil {
		return nil, fmt.Errorf("history: loading entry %s: %w", id, err)
	}
	if e == nil {
		return nil, fmt.Errorf("history: no entry with id %s", id)
	}
	return e, nil
}
