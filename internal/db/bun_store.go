// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/toeirei/clipvault/internal/model"
)

// EntryModel maps the `entries` table for Bun queries.
type EntryModel struct {
	bun.BaseModel `bun:"table:entries"`

	ID             string         `bun:"id,pk"`
	CreatedAt      time.Time      `bun:"created_at,notnull"`
	LastSeenAt     time.Time      `bun:"last_seen_at,notnull"`
	Pinned         bool           `bun:"pinned,notnull"`
	Fingerprint    string         `bun:"fingerprint,notnull"`
	EncryptedPlain []byte         `bun:"encrypted_plain,notnull"`
	EncryptedRich  []byte         `bun:"encrypted_rich,nullzero"`
	SourceApp      sql.NullString `bun:"source_app"`
}

// BunStore is the Bun-backed implementation of the Store interface. All
// queries are dialect-agnostic, so one store serves SQLite, PostgreSQL
// and MySQL alike.
type BunStore struct {
	bun *bun.DB
}

// --- Mapping helpers (centralized conversions) ---

func entryModelToModel(m EntryModel) model.Entry {
	e := model.Entry{
		ID:             m.ID,
		CreatedAt:      m.CreatedAt,
		LastSeenAt:     m.LastSeenAt,
		Pinned:         m.Pinned,
		Fingerprint:    m.Fingerprint,
		EncryptedPlain: m.EncryptedPlain,
		EncryptedRich:  m.EncryptedRich,
	}
	if m.SourceApp.Valid {
		e.SourceApp = m.SourceApp.String
	}
	return e
}

func entryToEntryModel(e *model.Entry) EntryModel {
	m := EntryModel{
		ID:             e.ID,
		CreatedAt:      e.CreatedAt,
		LastSeenAt:     e.LastSeenAt,
		Pinned:         e.Pinned,
		Fingerprint:    e.Fingerprint,
		EncryptedPlain: e.EncryptedPlain,
		EncryptedRich:  e.EncryptedRich,
	}
	if e.SourceApp != "" {
		m.SourceApp = sql.NullString{String: e.SourceApp, Valid: true}
	}
	return m
}

// InsertEntry persists a new entry. The unique index on fingerprint turns
// concurrent double-inserts into ErrDuplicate instead of torn state.
func (s *BunStore) InsertEntry(e *model.Entry) error {
	ctx := context.Background()
	m := entryToEntryModel(e)
	if _, err := s.bun.NewInsert().Model(&m).Exec(ctx); err != nil {
		return MapDBError(err)
	}
	return nil
}

// GetEntry returns the entry with the given id, or nil if absent.
func (s *BunStore) GetEntry(id string) (*model.Entry, error) {
	ctx := context.Background()
	var m EntryModel
	err := s.bun.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	e := entryModelToModel(m)
	return &e, nil
}

// GetEntryByFingerprint returns the entry for a fingerprint, or nil.
func (s *BunStore) GetEntryByFingerprint(fp string) (*model.Entry, error) {
	ctx := context.Background()
	var m EntryModel
	err := s.bun.NewSelect().Model(&m).Where("fingerprint = ?", fp).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	e := entryModelToModel(m)
	return &e, nil
}

// TouchEntry updates last_seen_at only; content columns stay untouched.
func (s *BunStore) TouchEntry(id string, seenAt time.Time) error {
	ctx := context.Background()
	_, err := s.bun.NewUpdate().Model((*EntryModel)(nil)).
		Set("last_seen_at = ?", seenAt).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// SetEntryPinned sets the pinned flag.
func (s *BunStore) SetEntryPinned(id string, pinned bool) error {
	ctx := context.Background()
	_, err := s.bun.NewUpdate().Model((*EntryModel)(nil)).
		Set("pinned = ?", pinned).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// DeleteEntry removes one entry.
func (s *BunStore) DeleteEntry(id string) error {
	ctx := context.Background()
	_, err := s.bun.NewDelete().Model((*EntryModel)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

// ListEntries returns all entries, pinned first, newest first within each
// group.
func (s *BunStore) ListEntries() ([]model.Entry, error) {
	ctx := context.Background()
	var ms []EntryModel
	err := s.bun.NewSelect().Model(&ms).
		OrderExpr("pinned DESC, last_seen_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Entry, 0, len(ms))
	for _, m := range ms {
		out = append(out, entryModelToModel(m))
	}
	return out, nil
}

// CountUnpinned returns the number of unpinned entries.
func (s *BunStore) CountUnpinned() (int, error) {
	ctx := context.Background()
	return s.bun.NewSelect().Model((*EntryModel)(nil)).Where("pinned = ?", false).Count(ctx)
}

// PruneUnpinned deletes the oldest unpinned entries until at most keep
// remain. Runs in a single transaction so a concurrent reader never sees
// a partial prune.
func (s *BunStore) PruneUnpinned(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	ctx := context.Background()
	deleted := 0
	err := s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		count, err := tx.NewSelect().Model((*EntryModel)(nil)).Where("pinned = ?", false).Count(ctx)
		if err != nil {
			return err
		}
		if count <= keep {
			return nil
		}
		excess := count - keep

		var ids []string
		err = tx.NewSelect().Model((*EntryModel)(nil)).
			Column("id").
			Where("pinned = ?", false).
			OrderExpr("last_seen_at ASC").
			Limit(excess).
			Scan(ctx, &ids)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		res, err := tx.NewDelete().Model((*EntryModel)(nil)).Where("id IN (?)", bun.In(ids)).Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil {
			deleted = int(n)
		} else {
			deleted = len(ids)
		}
		return nil
	})
	return deleted, err
}

// ClearUnpinned deletes all unpinned entries.
func (s *BunStore) ClearUnpinned() error {
	ctx := context.Background()
	_, err := s.bun.NewDelete().Model((*EntryModel)(nil)).Where("pinned = ?", false).Exec(ctx)
	return err
}

// ClearAll deletes every entry, pinned included.
func (s *BunStore) ClearAll() error {
	ctx := context.Background()
	_, err := s.bun.NewDelete().Model((*EntryModel)(nil)).Where("1 = 1").Exec(ctx)
	return err
}

// ImportEntries restores entries in one transaction, skipping fingerprints
// that already exist. Returns the number actually inserted.
func (s *BunStore) ImportEntries(entries []model.Entry) (int, error) {
	ctx := context.Background()
	inserted := 0
	err := s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for i := range entries {
			exists, err := tx.NewSelect().Model((*EntryModel)(nil)).
				Where("fingerprint = ?", entries[i].Fingerprint).
				Exists(ctx)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			m := entryToEntryModel(&entries[i])
			if _, err := tx.NewInsert().Model(&m).Exec(ctx); err != nil {
				return MapDBError(err)
			}
			inserted++
		}
		return nil
	})
	return inserted, err
}

// Close releases the underlying database handle.
func (s *BunStore) Close() error {
	return s.bun.Close()
}
