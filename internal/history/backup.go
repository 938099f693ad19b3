// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

package history

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/toeirei/clipvault/internal/model"
)

// backupFormatVersion identifies the snapshot layout.
const backupFormatVersion = 1

// BackupData is the serialized snapshot. Entries carry ciphertext exactly
// as stored; a backup never contains plaintext and is only readable with
// the originating key.
type BackupData struct {
	Version    int           `json:"version"`
	ExportedAt time.Time     `json:"exported_at"`
	Entries    []model.Entry `json:"entries"`
}

// Export writes a zstd-compressed JSON snapshot of all entries to w.
func (r *Repository) Export(w io.Writer) error {
	entries, err := r.store.ListEntries()
	if err != nil {
		return fmt.Errorf("history: exporting entries: %w", err)
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("history: creating compressor: %w", err)
	}
	backup := BackupData{
		Version:    backupFormatVersion,
		ExportedAt: r.now(),
		Entries:    entries,
	}
	if err := json.NewEncoder(zw).Encode(&backup); err != nil {
		_ = zw.Close()
		return fmt.Errorf("history: encoding backup: %w", err)
	}
	return zw.Close()
}

// Import restores entries from a snapshot produced by Export, skipping
// fingerprints already present. Returns the number of entries added.
func (r *Repository) Import(reader io.Reader) (int, error) {
	zr, err := zstd.NewReader(reader)
	if err != nil {
		return 0, fmt.Errorf("history: opening backup: %w", err)
	}
	defer zr.Close()

	var backup BackupData
	if err := json.NewDecoder(zr).Decode(&backup); err != nil {
		return 0, fmt.Errorf("history: decoding backup: %w", err)
	}
	if backup.Version != backupFormatVersion {
		return 0, fmt.Errorf("history: unsupported backup version %d", backup.Version)
	}
	inserted, err := r.store.ImportEntries(backup.Entries)
	if err != nil {
		return 0, fmt.Errorf("history: importing entries: %w", err)
	}
	return inserted, nil
}
