// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model defines the core data types shared across ClipVault.
package model

import "time"

// Entry is a single persisted clipboard capture. Content is stored only in
// encrypted form; the plaintext exists in memory during capture and on
// explicit decryption, never at rest.
type Entry struct {
	ID         string
	CreatedAt  time.Time
	LastSeenAt time.Time
	Pinned     bool

	// Fingerprint is the hex-encoded SHA-256 digest of the canonical
	// plain-text form. Unique across all entries.
	Fingerprint string

	// EncryptedPlain is the sealed plain-text representation. Always set.
	EncryptedPlain []byte
	// EncryptedRich is the sealed rich/formatted representation, if one
	// was captured.
	EncryptedRich []byte

	// SourceApp is the stable identifier of the application that owned
	// the clipboard at capture time, if known. On dedup hits it keeps the
	// first capturer's identity.
	SourceApp string
}

// HasRich reports whether a rich representation was captured.
func (e Entry) HasRich() bool {
	return len(e.EncryptedRich) > 0
}

// Candidate is an unencrypted capture candidate produced by the content
// extractor and consumed by the repository. It never leaves memory.
type Candidate struct {
	PlainText string
	RichBytes []byte
	SourceApp string
}
