// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

// Package fingerprint computes the content-identity digest used for
// deduplication. The digest is derived only from the canonical plain-text
// form, so a rich capture and a plain capture of the same text collapse to
// the same identity. It is never used as encryption material.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Of returns the hex-encoded SHA-256 digest of the UTF-8 bytes of text.
func Of(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Short returns a truncated digest prefix suitable for log lines.
func Short(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
