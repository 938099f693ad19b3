// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

// Package clipboard abstracts access to the system clipboard and selects
// the capture candidate from the available representations.
package clipboard

// Snapshot is the set of representations the clipboard held at one
// observation. Either field may be empty.
type Snapshot struct {
	// Plain is the plain-text representation, if present.
	Plain string
	// Rich is the rich/formatted representation (HTML bytes), if present.
	Rich []byte
}

// Clipboard is the system clipboard as seen by the capture pipeline.
type Clipboard interface {
	// ChangeCount returns a counter that increases whenever the clipboard
	// contents change. Values are only compared for inequality.
	ChangeCount() (uint64, error)
	// Read returns the current representations.
	Read() (Snapshot, error)
	// WritePlain places plain text onto the clipboard.
	WritePlain(text string) error
	// WriteRich places a rich representation onto the clipboard.
	WriteRich(data []byte) error
}

// SourceAppProvider reports the frontmost application at capture time.
// The portable implementation reports nothing; platform frontends can
// supply a real one.
type SourceAppProvider interface {
	// FrontmostAppID returns a stable application identifier, or "" if
	// the identity cannot be determined.
	FrontmostAppID() string
}

// NoSourceApp is a SourceAppProvider that never knows the source.
type NoSourceApp struct{}

// FrontmostAppID always returns "".
func (NoSourceApp) FrontmostAppID() string { return "" }
