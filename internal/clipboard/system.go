// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

package clipboard

import (
	"errors"
	"hash/fnv"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrNoRichSupport is returned by System when a rich representation is
// requested; the portable backend is text-only.
var ErrNoRichSupport = errors.New("clipboard: rich representations not supported by this backend")

// System is the portable system clipboard backed by atotto/clipboard.
// The underlying library exposes no native change counter, so System
// derives one: the counter advances whenever the observed text differs
// from the last read. A change and change-back between two observations
// is therefore invisible, which matches the pipeline's coalescing
// semantics anyway.
type System struct {
	mu       sync.Mutex
	lastHash uint64
	count    uint64
	primed   bool
}

// NewSystem returns a System clipboard.
func NewSystem() *System {
	return &System{}
}

// ChangeCount returns the derived change counter.
func (s *System) ChangeCount() (uint64, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return 0, err
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	sum := h.Sum64()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.primed || sum != s.lastHash {
		s.primed = true
		s.lastHash = sum
		s.count++
	}
	return s.count, nil
}

// Read returns the plain-text representation. Rich is always absent.
func (s *System) Read() (Snapshot, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Plain: text}, nil
}

// WritePlain places text onto the system clipboard.
func (s *System) WritePlain(text string) error {
	return clipboard.WriteAll(text)
}

// WriteRich is unsupported by the portable backend.
func (s *System) WriteRich([]byte) error {
	return ErrNoRichSupport
}
