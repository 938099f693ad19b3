// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

// Package capture drives the clipboard change detector and the capture
// pipeline: observe the clipboard generation on a fixed cadence and, on
// change, run one capture attempt to completion before the next tick is
// honored.
package capture

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/toeirei/clipvault/internal/clipboard"
	"github.com/toeirei/clipvault/internal/fingerprint"
	"github.com/toeirei/clipvault/internal/history"
	"github.com/toeirei/clipvault/internal/logging"
	"github.com/toeirei/clipvault/internal/model"
	"github.com/toeirei/clipvault/internal/policy"
)

// DefaultInterval is the polling cadence. Two clipboard changes within
// one interval are coalesced; only the state at the next tick is seen.
const DefaultInterval = 300 * time.Millisecond

// ErrSkipped marks the expected non-error exits of a capture attempt:
// excluded source app, sensitive content, or no usable representation.
// Skips are logged at debug level and never surfaced as failures.
var ErrSkipped = errors.New("capture skipped")

// Monitor owns the polling loop and the per-tick pipeline.
type Monitor struct {
	clip      clipboard.Clipboard
	sourceApp clipboard.SourceAppProvider
	extractor *clipboard.Extractor
	gate      *policy.Gate
	filter    *policy.Filter
	repo      *history.Repository

	interval time.Duration

	// busy is the re-entrancy guard: a tick firing while a capture is
	// still in flight is skipped, not queued.
	busy atomic.Bool

	lastGeneration uint64
	primed         bool

	// OnSaved, when set, receives each entry produced by a successful
	// capture (new or dedup-hit). Called from the capture goroutine.
	OnSaved func(model.Entry)
}

// NewMonitor wires the pipeline. interval <= 0 selects DefaultInterval.
func NewMonitor(
	clip clipboard.Clipboard,
	sourceApp clipboard.SourceAppProvider,
	extractor *clipboard.Extractor,
	gate *policy.Gate,
	filter *policy.Filter,
	repo *history.Repository,
	interval time.Duration,
) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		clip:      clip,
		sourceApp: sourceApp,
		extractor: extractor,
		gate:      gate,
		filter:    filter,
		repo:      repo,
		interval:  interval,
	}
}

// Run polls until ctx is cancelled. The ticker stops before Run returns,
// so the caller can safely tear down the store afterwards. Capture
// failures are reported in the log and retried naturally on the next
// detected change; they never stop the loop.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	logging.Infof("capture: monitoring clipboard every %s", m.interval)
	for {
		select {
		case <-ctx.Done():
			logging.Infof("capture: monitor stopped")
			return
		case <-ticker.C:
			m.Tick()
		}
	}
}

// Tick runs one observation. Exported so a frontend with its own run loop
// can drive the pipeline directly.
func (m *Monitor) Tick() {
	if !m.busy.CompareAndSwap(false, true) {
		// Previous capture still in flight; skip, do not queue.
		return
	}
	defer m.busy.Store(false)

	generation, err := m.clip.ChangeCount()
	if err != nil {
		logging.Debugf("capture: reading change count: %v", err)
		return
	}
	if m.primed && generation == m.lastGeneration {
		return
	}
	// The first observation primes the counter without capturing, so
	// whatever was on the clipboard before startup is not ingested.
	if !m.primed {
		m.primed = true
		m.lastGeneration = generation
		return
	}
	m.lastGeneration = generation

	entry, err := m.capture()
	switch {
	case errors.Is(err, ErrSkipped):
		logging.Debugf("capture: %v", err)
	case err != nil:
		logging.Errorf("capture: attempt failed: %v", err)
	default:
		logging.Infof("capture: stored entry %s (fingerprint %s)", entry.ID, fingerprint.Short(entry.Fingerprint))
		if m.OnSaved != nil {
			m.OnSaved(*entry)
		}
	}
}

// capture runs the pipeline steps for one detected change. Each step is a
// possible exit point.
func (m *Monitor) capture() (*model.Entry, error) {
	appID := m.sourceApp.FrontmostAppID()
	if appID != "" && m.gate.IsExcluded(appID) {
		return nil, errors.Join(ErrSkipped, errors.New("source app "+appID+" is excluded"))
	}

	snap, err := m.clip.Read()
	if err != nil {
		return nil, err
	}
	candidate, ok := m.extractor.Extract(snap, appID)
	if !ok {
		return nil, errors.Join(ErrSkipped, errors.New("no usable representation"))
	}

	if m.filter.IsSensitive(candidate.PlainText) {
		// Log no content, only the fact.
		return nil, errors.Join(ErrSkipped, errors.New("content classified sensitive"))
	}

	return m.repo.Save(candidate)
}
