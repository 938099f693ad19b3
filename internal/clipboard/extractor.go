// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

package clipboard

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/toeirei/clipvault/internal/model"
)

// RichPlaceholder is stored as the plain-text form when a rich capture
// yields no extractable text and no plain representation exists.
const RichPlaceholder = "[Rich Text]"

// Extractor selects exactly one capture candidate from a snapshot,
// honoring the capture-capability configuration. Priority is strict:
// rich first, then plain, then nothing.
type Extractor struct {
	captureRich  bool
	capturePlain bool
}

// NewExtractor returns an Extractor with the given capture capabilities.
func NewExtractor(captureRich, capturePlain bool) *Extractor {
	return &Extractor{captureRich: captureRich, capturePlain: capturePlain}
}

// Extract builds a candidate from snap, or returns ok=false when no
// usable representation is available. When the rich representation is
// chosen, a canonical plain-text rendering is derived alongside it for
// fingerprinting, preview and search; derivation failure falls back to
// the plain representation and finally to RichPlaceholder rather than
// failing the capture.
func (x *Extractor) Extract(snap Snapshot, sourceApp string) (model.Candidate, bool) {
	if x.captureRich && len(snap.Rich) > 0 {
		plain, ok := plainFromRich(snap.Rich)
		if !ok {
			if snap.Plain != "" {
				plain = snap.Plain
			} else {
				plain = RichPlaceholder
			}
		}
		return model.Candidate{
			PlainText: plain,
			RichBytes: snap.Rich,
			SourceApp: sourceApp,
		}, true
	}
	if x.capturePlain && snap.Plain != "" {
		return model.Candidate{PlainText: snap.Plain, SourceApp: sourceApp}, true
	}
	return model.Candidate{}, false
}

var (
	tagPattern    = regexp.MustCompile(`(?s)<[^>]*>`)
	scriptPattern = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	spacePattern  = regexp.MustCompile(`[ \t]+`)
)

// plainFromRich extracts the underlying text from an HTML-flavored rich
// payload. It reports failure for payloads that are not valid UTF-8 or
// contain no text outside of markup.
func plainFromRich(rich []byte) (string, bool) {
	if !utf8.Valid(rich) {
		return "", false
	}
	s := scriptPattern.ReplaceAllString(string(rich), " ")
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = spacePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}
