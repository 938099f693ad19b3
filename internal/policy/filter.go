// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

// Package policy contains the capture-side content and source policies:
// the sensitivity filter, which blocks probable secrets from ever being
// persisted, and the exclusion gate, which blocks captures originating
// from configured or well-known credential-management applications.
package policy

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// jwtPrefix is the base64 encoding of `{"alg"` — every compact JWT (and
// most other encoded credential headers) starts with it.
const jwtPrefix = "eyJ"

// secretLabels are prefixes that mark a line as an explicitly labelled
// secret. Matching is done on the lower-cased text.
var secretLabels = []string{
	"password:",
	"passwd:",
	"secret:",
	"token:",
	"api_key:",
	"apikey:",
}

// Filter is the heuristic sensitivity classifier. When disabled it is
// bypassed entirely and classifies nothing as sensitive.
type Filter struct {
	enabled bool
}

// NewFilter returns a Filter; enabled gates the whole component.
func NewFilter(enabled bool) *Filter {
	return &Filter{enabled: enabled}
}

// IsSensitive reports whether text looks like a secret that must not be
// captured. Checks run in a fixed order and short-circuit on first match.
func (f *Filter) IsSensitive(text string) bool {
	if !f.enabled {
		return false
	}
	if strings.HasPrefix(text, jwtPrefix) && len(text) > 50 {
		return true
	}
	if strings.Contains(text, "-----BEGIN") && strings.Contains(text, "PRIVATE KEY") {
		return true
	}
	if looksLikeToken(text) {
		return true
	}
	if looksLikeCardNumber(text) {
		return true
	}
	if hasSecretLabel(text) {
		return true
	}
	return false
}

// looksLikeToken flags short single-blob strings that are almost entirely
// made of identifier characters, the shape of API keys and access tokens.
// Length and ratio are both measured in runes so multi-byte text is not
// penalized by its encoding width.
func looksLikeToken(text string) bool {
	trimmed := strings.TrimSpace(text)
	n := utf8.RuneCountInString(trimmed)
	if n < 20 || n > 200 {
		return false
	}
	tokenChars := 0
	for _, r := range trimmed {
		if r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			tokenChars++
		}
	}
	return float64(tokenChars)/float64(n) > 0.9
}

// looksLikeCardNumber flags digit runs in the payment-card length range.
// This is deliberately a length-and-composition heuristic, not a Luhn
// checksum: the goal is to refuse to store anything card-shaped, and a
// checksum would only let mistyped numbers through.
func looksLikeCardNumber(text string) bool {
	var digits int
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '\t' || r == '\n' || r == '\r':
			// separators are ignored
		default:
			return false
		}
	}
	return digits >= 13 && digits <= 19
}

func hasSecretLabel(text string) bool {
	if len(text) >= 100 {
		return false
	}
	lower := strings.ToLower(text)
	for _, label := range secretLabels {
		if strings.HasPrefix(lower, label) {
			return true
		}
	}
	return false
}
