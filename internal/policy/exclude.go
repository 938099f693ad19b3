// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

package policy

// defaultExcludedApps are well-known credential managers whose clipboard
// writes are never captured, independent of user configuration.
var defaultExcludedApps = []string{
	"com.bitwarden.desktop",
	"com.1password.1password",
	"com.agilebits.onepassword7",
	"org.keepassxc.keepassxc",
	"com.lastpass.lastpass",
	"com.dashlane.dashlanephonefinal",
}

// Gate decides whether a capture from a given source application is
// allowed. Matching is exact identifier equality; no prefix or pattern
// matching.
type Gate struct {
	excluded map[string]struct{}
}

// NewGate builds a Gate from the user-configured identifier list merged
// with the built-in defaults.
func NewGate(configured []string) *Gate {
	g := &Gate{excluded: make(map[string]struct{}, len(defaultExcludedApps)+len(configured))}
	for _, id := range defaultExcludedApps {
		g.excluded[id] = struct{}{}
	}
	for _, id := range configured {
		if id != "" {
			g.excluded[id] = struct{}{}
		}
	}
	return g
}

// IsExcluded reports whether appID is on the block-list. An absent
// identifier is never excluded.
func (g *Gate) IsExcluded(appID string) bool {
	if appID == "" {
		return false
	}
	_, ok := g.excluded[appID]
	return ok
}
