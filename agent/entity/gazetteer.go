package entity

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	contractx "github.com/weiheng-lim/kopibot/agent/contract"
)

//go:embed gazetteer.yaml
var defaultGazetteerRaw []byte

// Entry is one known location or outlet: a canonical phrase plus the aliases
// that should resolve to it.
type Entry struct {
	Canonical string   `yaml:"canonical"`
	Aliases   []string `yaml:"aliases,omitempty"`
}

// Gazetteer is the data table backing location and outlet extraction. It is
// loaded from YAML so the vocabulary extends without code changes.
type Gazetteer struct {
	Locations []Entry `yaml:"locations"`
	Outlets   []Entry `yaml:"outlets"`
}

// DefaultGazetteer returns the embedded table.
func DefaultGazetteer() Gazetteer {
	gaz, err := parseGazetteer(defaultGazetteerRaw)
	if err != nil {
		// The embedded table is validated at build time by the package tests.
		panic(fmt.Sprintf("embedded gazetteer is invalid: %v", err))
	}
	return gaz
}

// LoadGazetteer reads a gazetteer override from disk.
func LoadGazetteer(path string) (Gazetteer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Gazetteer{}, fmt.Errorf("read gazetteer: %w", err)
	}
	return parseGazetteer(raw)
}

func parseGazetteer(raw []byte) (Gazetteer, error) {
	var gaz Gazetteer
	if err := yaml.Unmarshal(raw, &gaz); err != nil {
		return Gazetteer{}, fmt.Errorf("unmarshal gazetteer: %w", err)
	}

	normalize := func(entries []Entry, kind string) error {
		for i := range entries {
			entries[i].Canonical = strings.ToLower(strings.TrimSpace(entries[i].Canonical))
			if entries[i].Canonical == "" {
				return fmt.Errorf("%w: %s entry %d has empty canonical", contractx.ErrValidation, kind, i)
			}
			for j := range entries[i].Aliases {
				entries[i].Aliases[j] = strings.ToLower(strings.TrimSpace(entries[i].Aliases[j]))
			}
		}
		return nil
	}

	if err := normalize(gaz.Locations, "location"); err != nil {
		return Gazetteer{}, err
	}
	if err := normalize(gaz.Outlets, "outlet"); err != nil {
		return Gazetteer{}, err
	}
	return gaz, nil
}

// MatchLocation reports the canonical location named in the lower-cased text.
func (g Gazetteer) MatchLocation(lower string) (string, bool) {
	return matchEntries(g.Locations, lower)
}

// MatchOutlet reports the canonical outlet named in the lower-cased text.
func (g Gazetteer) MatchOutlet(lower string) (string, bool) {
	return matchEntries(g.Outlets, lower)
}

// OutletPlausible reports whether the phrase loosely overlaps a known outlet
// alias. Matching is case-insensitive and space-insensitive in both
// containment directions, so "SS2", "ss 2" and "SS 2!" all count.
func (g Gazetteer) OutletPlausible(phrase string) bool {
	cand := squash(phrase)
	if cand == "" {
		return false
	}
	for _, entry := range g.Outlets {
		for _, alias := range append([]string{entry.Canonical}, entry.Aliases...) {
			known := squash(alias)
			if known == "" {
				continue
			}
			if strings.Contains(cand, known) || strings.Contains(known, cand) {
				return true
			}
		}
	}
	return false
}

func matchEntries(entries []Entry, lower string) (string, bool) {
	for _, entry := range entries {
		if containsPhrase(lower, entry.Canonical) {
			return entry.Canonical, true
		}
		for _, alias := range entry.Aliases {
			if containsPhrase(lower, alias) {
				return entry.Canonical, true
			}
		}
	}
	return "", false
}

// containsPhrase is substring matching bounded by non-alphanumeric runes, so
// the alias "kl" does not fire inside "klcc".
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	for from := 0; ; {
		idx := strings.Index(text[from:], phrase)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(phrase)
		if boundaryAt(text, start-1) && boundaryAt(text, end) {
			return true
		}
		from = start + 1
	}
}

func boundaryAt(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	return !isAlphaNumeric(text[i])
}

func isAlphaNumeric(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// squash lower-cases and strips everything but letters and digits.
func squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
