// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog holds the reference-range and risk-weight tables and the
// fuzzy name lookup that tolerates lab-specific naming variants.
package catalog

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/lab-engine/pkg/types"
)

// Catalog is the read-only table of reference ranges and scoring weights.
// It is fully constructed before first use and never mutated afterward, so
// concurrent report-processing invocations may share one instance freely.
type Catalog struct {
	ranges  map[string]types.ReferenceRange
	keys    []string // sorted range keys, for deterministic fuzzy scans
	weights []types.WeightEntry
}

// New builds a Catalog from a range table and an ordered weight list.
func New(ranges map[string]types.ReferenceRange, weights []types.WeightEntry) *Catalog {
	keys := make([]string, 0, len(ranges))
	for k := range ranges {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Catalog{ranges: ranges, keys: keys, weights: weights}
}

// labCodeRe matches a trailing parenthetical lab-code suffix such as
// "(PHO)" or "(TURB)": 2-6 uppercase letters.
var labCodeRe = regexp.MustCompile(`\s*\([A-Z]{2,6}\)\s*$`)

// parentheticalRe matches any parenthetical annotation for full normalization.
var parentheticalRe = regexp.MustCompile(`\s*\(.*?\)`)

// StripLabCode removes a trailing uppercase lab-code suffix from a test name.
// "Creatinine (PHO)" becomes "Creatinine"; "Glucose (PP)" is left alone by
// Lookup's exact pass but stripped here since "PP" is 2 uppercase letters.
func StripLabCode(name string) string {
	return strings.TrimSpace(labCodeRe.ReplaceAllString(name, ""))
}

// NormalizeName strips every parenthetical annotation and lowercases, e.g.
// "Glucose fasting (PHO)" -> "glucose fasting". Used for the looser matching
// in vectorization and scoring.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(parentheticalRe.ReplaceAllString(name, "")))
}

// Lookup resolves a test name to its reference range. Precedence: exact
// match, then the name with a trailing lab-code suffix stripped, then the
// longest case-insensitive catalog key contained in the name (most specific
// key wins; the generic "Cholesterol" entry must not shadow "HDL
// Cholesterol, direct"). Absence is a normal outcome, not an error.
func (c *Catalog) Lookup(name string) (types.ReferenceRange, bool) {
	if r, ok := c.ranges[name]; ok {
		return r, true
	}

	if stripped := StripLabCode(name); stripped != name {
		if r, ok := c.ranges[stripped]; ok {
			return r, true
		}
	}

	nameLower := strings.ToLower(name)
	bestKey, bestLen := "", 0
	for _, key := range c.keys {
		keyLower := strings.ToLower(key)
		if len(keyLower) > bestLen && strings.Contains(nameLower, keyLower) {
			bestKey, bestLen = key, len(keyLower)
		}
	}
	if bestKey == "" {
		return types.ReferenceRange{}, false
	}
	return c.ranges[bestKey], true
}

// LookupNormalized resolves a name by exact match, then by full-name
// equality after NormalizeName on both sides. This is the stricter fuzzy
// rule used by the risk scorer, which must not let a substring like
// "cholesterol" claim an unrelated entry's range.
func (c *Catalog) LookupNormalized(name string) (types.ReferenceRange, bool) {
	if r, ok := c.ranges[name]; ok {
		return r, true
	}
	norm := NormalizeName(name)
	for _, key := range c.keys {
		if NormalizeName(key) == norm {
			return c.ranges[key], true
		}
	}
	return types.ReferenceRange{}, false
}

// Weights returns the ordered risk-weight entries.
func (c *Catalog) Weights() []types.WeightEntry {
	return c.weights
}

// Names returns the catalog's canonical test names, sorted.
func (c *Catalog) Names() []string {
	return c.keys
}

// Len returns the number of range entries.
func (c *Catalog) Len() int {
	return len(c.ranges)
}
