// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns raw lab-report text into validated test results.
// An ordered chain of line matchers recognizes the report layouts; a
// shared validation pipeline cleans names, back-fills units, classifies
// severity, and deduplicates across matchers.
package extract

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/lab-engine/internal/catalog"
	"github.com/pdiddy/lab-engine/pkg/types"
)

// Sentinel outcomes for inputs that produce no structured data. Both are
// expected results for badly formatted documents, not failures: callers
// reject the upload rather than crash.
var (
	// ErrInputTooShort means the text is below the minimum processable length.
	ErrInputTooShort = errors.New("input text too short to process")

	// ErrNoResults means parsing ran but zero valid records survived.
	ErrNoResults = errors.New("no lab results found in text")
)

// defaultMinTextLen is the minimum input length considered processable.
const defaultMinTextLen = 50

// skipMarkers lists boilerplate fragments that disqualify a candidate
// name: range descriptors, demographic qualifiers, and contact/report
// boilerplate. Matching is case-insensitive containment.
var skipMarkers = []string{
	"Normal:", "Optimal:", "Borderline:", "Increased Risk",
	"Decreased Risk", "High Risk", "Low Risk", "Near Optimal:",
	"High:", "Low:", "Critical:", "Abnormal:", "Reference:",
	"Ref Range:", "Range:", "Men:", "Women:", "Male:", "Female:",
	"Desirable:", "Please note", "Daily internal", "External Quality",
	"Techn.", "This report", "This parameter", "This investigation",
	"Recommendations", "Note:", "Page ", "P.O. Box", "Tel:", "Fax:",
	"E-mail:", "Website:", "Insurance:", "Remarks:", "Physician:",
}

// flagWordUnits is the set of tokens that the unit capture can pick up
// when a row has no real unit; the catalog supplies the unit instead.
var flagWordUnits = map[string]bool{
	"high": true, "low": true, "normal": true, "abnormal": true, "-": true, "": true,
}

// unitDefault maps a name keyword to a fallback unit for tests missing
// from the catalog. Order matters: the first containment hit wins.
var unitDefaults = []struct {
	keyword string
	unit    string
}{
	{"glucose", "mg/dL"},
	{"cholesterol", "mg/dL"},
	{"triglyceride", "mg/dL"},
	{"hdl", "mg/dL"},
	{"ldl", "mg/dL"},
	{"hemoglobin", "g/dL"},
	{"albumin", "g/dL"},
	{"creatinine", "mg/dL"},
	{"protein", "g/dL"},
	{"urea", "mg/dL"},
	{"bilirubin", "mg/dL"},
	{"calcium", "mg/dL"},
}

// specimenSuffixRes strips trailing specimen-type annotations from names.
var specimenSuffixRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\(Serum\)$`),
	regexp.MustCompile(`(?i)\(EDTA\s*blood\)$`),
	regexp.MustCompile(`(?i)\(Plasma\)$`),
	regexp.MustCompile(`(?i)\(Urine\)$`),
	regexp.MustCompile(`(?i)\(Whole\s*blood\)$`),
}

// Extractor applies an ordered matcher chain over report text. It holds
// no per-invocation state; one Extractor may serve concurrent calls.
type Extractor struct {
	cat        *catalog.Catalog
	matchers   []LineMatcher
	minTextLen int
}

// New builds an Extractor with the default matcher chain.
func New(cat *catalog.Catalog, cfg types.ExtractionConfig) *Extractor {
	minLen := cfg.MinTextLen
	if minLen <= 0 {
		minLen = defaultMinTextLen
	}
	return &Extractor{
		cat:        cat,
		matchers:   DefaultMatchers(),
		minTextLen: minLen,
	}
}

// NewWithMatchers builds an Extractor with a custom matcher chain, in
// precedence order.
func NewWithMatchers(cat *catalog.Catalog, cfg types.ExtractionConfig, matchers []LineMatcher) *Extractor {
	e := New(cat, cfg)
	e.matchers = matchers
	return e
}

// Extract parses report text into validated results in extraction order.
// Individual malformed lines are skipped silently; the call fails only
// with ErrInputTooShort or ErrNoResults.
func (e *Extractor) Extract(text string) ([]types.ExtractedResult, error) {
	if len(strings.TrimSpace(text)) < e.minTextLen {
		return nil, ErrInputTooShort
	}

	seen := make(map[string]bool)
	var results []types.ExtractedResult

	for _, m := range e.matchers {
		for _, cand := range m.FindAll(text) {
			if r, ok := e.build(cand, seen); ok {
				results = append(results, r)
			}
		}
	}

	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

// build runs one candidate through the validation pipeline. It returns
// false for any rejection; rejections are silent by design.
func (e *Extractor) build(cand Candidate, seen map[string]bool) (types.ExtractedResult, bool) {
	var zero types.ExtractedResult

	name := CleanTestName(cand.RawName)
	if name == "" || len(name) < 3 || len(name) > 80 {
		return zero, false
	}
	if isBoilerplate(name) {
		return zero, false
	}
	if alphaCount(name) < 3 {
		return zero, false
	}

	key := strings.ToLower(name)
	if seen[key] {
		return zero, false
	}

	value, err := strconv.ParseFloat(cand.Value, 64)
	if err != nil {
		return zero, false
	}
	refMin, err := strconv.ParseFloat(cand.RefMin, 64)
	if err != nil {
		return zero, false
	}
	refMax, err := strconv.ParseFloat(cand.RefMax, 64)
	if err != nil {
		return zero, false
	}
	if refMin >= refMax && refMax != 0 {
		return zero, false
	}

	unit := strings.TrimSpace(cand.Unit)
	if flagWordUnits[strings.ToLower(unit)] {
		unit = e.inferUnit(name)
	}

	isAbnormal := value < refMin || value > refMax

	// The line supplies the normal interval; the catalog supplies the
	// critical bounds for this test, when it knows the name.
	rng := types.ReferenceRange{Min: refMin, Max: refMax}
	if ref, ok := e.cat.Lookup(name); ok {
		rng.CriticalHigh = ref.CriticalHigh
		rng.CriticalLow = ref.CriticalLow
	}
	severity := Classify(value, &rng, types.SeverityNormal)

	var deviation *float64
	if refMax != 0 {
		if mid := (refMin + refMax) / 2; mid != 0 {
			d := math.Round((value-mid)/mid*1000) / 10
			deviation = &d
		}
	}

	seen[key] = true
	return types.ExtractedResult{
		TestName:     name,
		Value:        value,
		Unit:         unit,
		ReferenceMin: refMin,
		ReferenceMax: refMax,
		IsAbnormal:   isAbnormal,
		Severity:     severity,
		DeviationPct: deviation,
	}, true
}

// inferUnit back-fills a unit from the catalog, falling back to keyword
// defaults for names the catalog does not know.
func (e *Extractor) inferUnit(name string) string {
	if ref, ok := e.cat.Lookup(name); ok && ref.Unit != "" {
		return ref.Unit
	}
	nameLower := strings.ToLower(name)
	for _, d := range unitDefaults {
		if strings.Contains(nameLower, d.keyword) {
			return d.unit
		}
	}
	return ""
}

// CleanTestName collapses a multi-line raw name to its last non-empty
// line and strips trailing specimen-type annotations.
func CleanTestName(raw string) string {
	var last string
	for _, line := range strings.Split(raw, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			last = s
		}
	}
	for _, re := range specimenSuffixRes {
		last = strings.TrimSpace(re.ReplaceAllString(last, ""))
	}
	return last
}

// isBoilerplate reports whether a name contains any skip marker.
func isBoilerplate(name string) bool {
	nameLower := strings.ToLower(name)
	for _, marker := range skipMarkers {
		if strings.Contains(nameLower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// alphaCount counts alphabetic runes in s.
func alphaCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
