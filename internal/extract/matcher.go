// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strconv"
)

// Candidate is a raw row match produced by a LineMatcher, before name
// cleaning, numeric parsing, and validation. Range bounds stay as strings
// so the validation pipeline owns all numeric parsing and its failure
// handling in one place.
type Candidate struct {
	RawName string
	Value   string
	Unit    string
	RefMin  string
	RefMax  string
}

// LineMatcher recognizes one row layout within report text. Matchers run
// in a fixed order and earlier matchers win name collisions, so the slice
// order in an Extractor is part of its contract.
type LineMatcher interface {
	Name() string
	FindAll(text string) []Candidate
}

// flagWords is the optional severity annotation that may sit between the
// value and the unit ("Glucose fasting 120 high mg/dl 70-99").
const flagWords = `(?:\s+(?:high|low|normal|abnormal|critical|H|L))?`

// rangeRowRe matches "<name> <value> [flag] <unit> <min>-<max>" rows.
// The name class includes \s, so multi-line names are captured whole and
// collapse to their last line during cleaning.
var rangeRowRe = regexp.MustCompile(
	`(?im)^([A-Za-z][A-Za-z0-9\s(),/.-]*?)` +
		`\s+(\d+\.?\d*)` +
		flagWords +
		`\s+([a-zA-Z/%]+(?:/[a-zA-Z]+)?)` +
		`\s+(\d+\.?\d*)\s*[-–]\s*(\d+\.?\d*)`)

// rangeRowMatcher extracts rows carrying an explicit two-sided range.
type rangeRowMatcher struct{}

func (rangeRowMatcher) Name() string { return "range-row" }

func (rangeRowMatcher) FindAll(text string) []Candidate {
	var out []Candidate
	for _, m := range rangeRowRe.FindAllStringSubmatch(text, -1) {
		out = append(out, Candidate{
			RawName: m[1],
			Value:   m[2],
			Unit:    m[3],
			RefMin:  m[4],
			RefMax:  m[5],
		})
	}
	return out
}

// oneSidedRowRe matches "<name> <value> [flag] <unit> <op><bound>" rows
// where op is "<" or ">".
var oneSidedRowRe = regexp.MustCompile(
	`(?im)^([A-Za-z][A-Za-z0-9\s(),/.-]*?)` +
		`\s+(\d+\.?\d*)` +
		flagWords +
		`\s+([a-zA-Z/%]+(?:/[a-zA-Z]+)?)` +
		`\s+([<>])\s*(\d+\.?\d*)`)

// oneSidedRowMatcher extracts rows with a one-sided reference bound. A
// "<b" bound becomes (0, b). A ">b" bound becomes (b, 2b), a rough
// stand-in for an open upper range; the row gives nothing better to
// work with.
type oneSidedRowMatcher struct{}

func (oneSidedRowMatcher) Name() string { return "one-sided-row" }

func (oneSidedRowMatcher) FindAll(text string) []Candidate {
	var out []Candidate
	for _, m := range oneSidedRowRe.FindAllStringSubmatch(text, -1) {
		bound, err := strconv.ParseFloat(m[5], 64)
		if err != nil {
			continue
		}
		c := Candidate{RawName: m[1], Value: m[2], Unit: m[3]}
		if m[4] == "<" {
			c.RefMin = "0"
			c.RefMax = m[5]
		} else {
			c.RefMin = m[5]
			c.RefMax = strconv.FormatFloat(bound*2, 'f', -1, 64)
		}
		out = append(out, c)
	}
	return out
}

// inlineRefRe matches "<name>: <value> <unit> (Ref: <min>-<max>)" rows.
var inlineRefRe = regexp.MustCompile(
	`(?i)([A-Za-z][A-Za-z0-9\s(),/.-]+):\s*(\d+\.?\d*)\s*([a-zA-Z/%]*)` +
		`\s*\(?Ref(?:erence)?:\s*(\d+\.?\d*)\s*[-–]\s*(\d+\.?\d*)\)?`)

// inlineRefMatcher extracts rows that embed the range parenthetically.
type inlineRefMatcher struct{}

func (inlineRefMatcher) Name() string { return "inline-ref" }

func (inlineRefMatcher) FindAll(text string) []Candidate {
	var out []Candidate
	for _, m := range inlineRefRe.FindAllStringSubmatch(text, -1) {
		out = append(out, Candidate{
			RawName: m[1],
			Value:   m[2],
			Unit:    m[3],
			RefMin:  m[4],
			RefMax:  m[5],
		})
	}
	return out
}

// DefaultMatchers returns the standard matcher chain in precedence order.
func DefaultMatchers() []LineMatcher {
	return []LineMatcher{
		rangeRowMatcher{},
		oneSidedRowMatcher{},
		inlineRefMatcher{},
	}
}
