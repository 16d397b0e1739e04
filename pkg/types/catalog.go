// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ReferenceRange holds the clinically normal interval and critical bounds
// for one canonical test name. Entries are immutable once loaded.
type ReferenceRange struct {
	// Unit is the canonical measurement unit (e.g. "mg/dL").
	Unit string `json:"unit" yaml:"unit"`

	// Min and Max bound the normal interval.
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`

	// CriticalHigh, when set, is the threshold above which a value is
	// critical rather than merely abnormal.
	CriticalHigh *float64 `json:"critical_high,omitempty" yaml:"critical_high,omitempty"`

	// CriticalLow, when set, is the threshold below which a value is critical.
	CriticalLow *float64 `json:"critical_low,omitempty" yaml:"critical_low,omitempty"`
}

// WeightEntry pairs a test name with its risk-scoring weight. Entries are
// kept as an ordered list because fuzzy weight matching takes the first
// hit in declaration order; collapsing to a map would change scoring
// outcomes for names that match more than one key.
type WeightEntry struct {
	Name   string  `json:"name" yaml:"name"`
	Weight float64 `json:"weight" yaml:"weight"`
}
