// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Severity grades how far a measured value sits outside its reference range.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityAbnormal Severity = "abnormal"
	SeverityCritical Severity = "critical"
)

// ExtractedResult is one test measurement recovered from a lab report.
type ExtractedResult struct {
	// TestName is the cleaned test name, 3-80 characters with at least
	// three alphabetic characters.
	TestName string `json:"test_name" yaml:"test_name"`

	// Value is the measured numeric value.
	Value float64 `json:"value" yaml:"value"`

	// Unit is the measurement unit. When the report line carried a stray
	// flag word instead of a unit, this is back-filled from the catalog.
	Unit string `json:"unit" yaml:"unit"`

	// ReferenceMin and ReferenceMax bound the normal interval parsed from
	// the report line itself (not the catalog).
	ReferenceMin float64 `json:"reference_min" yaml:"reference_min"`
	ReferenceMax float64 `json:"reference_max" yaml:"reference_max"`

	// IsAbnormal reports whether Value falls outside [ReferenceMin, ReferenceMax].
	IsAbnormal bool `json:"is_abnormal" yaml:"is_abnormal"`

	// Severity is normal, abnormal, or critical per the catalog's critical bounds.
	Severity Severity `json:"severity" yaml:"severity"`

	// DeviationPct is the signed percent deviation of Value from the
	// reference midpoint. Nil when the line carried no usable range.
	DeviationPct *float64 `json:"deviation_pct" yaml:"deviation_pct"`
}
