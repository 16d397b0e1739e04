// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RiskLevel buckets a composite risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskVectorDim is the fixed length of every risk vector. Vectors from
// different reports are directly comparable because the length and
// biomarker order never vary.
const RiskVectorDim = 8

// ReportDocument is the full processed form of one lab report, handed to
// the store after extraction and scoring.
type ReportDocument struct {
	// PatientID is caller-supplied; the pipeline does not produce it.
	PatientID string `json:"patient_id" yaml:"patient_id"`

	// TestDate is the report date found in the text, or the processing
	// time when no date could be located.
	TestDate time.Time `json:"test_date" yaml:"test_date"`

	// TestType is the inferred panel type (e.g. "Lipid Panel").
	TestType string `json:"test_type" yaml:"test_type"`

	// LabName is the issuing laboratory sniffed from the report header.
	LabName string `json:"lab_name" yaml:"lab_name"`

	// Results holds the extracted measurements in extraction order.
	Results []ExtractedResult `json:"results" yaml:"results"`

	// ReportText is the raw text, truncated for storage.
	ReportText string `json:"report_text" yaml:"report_text"`

	// AbnormalFlags and CriticalFlags list the names of out-of-range and
	// critical results respectively.
	AbnormalFlags []string `json:"abnormal_flags" yaml:"abnormal_flags"`
	CriticalFlags []string `json:"critical_flags" yaml:"critical_flags"`

	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`

	// SourceFile labels the uploaded file this document came from.
	SourceFile string `json:"source_file" yaml:"source_file"`

	// RiskVector is the fixed-dimension normalized biomarker vector used
	// for similarity comparison between reports.
	RiskVector []float64 `json:"risk_vector" yaml:"risk_vector"`

	// RiskScore is the 0-100 composite score and RiskLevel its bucket.
	RiskScore float64   `json:"risk_score" yaml:"risk_score"`
	RiskLevel RiskLevel `json:"risk_level" yaml:"risk_level"`
}
