// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report assembles the full processing pipeline: raw report
// text in, a scored ReportDocument out.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/lab-engine/internal/catalog"
	"github.com/pdiddy/lab-engine/internal/extract"
	"github.com/pdiddy/lab-engine/internal/risk"
	"github.com/pdiddy/lab-engine/pkg/types"
)

// reportTextLimit caps the raw text carried on the stored document.
const reportTextLimit = 5000

// Meta carries the caller-supplied identity of a report. The pipeline
// produces everything else.
type Meta struct {
	// PatientID associates the document with a patient record.
	PatientID string

	// SourceFile labels the file the text was converted from.
	SourceFile string
}

// Processor runs extraction, severity grading, vectorization, and
// scoring over raw report text.
type Processor struct {
	extractor  *extract.Extractor
	vectorizer *risk.Vectorizer
	scorer     *risk.Scorer
	now        func() time.Time
}

// NewProcessor wires the pipeline stages over a shared catalog.
func NewProcessor(cat *catalog.Catalog, cfg types.ExtractionConfig) *Processor {
	return &Processor{
		extractor:  extract.New(cat, cfg),
		vectorizer: risk.NewVectorizer(nil),
		scorer:     risk.NewScorer(cat),
		now:        time.Now,
	}
}

// Process turns raw report text into a complete document: extracted
// results, abnormal and critical flags, sniffed test date and lab
// name, inferred panel type, the risk vector, and the composite score.
// Extraction failures (text too short, no recognizable results)
// propagate as wrapped sentinel errors.
func (p *Processor) Process(text string, meta Meta) (*types.ReportDocument, error) {
	results, err := p.extractor.Extract(text)
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", meta.SourceFile, err)
	}

	var abnormal, critical []string
	for _, r := range results {
		if r.IsAbnormal {
			abnormal = append(abnormal, r.TestName)
		}
		if r.Severity == types.SeverityCritical {
			critical = append(critical, r.TestName)
		}
	}

	score, level := p.scorer.Score(results)

	reportText := text
	if len(reportText) > reportTextLimit {
		reportText = reportText[:reportTextLimit]
	}

	return &types.ReportDocument{
		PatientID:     meta.PatientID,
		TestDate:      extractDate(text, p.now),
		TestType:      inferTestType(results),
		LabName:       extractLabName(text),
		Results:       results,
		ReportText:    reportText,
		AbnormalFlags: abnormal,
		CriticalFlags: critical,
		ProcessedAt:   p.now(),
		SourceFile:    meta.SourceFile,
		RiskVector:    p.vectorizer.Vectorize(results),
		RiskScore:     score,
		RiskLevel:     level,
	}, nil
}

// extractLabName scans the first header lines for something that reads
// like an issuing laboratory. Falls back to a generic label.
func extractLabName(text string) string {
	head := text
	if len(head) > 500 {
		head = head[:500]
	}
	lines := strings.Split(head, "\n")
	if len(lines) > 8 {
		lines = lines[:8]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		for _, kw := range []string{"Lab", "Laboratory", "Medical", "Hospital", "Diagnostic"} {
			if strings.Contains(line, kw) {
				if len(line) > 10 && len(line) < 80 {
					return line
				}
				break
			}
		}
	}
	return "Medical Laboratory"
}

// inferTestType names the panel from the extracted test names.
func inferTestType(results []types.ExtractedResult) string {
	var hasGlucose, hasCholesterol, hasLipid, hasHemoglobin bool
	for _, r := range results {
		n := strings.ToLower(r.TestName)
		if strings.Contains(n, "glucose") {
			hasGlucose = true
		}
		if strings.Contains(n, "cholesterol") {
			hasCholesterol = true
		}
		for _, kw := range []string{"cholesterol", "hdl", "ldl", "triglyceride"} {
			if strings.Contains(n, kw) {
				hasLipid = true
			}
		}
		if strings.Contains(n, "hemoglobin") {
			hasHemoglobin = true
		}
	}
	switch {
	case hasGlucose && hasCholesterol:
		return "Comprehensive Metabolic Panel"
	case hasGlucose:
		return "Glucose Panel"
	case hasLipid:
		return "Lipid Panel"
	case hasHemoglobin:
		return "Complete Blood Count"
	default:
		return "Lab Panel"
	}
}
