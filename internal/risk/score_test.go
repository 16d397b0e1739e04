// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package risk

import (
	"testing"

	"github.com/pdiddy/lab-engine/internal/catalog"
	"github.com/pdiddy/lab-engine/pkg/types"
)

func TestScoreNormalPanelIsZero(t *testing.T) {
	s := NewScorer(catalog.Default())

	score, level := s.Score([]types.ExtractedResult{
		{TestName: "Glucose", Value: 85, Severity: types.SeverityNormal},
		{TestName: "Creatinine", Value: 0.9, Severity: types.SeverityNormal},
	})
	if score != 0 {
		t.Errorf("score = %g, want 0 for a normal panel", score)
	}
	if level != types.RiskLow {
		t.Errorf("level = %s, want LOW", level)
	}
}

func TestScoreAbnormalWithRange(t *testing.T) {
	s := NewScorer(catalog.Default())

	// Glucose 120 against 70-100: deviation (120-85)/15, weight 15,
	// abnormal factor 1.2 gives exactly 42.0.
	score, level := s.Score([]types.ExtractedResult{
		{TestName: "Glucose", Value: 120, Severity: types.SeverityAbnormal},
	})
	if score != 42.0 {
		t.Errorf("score = %g, want 42.0", score)
	}
	if level != types.RiskHigh {
		t.Errorf("level = %s, want HIGH", level)
	}
}

func TestScoreNoRangeFallback(t *testing.T) {
	s := NewScorer(catalog.Default())

	// Unknown tests get the default weight 3 and the flat no-range
	// contributions: weight for abnormal, double for critical.
	score, level := s.Score([]types.ExtractedResult{
		{TestName: "Obscure Marker", Value: 10, Severity: types.SeverityAbnormal},
		{TestName: "Mystery Enzyme", Value: 10, Severity: types.SeverityCritical},
	})
	if score != 9.0 {
		t.Errorf("score = %g, want 3 + 6 = 9.0", score)
	}
	if level != types.RiskLow {
		t.Errorf("level = %s, want LOW", level)
	}
}

func TestScoreClamped(t *testing.T) {
	s := NewScorer(catalog.Default())

	results := []types.ExtractedResult{
		{TestName: "Potassium", Value: 9, Severity: types.SeverityCritical},
		{TestName: "Sodium", Value: 180, Severity: types.SeverityCritical},
		{TestName: "Creatinine", Value: 8, Severity: types.SeverityCritical},
	}
	score, level := s.Score(results)
	if score != 100.0 {
		t.Errorf("score = %g, want clamp at 100", score)
	}
	if level != types.RiskCritical {
		t.Errorf("level = %s, want CRITICAL", level)
	}
}

func TestWeightFor(t *testing.T) {
	s := NewScorer(catalog.Default())

	tests := []struct {
		name string
		want float64
	}{
		{"Potassium", 25},
		{"Glucose", 15},
		// Fuzzy containment resolves variants; declaration order makes
		// the HDL entry win over the shorter generic Cholesterol one.
		{"HDL Cholesterol, direct (PHO)", 10},
		{"Glucose fasting (PHO)", 15},
		{"Serum Creatinine", 18},
		// Unknown tests take the default weight.
		{"Obscure Marker", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.weightFor(tt.name); got != tt.want {
				t.Errorf("weightFor(%q) = %g, want %g", tt.name, got, tt.want)
			}
		})
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  types.RiskLevel
	}{
		{0, types.RiskLow},
		{14.9, types.RiskLow},
		{15, types.RiskModerate},
		{39.9, types.RiskModerate},
		{40, types.RiskHigh},
		{69.9, types.RiskHigh},
		{70, types.RiskCritical},
		{100, types.RiskCritical},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.score); got != tt.want {
			t.Errorf("LevelFor(%g) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
