// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package risk

import (
	"math"
	"strings"

	"github.com/pdiddy/lab-engine/internal/catalog"
	"github.com/pdiddy/lab-engine/pkg/types"
)

// defaultWeight is applied to tests absent from the weight table.
const defaultWeight = 3

// Scorer accumulates a 0-100 composite risk score over a panel of
// results, weighting each abnormal finding by clinical importance and
// by how far it sits from the reference midpoint.
type Scorer struct {
	cat     *catalog.Catalog
	weights []types.WeightEntry
}

// NewScorer builds a Scorer backed by the catalog's reference ranges
// and its ordered weight table.
func NewScorer(cat *catalog.Catalog) *Scorer {
	return &Scorer{cat: cat, weights: cat.Weights()}
}

// Score folds a result set into the composite score and its level
// band. Normal results contribute nothing. A result with a resolvable
// reference range contributes weight * deviation * factor, where
// deviation is the distance from the range midpoint in half-range
// units and the factor is 2.5 for critical and 1.2 for abnormal
// findings. Without a range the contribution degrades to a flat
// weight * 2 for critical and weight * 1 for abnormal. The score is
// clamped to 100 and rounded to one decimal.
func (s *Scorer) Score(results []types.ExtractedResult) (float64, types.RiskLevel) {
	score := 0.0

	for _, r := range results {
		if r.TestName == "" {
			continue
		}
		weight := s.weightFor(r.TestName)
		rng, ok := s.cat.LookupNormalized(r.TestName)
		if !ok {
			switch r.Severity {
			case types.SeverityCritical:
				score += weight * 2
			case types.SeverityAbnormal:
				score += weight
			}
			continue
		}

		mid := (rng.Min + rng.Max) / 2
		half := (rng.Max - rng.Min) / 2
		if half == 0 {
			half = 1
		}
		deviation := math.Abs(r.Value-mid) / half

		switch r.Severity {
		case types.SeverityCritical:
			score += weight * deviation * 2.5
		case types.SeverityAbnormal:
			score += weight * deviation * 1.2
		}
	}

	score = math.Min(100.0, math.Round(score*10)/10)
	return score, LevelFor(score)
}

// weightFor resolves a test's clinical weight: exact table hit first,
// then the first table entry whose key and the normalized name contain
// each other in either direction. Table order decides fuzzy ties, so
// the weight table is an ordered list rather than a map.
func (s *Scorer) weightFor(name string) float64 {
	for _, w := range s.weights {
		if w.Name == name {
			return w.Weight
		}
	}
	norm := catalog.NormalizeName(name)
	for _, w := range s.weights {
		key := strings.ToLower(w.Name)
		if strings.Contains(norm, key) || strings.Contains(key, norm) {
			return w.Weight
		}
	}
	return defaultWeight
}

// LevelFor maps a composite score onto its risk band.
func LevelFor(score float64) types.RiskLevel {
	switch {
	case score >= 70:
		return types.RiskCritical
	case score >= 40:
		return types.RiskHigh
	case score >= 15:
		return types.RiskModerate
	default:
		return types.RiskLow
	}
}
