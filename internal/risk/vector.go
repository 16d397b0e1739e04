// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package risk derives the similarity vector and composite risk score
// from an extracted result set.
package risk

import (
	"math"
	"strings"

	"github.com/pdiddy/lab-engine/internal/catalog"
	"github.com/pdiddy/lab-engine/pkg/types"
)

// Biomarker is one slot of the risk vector: a canonical name, the
// keywords that claim results for it, and the clinical bounds used for
// normalization.
type Biomarker struct {
	Canonical string   `json:"canonical" yaml:"canonical"`
	Keywords  []string `json:"keywords" yaml:"keywords"`
	Lo        float64  `json:"lo" yaml:"lo"`
	Hi        float64  `json:"hi" yaml:"hi"`
}

// DefaultBiomarkers returns the curated 8-slot vector definition. The
// slot order is fixed: vectors from different reports must stay
// element-wise comparable.
func DefaultBiomarkers() []Biomarker {
	return []Biomarker{
		{Canonical: "Triglycerides", Keywords: []string{"triglyceride"}, Lo: 0.0, Hi: 500.0},
		{Canonical: "HDL", Keywords: []string{"hdl"}, Lo: 20.0, Hi: 100.0},
		{Canonical: "LDL", Keywords: []string{"ldl"}, Lo: 0.0, Hi: 200.0},
		{Canonical: "Cholesterol", Keywords: []string{"cholesterol, total", "total cholesterol"}, Lo: 100.0, Hi: 300.0},
		{Canonical: "Glucose", Keywords: []string{"glucose"}, Lo: 50.0, Hi: 400.0},
		{Canonical: "HbA1c", Keywords: []string{"hb a1c", "hba1c", "a1c"}, Lo: 2.0, Hi: 10.0},
		{Canonical: "Creatinine", Keywords: []string{"creatinine"}, Lo: 0.4, Hi: 5.0},
		{Canonical: "Albumin", Keywords: []string{"albumin"}, Lo: 2.0, Hi: 5.5},
	}
}

// Vectorizer maps result sets onto fixed-dimension normalized vectors.
type Vectorizer struct {
	fields []Biomarker
}

// NewVectorizer builds a Vectorizer over the given biomarker slots, or
// the default curated set when fields is nil.
func NewVectorizer(fields []Biomarker) *Vectorizer {
	if fields == nil {
		fields = DefaultBiomarkers()
	}
	return &Vectorizer{fields: fields}
}

// namedValue pairs a normalized test name with its measured value,
// preserving result order so substring matching stays deterministic.
type namedValue struct {
	norm  string
	value float64
}

// Vectorize converts a result set into the normalized vector. For each
// slot: exact normalized-name match first, then substring containment;
// the first matching keyword wins. A biomarker absent from the report
// contributes the range midpoint, which normalizes to exactly 0.5, so
// missing data stays neutral instead of dragging similarity to an
// extreme. Every element is clamped to [0,1].
func (v *Vectorizer) Vectorize(results []types.ExtractedResult) []float64 {
	exact := make(map[string]float64, len(results))
	var ordered []namedValue
	for _, r := range results {
		if r.TestName == "" {
			continue
		}
		norm := catalog.NormalizeName(r.TestName)
		if _, ok := exact[norm]; !ok {
			ordered = append(ordered, namedValue{norm: norm, value: r.Value})
		} else {
			for i := range ordered {
				if ordered[i].norm == norm {
					ordered[i].value = r.Value
					break
				}
			}
		}
		exact[norm] = r.Value
	}

	vector := make([]float64, 0, len(v.fields))
	for _, bm := range v.fields {
		val, found := lookupBiomarker(bm, exact, ordered)
		if !found {
			val = (bm.Lo + bm.Hi) / 2
		}
		normalized := (val - bm.Lo) / (bm.Hi - bm.Lo)
		normalized = math.Min(1.0, math.Max(0.0, normalized))
		vector = append(vector, math.Round(normalized*10000)/10000)
	}
	return vector
}

func lookupBiomarker(bm Biomarker, exact map[string]float64, ordered []namedValue) (float64, bool) {
	for _, kw := range bm.Keywords {
		kwLower := strings.ToLower(kw)
		if val, ok := exact[kwLower]; ok {
			return val, true
		}
		for _, nv := range ordered {
			if strings.Contains(nv.norm, kwLower) {
				return nv.value, true
			}
		}
	}
	return 0, false
}
