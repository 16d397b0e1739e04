// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package risk

import (
	"testing"

	"github.com/pdiddy/lab-engine/pkg/types"
)

func TestVectorizeEmptyIsNeutral(t *testing.T) {
	v := NewVectorizer(nil)

	vec := v.Vectorize(nil)
	if len(vec) != types.RiskVectorDim {
		t.Fatalf("vector length = %d, want %d", len(vec), types.RiskVectorDim)
	}
	for i, val := range vec {
		if val != 0.5 {
			t.Errorf("element %d = %g, want neutral 0.5", i, val)
		}
	}
}

func TestVectorizeNormalization(t *testing.T) {
	v := NewVectorizer(nil)

	vec := v.Vectorize([]types.ExtractedResult{
		{TestName: "Glucose", Value: 120},
		{TestName: "Hb A1c (TURB)", Value: 5},
		{TestName: "HDL Cholesterol, direct", Value: 55},
		{TestName: "Triglycerides", Value: 600},
	})

	// Slot order: Triglycerides, HDL, LDL, Cholesterol, Glucose, HbA1c,
	// Creatinine, Albumin.
	if vec[0] != 1.0 {
		t.Errorf("Triglycerides 600 over bounds 0-500 = %g, want clamped 1.0", vec[0])
	}
	if vec[1] != 0.4375 {
		t.Errorf("HDL 55 in 20-100 = %g, want 0.4375", vec[1])
	}
	if vec[4] != 0.2 {
		t.Errorf("Glucose 120 in 50-400 = %g, want 0.2", vec[4])
	}
	if vec[5] != 0.375 {
		t.Errorf("HbA1c 5 in 2-10 = %g, want 0.375", vec[5])
	}
	// Missing biomarkers stay at the midpoint.
	for _, i := range []int{2, 3, 6, 7} {
		if vec[i] != 0.5 {
			t.Errorf("missing biomarker slot %d = %g, want 0.5", i, vec[i])
		}
	}
}

func TestVectorizePlainCholesterolDoesNotMatch(t *testing.T) {
	v := NewVectorizer(nil)

	// The Cholesterol slot only claims "total" variants; a bare
	// "Cholesterol" result must not fill it.
	vec := v.Vectorize([]types.ExtractedResult{
		{TestName: "Cholesterol", Value: 150},
		{TestName: "Cholesterol, total", Value: 250},
	})
	if vec[3] != 0.75 {
		t.Errorf("Cholesterol slot = %g, want 0.75 from the total variant (250 in 100-300)", vec[3])
	}
}

func TestVectorizeMonotonic(t *testing.T) {
	v := NewVectorizer(nil)

	low := v.Vectorize([]types.ExtractedResult{{TestName: "Glucose", Value: 80}})
	high := v.Vectorize([]types.ExtractedResult{{TestName: "Glucose", Value: 300}})
	if low[4] >= high[4] {
		t.Errorf("glucose 80 (%g) should normalize below glucose 300 (%g)", low[4], high[4])
	}
}

func TestVectorizeSubstringUsesFirstResult(t *testing.T) {
	v := NewVectorizer(nil)

	// Two triglyceride variants: substring matching takes the first in
	// result order.
	vec := v.Vectorize([]types.ExtractedResult{
		{TestName: "Triglycerides (PHO)", Value: 100},
		{TestName: "Serum Triglycerides", Value: 400},
	})
	if vec[0] != 0.2 {
		t.Errorf("Triglycerides slot = %g, want 0.2 from the first variant", vec[0])
	}
}
