// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "github.com/pdiddy/lab-engine/pkg/types"

// Classify grades a value against a reference range. Critical bounds are
// checked before the normal interval, so a critically high value is never
// downgraded to merely abnormal. With no range at all the value is normal
// unless an upstream hint already marked it worse.
func Classify(value float64, rng *types.ReferenceRange, hint types.Severity) types.Severity {
	if rng == nil {
		if hint == types.SeverityCritical || hint == types.SeverityAbnormal {
			return hint
		}
		return types.SeverityNormal
	}
	if rng.CriticalHigh != nil && value > *rng.CriticalHigh {
		return types.SeverityCritical
	}
	if rng.CriticalLow != nil && value < *rng.CriticalLow {
		return types.SeverityCritical
	}
	if value < rng.Min || value > rng.Max {
		return types.SeverityAbnormal
	}
	return types.SeverityNormal
}
