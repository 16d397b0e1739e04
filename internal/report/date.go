// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"regexp"
	"strings"
	"time"
)

// datePattern pairs a locator regexp with the layouts its matches are
// parsed against. Layouts are tried in order; slashed dates prefer the
// day-first reading and fall back to month-first when the day field
// cannot be a day.
type datePattern struct {
	re      *regexp.Regexp
	layouts []string
}

var datePatterns = []datePattern{
	{
		re:      regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`),
		layouts: []string{"02.01.2006"},
	},
	{
		re:      regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),
		layouts: []string{"2/1/2006", "1/2/2006"},
	},
	{
		re:      regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
		layouts: []string{"2006-01-02"},
	},
	{
		re:      regexp.MustCompile(`(?i)(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2},?\s+\d{4}`),
		layouts: []string{"Jan 2, 2006", "Jan 2 2006"},
	},
}

// extractDate returns the first parseable date found in the text, or
// the current time when the report carries none.
func extractDate(text string, now func() time.Time) time.Time {
	for _, p := range datePatterns {
		m := p.re.FindString(text)
		if m == "" {
			continue
		}
		// time.Parse wants month abbreviations capitalized exactly.
		if len(m) >= 3 && (m[0] < '0' || m[0] > '9') {
			m = strings.ToUpper(m[:1]) + strings.ToLower(m[1:3]) + m[3:]
		}
		for _, layout := range p.layouts {
			if t, err := time.Parse(layout, m); err == nil {
				return t
			}
		}
	}
	return now()
}
