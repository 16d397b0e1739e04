// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package labstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lab-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.StoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testDoc(patientID, source string, date time.Time, results []types.ExtractedResult) *types.ReportDocument {
	var abnormal, critical []string
	for _, r := range results {
		if r.IsAbnormal {
			abnormal = append(abnormal, r.TestName)
		}
		if r.Severity == types.SeverityCritical {
			critical = append(critical, r.TestName)
		}
	}
	return &types.ReportDocument{
		PatientID:     patientID,
		TestDate:      date,
		TestType:      "Lab Panel",
		LabName:       "Test Laboratory",
		Results:       results,
		ReportText:    "report text",
		AbnormalFlags: abnormal,
		CriticalFlags: critical,
		ProcessedAt:   date.Add(time.Hour),
		SourceFile:    source,
		RiskVector:    []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
		RiskScore:     12.5,
		RiskLevel:     types.RiskLow,
	}
}

func day(n int) time.Time {
	return time.Date(2026, 1, n, 0, 0, 0, 0, time.UTC)
}

func glucose(value float64, severity types.Severity) types.ExtractedResult {
	return types.ExtractedResult{
		TestName:     "Glucose",
		Value:        value,
		Unit:         "mg/dL",
		ReferenceMin: 70,
		ReferenceMax: 100,
		IsAbnormal:   value < 70 || value > 100,
		Severity:     severity,
	}
}

func TestSaveReportIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDoc("p1", "a.txt", day(1), []types.ExtractedResult{glucose(95, types.SeverityNormal)})

	id1, err := store.SaveReport(ctx, doc)
	require.NoError(t, err)

	// Same patient, date, and file: same ID, no duplicate rows.
	doc.Results = []types.ExtractedResult{glucose(97, types.SeverityNormal)}
	id2, err := store.SaveReport(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	reports, err := store.RecentLabs(ctx, "p1", 10)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Results, 1)
	assert.Equal(t, 97.0, reports[0].Results[0].Value)
}

func TestReportIDDistinguishesInputs(t *testing.T) {
	a := testDoc("p1", "a.txt", day(1), nil)
	b := testDoc("p1", "b.txt", day(1), nil)
	c := testDoc("p2", "a.txt", day(1), nil)

	assert.NotEqual(t, ReportID(a), ReportID(b))
	assert.NotEqual(t, ReportID(a), ReportID(c))
	assert.Len(t, ReportID(a), 12)
}

func TestPatientSummary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveReport(ctx, testDoc("p1", "a.txt", day(1),
		[]types.ExtractedResult{glucose(95, types.SeverityNormal)}))
	require.NoError(t, err)
	_, err = store.SaveReport(ctx, testDoc("p1", "b.txt", day(10),
		[]types.ExtractedResult{glucose(150, types.SeverityAbnormal)}))
	require.NoError(t, err)
	_, err = store.SaveReport(ctx, testDoc("p1", "c.txt", day(20),
		[]types.ExtractedResult{glucose(450, types.SeverityCritical)}))
	require.NoError(t, err)

	summary, err := store.PatientSummary(ctx, "p1")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalPanels)
	assert.Equal(t, 2, summary.AbnormalPanels)
	assert.Equal(t, 1, summary.CriticalPanels)
	assert.Equal(t, day(1), summary.FirstTestDate)
	assert.Equal(t, day(20), summary.LastTestDate)

	_, err = store.PatientSummary(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRecentLabsOrderAndLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, d := range []int{1, 5, 9} {
		doc := testDoc("p1", []string{"a.txt", "b.txt", "c.txt"}[i], day(d),
			[]types.ExtractedResult{glucose(90+float64(i), types.SeverityNormal)})
		_, err := store.SaveReport(ctx, doc)
		require.NoError(t, err)
	}

	reports, err := store.RecentLabs(ctx, "p1", 2)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, day(9), reports[0].TestDate)
	assert.Equal(t, day(5), reports[1].TestDate)

	_, err = store.RecentLabs(ctx, "nobody", 5)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAnalyzeTrends(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Glucose rising sharply: 80, 100, 150. Latest 150 vs mean 110 is a
	// 36% jump; percent change from earliest is 87.5%.
	values := []float64{80, 100, 150}
	for i, v := range values {
		doc := testDoc("p1", []string{"a.txt", "b.txt", "c.txt"}[i], day(i*5+1),
			[]types.ExtractedResult{
				glucose(v, types.SeverityNormal),
				{TestName: "Creatinine", Value: 0.9, ReferenceMin: 0.5, ReferenceMax: 1.2, Severity: types.SeverityNormal},
			})
		_, err := store.SaveReport(ctx, doc)
		require.NoError(t, err)
	}

	report, err := store.AnalyzeTrends(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, report.Trends, 2)

	// Largest absolute change sorts first.
	g := report.Trends[0]
	assert.Equal(t, "Glucose", g.TestName)
	assert.Equal(t, TrendSharplyUp, g.Direction)
	assert.Equal(t, 87.5, g.PercentChange)
	assert.Equal(t, 150.0, g.LatestValue)
	assert.Equal(t, 80.0, g.EarliestValue)
	assert.Equal(t, 110.0, g.AverageValue)
	assert.Equal(t, 3, g.DataPoints)

	c := report.Trends[1]
	assert.Equal(t, "Creatinine", c.TestName)
	assert.Equal(t, TrendStable, c.Direction)

	require.Len(t, report.Concerning, 1)
	assert.Equal(t, "Glucose", report.Concerning[0].TestName)
	assert.Contains(t, report.Summary, "Glucose")

	_, err = store.AnalyzeTrends(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestTrendDirectionBuckets(t *testing.T) {
	tests := []struct {
		name   string
		latest float64
		avg    float64
		want   string
	}{
		{"sharply up", 120, 100, TrendSharplyUp},
		{"slightly up", 108, 100, TrendSlightlyUp},
		{"stable high side", 104, 100, TrendStable},
		{"stable low side", 96, 100, TrendStable},
		{"slightly down", 92, 100, TrendSlightlyDown},
		{"sharply down", 80, 100, TrendSharplyDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trendDirection(tt.latest, tt.avg))
		})
	}
}

func TestCriticalValues(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDoc("p1", "a.txt", day(1), []types.ExtractedResult{
		glucose(95, types.SeverityNormal),
		{TestName: "Potassium", Value: 7.0, Unit: "mEq/L", ReferenceMin: 3.5, ReferenceMax: 5.0,
			IsAbnormal: true, Severity: types.SeverityCritical},
	})
	_, err := store.SaveReport(ctx, doc)
	require.NoError(t, err)

	report, err := store.CriticalValues(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, report.Values, 1)

	cv := report.Values[0]
	assert.Equal(t, "Potassium", cv.TestName)
	assert.Equal(t, "40% above normal", cv.Deviation)
	assert.True(t, report.AlertRequired)
	assert.Equal(t, "medium", report.Urgency)
	assert.Contains(t, report.AlertMessage, "URGENT")
	assert.Contains(t, report.AlertMessage, "Potassium")
}

func TestCriticalValuesNone(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveReport(ctx, testDoc("p1", "a.txt", day(1),
		[]types.ExtractedResult{glucose(95, types.SeverityNormal)}))
	require.NoError(t, err)

	report, err := store.CriticalValues(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, report.Values)
	assert.False(t, report.AlertRequired)
	assert.Empty(t, report.AlertMessage)
}

func TestCriticalUrgencyEscalates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	crit := func(name string, value float64) types.ExtractedResult {
		return types.ExtractedResult{TestName: name, Value: value, ReferenceMin: 1,
			ReferenceMax: 2, IsAbnormal: true, Severity: types.SeverityCritical}
	}
	doc := testDoc("p1", "a.txt", day(1), []types.ExtractedResult{
		crit("Alpha", 10), crit("Beta", 10), crit("Gamma", 10),
	})
	_, err := store.SaveReport(ctx, doc)
	require.NoError(t, err)

	report, err := store.CriticalValues(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, report.Values, 3)
	assert.Equal(t, "high", report.Urgency)
	assert.Contains(t, report.AlertMessage, "3 critical values")
}

func TestExport(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveReport(ctx, testDoc("p1", "a.txt", day(1),
		[]types.ExtractedResult{glucose(95, types.SeverityNormal)}))
	require.NoError(t, err)
	_, err = store.SaveReport(ctx, testDoc("p2", "b.txt", day(2),
		[]types.ExtractedResult{glucose(120, types.SeverityAbnormal)}))
	require.NoError(t, err)

	require.NoError(t, store.ExportYAML(ctx, ""))
	require.NoError(t, store.ExportJSON(ctx, "p1"))

	yamlData, err := os.ReadFile(filepath.Join(store.dataDir, indexDir, "export.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(yamlData), "p1")
	assert.Contains(t, string(yamlData), "p2")

	jsonData, err := os.ReadFile(filepath.Join(store.dataDir, indexDir, "export.json"))
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), "p1")
	assert.NotContains(t, string(jsonData), "p2")
}
