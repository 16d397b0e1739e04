// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package labstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/lab-engine/pkg/types"
)

// ErrNoData is returned by queries when the patient has no stored
// reports matching the request.
var ErrNoData = errors.New("no lab data for patient")

// Summary aggregates a patient's stored history.
type Summary struct {
	PatientID      string    `json:"patient_id" yaml:"patient_id"`
	TotalPanels    int       `json:"total_panels" yaml:"total_panels"`
	AbnormalPanels int       `json:"abnormal_panels" yaml:"abnormal_panels"`
	CriticalPanels int       `json:"critical_panels" yaml:"critical_panels"`
	FirstTestDate  time.Time `json:"first_test_date" yaml:"first_test_date"`
	LastTestDate   time.Time `json:"last_test_date" yaml:"last_test_date"`
}

// PatientSummary counts a patient's panels and the span of dates they
// cover, plus how many panels carried abnormal or critical findings.
func (s *Store) PatientSummary(ctx context.Context, patientID string) (*Summary, error) {
	var (
		total       int
		first, last string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MIN(test_date), ''), COALESCE(MAX(test_date), '')
		 FROM reports WHERE patient_id = ?`, patientID,
	).Scan(&total, &first, &last)
	if err != nil {
		return nil, fmt.Errorf("querying summary: %w", err)
	}
	if total == 0 {
		return nil, fmt.Errorf("patient %s: %w", patientID, ErrNoData)
	}

	summary := &Summary{PatientID: patientID, TotalPanels: total}
	summary.FirstTestDate, _ = time.Parse(time.RFC3339, first)
	summary.LastTestDate, _ = time.Parse(time.RFC3339, last)

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reports WHERE patient_id = ? AND abnormal_flags NOT IN ('', 'null', '[]')`,
		patientID,
	).Scan(&summary.AbnormalPanels)
	if err != nil {
		return nil, fmt.Errorf("counting abnormal panels: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reports WHERE patient_id = ? AND critical_flags NOT IN ('', 'null', '[]')`,
		patientID,
	).Scan(&summary.CriticalPanels)
	if err != nil {
		return nil, fmt.Errorf("counting critical panels: %w", err)
	}

	return summary, nil
}

// StoredReport is one panel fetched back out of the store.
type StoredReport struct {
	ID            string                  `json:"id" yaml:"id"`
	PatientID     string                  `json:"patient_id" yaml:"patient_id"`
	TestDate      time.Time               `json:"test_date" yaml:"test_date"`
	TestType      string                  `json:"test_type" yaml:"test_type"`
	LabName       string                  `json:"lab_name" yaml:"lab_name"`
	Results       []types.ExtractedResult `json:"results" yaml:"results"`
	AbnormalFlags []string                `json:"abnormal_flags" yaml:"abnormal_flags"`
	CriticalFlags []string                `json:"critical_flags" yaml:"critical_flags"`
	RiskScore     float64                 `json:"risk_score" yaml:"risk_score"`
	RiskLevel     types.RiskLevel         `json:"risk_level" yaml:"risk_level"`
}

// RecentLabs returns a patient's most recent panels, newest first,
// with their full result rows attached. A non-positive limit uses the
// store default.
func (s *Store) RecentLabs(ctx context.Context, patientID string, limit int) ([]StoredReport, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	reports, err := s.fetchReports(ctx,
		`SELECT id, patient_id, test_date, test_type, lab_name,
			abnormal_flags, critical_flags, risk_score, risk_level
		 FROM reports WHERE patient_id = ?
		 ORDER BY test_date DESC LIMIT ?`, patientID, limit)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("patient %s: %w", patientID, ErrNoData)
	}
	return reports, nil
}

func (s *Store) fetchReports(ctx context.Context, query string, args ...any) ([]StoredReport, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var reports []StoredReport
	for rows.Next() {
		var (
			r                  StoredReport
			dateStr            string
			abnormal, critical string
		)
		err := rows.Scan(&r.ID, &r.PatientID, &dateStr, &r.TestType, &r.LabName,
			&abnormal, &critical, &r.RiskScore, &r.RiskLevel)
		if err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		r.TestDate, _ = time.Parse(time.RFC3339, dateStr)
		r.AbnormalFlags = decodeStrings(abnormal)
		r.CriticalFlags = decodeStrings(critical)
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}

	for i := range reports {
		results, err := s.fetchResults(ctx, reports[i].ID)
		if err != nil {
			return nil, err
		}
		reports[i].Results = results
	}
	return reports, nil
}

func (s *Store) fetchResults(ctx context.Context, reportID string) ([]types.ExtractedResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT test_name, value, unit, reference_min, reference_max,
			is_abnormal, severity, deviation_pct
		 FROM results WHERE report_id = ? ORDER BY rowid`, reportID)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []types.ExtractedResult
	for rows.Next() {
		var (
			r        types.ExtractedResult
			abnormal int
			dev      sql.NullFloat64
		)
		err := rows.Scan(&r.TestName, &r.Value, &r.Unit, &r.ReferenceMin,
			&r.ReferenceMax, &abnormal, &r.Severity, &dev)
		if err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		r.IsAbnormal = abnormal != 0
		if dev.Valid {
			v := dev.Float64
			r.DeviationPct = &v
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Trend direction buckets, from latest value against the series mean.
const (
	TrendStable       = "stable"
	TrendSlightlyUp   = "slightly_increasing"
	TrendSharplyUp    = "significantly_increasing"
	TrendSlightlyDown = "slightly_decreasing"
	TrendSharplyDown  = "significantly_decreasing"
)

// Trend describes one test's trajectory across a patient's panels.
type Trend struct {
	TestName      string  `json:"test_name" yaml:"test_name"`
	LatestValue   float64 `json:"latest_value" yaml:"latest_value"`
	EarliestValue float64 `json:"earliest_value" yaml:"earliest_value"`
	AverageValue  float64 `json:"average_value" yaml:"average_value"`
	DataPoints    int     `json:"data_points" yaml:"data_points"`
	Direction     string  `json:"trend_direction" yaml:"trend_direction"`
	PercentChange float64 `json:"percent_change" yaml:"percent_change"`
}

// TrendReport holds the full trend analysis for a patient.
type TrendReport struct {
	PatientID  string  `json:"patient_id" yaml:"patient_id"`
	Trends     []Trend `json:"all_trends" yaml:"all_trends"`
	Concerning []Trend `json:"concerning_trends" yaml:"concerning_trends"`
	Summary    string  `json:"summary" yaml:"summary"`
}

// AnalyzeTrends walks every test a patient has at least two data points
// for and buckets its direction by comparing the latest value against
// the series mean: beyond 15 percent is significant, beyond 5 percent
// is slight, inside 5 percent is stable. Trends are ordered by absolute
// percent change, largest first.
func (s *Store) AnalyzeTrends(ctx context.Context, patientID string) (*TrendReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT res.test_name, res.value
		 FROM results res JOIN reports rep ON res.report_id = rep.id
		 WHERE rep.patient_id = ?
		 ORDER BY rep.test_date ASC, res.rowid ASC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("querying trend data: %w", err)
	}
	defer rows.Close()

	series := make(map[string][]float64)
	var order []string
	for rows.Next() {
		var (
			name  string
			value float64
		)
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scanning trend row: %w", err)
		}
		if _, ok := series[name]; !ok {
			order = append(order, name)
		}
		series[name] = append(series[name], value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trend rows: %w", err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("patient %s: %w", patientID, ErrNoData)
	}

	var trends []Trend
	for _, name := range order {
		values := series[name]
		if len(values) < 2 {
			continue
		}
		latest, earliest := values[len(values)-1], values[0]
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		avg := sum / float64(len(values))

		change := 0.0
		if earliest != 0 {
			change = (latest - earliest) / earliest * 100
		}

		trends = append(trends, Trend{
			TestName:      name,
			LatestValue:   math.Round(latest*100) / 100,
			EarliestValue: math.Round(earliest*100) / 100,
			AverageValue:  math.Round(avg*100) / 100,
			DataPoints:    len(values),
			Direction:     trendDirection(latest, avg),
			PercentChange: math.Round(change*10) / 10,
		})
	}

	sort.SliceStable(trends, func(i, j int) bool {
		return math.Abs(trends[i].PercentChange) > math.Abs(trends[j].PercentChange)
	})

	var concerning []Trend
	for _, t := range trends {
		if t.Direction == TrendSharplyUp || t.Direction == TrendSharplyDown {
			concerning = append(concerning, t)
		}
	}

	return &TrendReport{
		PatientID:  patientID,
		Trends:     trends,
		Concerning: concerning,
		Summary:    trendSummary(trends, concerning),
	}, nil
}

func trendDirection(latest, avg float64) string {
	switch {
	case latest > avg*1.15:
		return TrendSharplyUp
	case latest > avg*1.05:
		return TrendSlightlyUp
	case latest < avg*0.85:
		return TrendSharplyDown
	case latest < avg*0.95:
		return TrendSlightlyDown
	default:
		return TrendStable
	}
}

func trendSummary(trends, concerning []Trend) string {
	if len(concerning) == 0 {
		return fmt.Sprintf("All %d lab values are stable or showing minimal changes.", len(trends))
	}
	names := make([]string, 0, 3)
	for _, t := range concerning {
		names = append(names, t.TestName)
		if len(names) == 3 {
			break
		}
	}
	return fmt.Sprintf("Found %d concerning trends: %s", len(concerning), strings.Join(names, ", "))
}

// CriticalValue is one critical-severity result with its deviation
// described relative to the reference bounds.
type CriticalValue struct {
	TestDate     time.Time `json:"test_date" yaml:"test_date"`
	TestName     string    `json:"test_name" yaml:"test_name"`
	Value        float64   `json:"value" yaml:"value"`
	Unit         string    `json:"unit" yaml:"unit"`
	ReferenceMin float64   `json:"reference_min" yaml:"reference_min"`
	ReferenceMax float64   `json:"reference_max" yaml:"reference_max"`
	Deviation    string    `json:"deviation" yaml:"deviation"`
}

// CriticalReport lists a patient's recent critical findings and the
// alert they warrant.
type CriticalReport struct {
	PatientID     string          `json:"patient_id" yaml:"patient_id"`
	Values        []CriticalValue `json:"critical_values" yaml:"critical_values"`
	AlertRequired bool            `json:"alert_required" yaml:"alert_required"`
	Urgency       string          `json:"urgency,omitempty" yaml:"urgency,omitempty"`
	AlertMessage  string          `json:"alert_message,omitempty" yaml:"alert_message,omitempty"`
}

// CriticalValues pulls critical-severity results from a patient's ten
// most recent panels, newest first. More than two findings escalate
// the urgency from medium to high.
func (s *Store) CriticalValues(ctx context.Context, patientID string) (*CriticalReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rep.test_date, res.test_name, res.value, res.unit,
			res.reference_min, res.reference_max
		 FROM results res JOIN reports rep ON res.report_id = rep.id
		 WHERE rep.patient_id = ? AND res.severity = ?
		 ORDER BY rep.test_date DESC, res.rowid ASC
		 LIMIT 10`, patientID, string(types.SeverityCritical))
	if err != nil {
		return nil, fmt.Errorf("querying critical values: %w", err)
	}
	defer rows.Close()

	var values []CriticalValue
	for rows.Next() {
		var (
			cv      CriticalValue
			dateStr string
		)
		err := rows.Scan(&dateStr, &cv.TestName, &cv.Value, &cv.Unit,
			&cv.ReferenceMin, &cv.ReferenceMax)
		if err != nil {
			return nil, fmt.Errorf("scanning critical value: %w", err)
		}
		cv.TestDate, _ = time.Parse(time.RFC3339, dateStr)
		cv.Deviation = describeDeviation(cv.Value, cv.ReferenceMin, cv.ReferenceMax)
		values = append(values, cv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating critical values: %w", err)
	}

	report := &CriticalReport{PatientID: patientID}
	if len(values) == 0 {
		return report, nil
	}

	report.Values = values
	report.AlertRequired = true
	report.Urgency = "medium"
	if len(values) > 2 {
		report.Urgency = "high"
	}
	report.AlertMessage = criticalAlert(values)
	return report, nil
}

// describeDeviation phrases how far a value sits outside its bounds.
func describeDeviation(value, refMin, refMax float64) string {
	if value < refMin && refMin > 0 {
		pct := (refMin - value) / refMin * 100
		return fmt.Sprintf("%.0f%% below normal", pct)
	}
	if value > refMax && refMax > 0 {
		pct := (value - refMax) / refMax * 100
		return fmt.Sprintf("%.0f%% above normal", pct)
	}
	return "within range"
}

func criticalAlert(values []CriticalValue) string {
	if len(values) == 1 {
		return fmt.Sprintf("URGENT: %s critically %s", values[0].TestName, values[0].Deviation)
	}
	names := make([]string, 0, 3)
	for _, cv := range values {
		names = append(names, cv.TestName)
		if len(names) == 3 {
			break
		}
	}
	return fmt.Sprintf("URGENT: %d critical values detected: %s", len(values), strings.Join(names, ", "))
}
