// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package labstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes the stored panel history to dataDir/index/export.yaml.
// An empty patientID exports every patient.
func (s *Store) ExportYAML(ctx context.Context, patientID string) error {
	reports, err := s.exportReports(ctx, patientID)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dataDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(reports)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the stored panel history to dataDir/index/export.json.
// An empty patientID exports every patient.
func (s *Store) ExportJSON(ctx context.Context, patientID string) error {
	reports, err := s.exportReports(ctx, patientID)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dataDir, indexDir, "export.json")
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportReports(ctx context.Context, patientID string) ([]StoredReport, error) {
	query := `SELECT id, patient_id, test_date, test_type, lab_name,
			abnormal_flags, critical_flags, risk_score, risk_level
		 FROM reports`
	args := []any{}
	if patientID != "" {
		query += ` WHERE patient_id = ?`
		args = append(args, patientID)
	}
	query += ` ORDER BY patient_id, test_date LIMIT ?`
	args = append(args, exportLimit)

	reports, err := s.fetchReports(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	return reports, nil
}

// decodeStrings unpacks a JSON string array column, tolerating empty
// and null values left by older rows.
func decodeStrings(raw string) []string {
	if raw == "" || raw == "null" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
