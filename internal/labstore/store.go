// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package labstore persists processed lab reports in SQLite and answers
// patient-history queries over them.
package labstore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/lab-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "labs.db"
)

// Store manages the lab history SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// NewStore opens or creates the lab database at dataDir/index/labs.db,
// creating the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dataDir:    cfg.DataDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			patient_id TEXT NOT NULL,
			test_date TEXT NOT NULL,
			test_type TEXT,
			lab_name TEXT,
			report_text TEXT,
			abnormal_flags TEXT,
			critical_flags TEXT,
			processed_at TEXT,
			source_file TEXT,
			risk_vector TEXT,
			risk_score REAL,
			risk_level TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id TEXT NOT NULL REFERENCES reports(id),
			test_name TEXT NOT NULL,
			value REAL NOT NULL,
			unit TEXT,
			reference_min REAL,
			reference_max REAL,
			is_abnormal INTEGER NOT NULL,
			severity TEXT NOT NULL,
			deviation_pct REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_patient ON reports(patient_id, test_date)`,
		`CREATE INDEX IF NOT EXISTS idx_results_report ON results(report_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_severity ON results(severity)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	return nil
}

// ReportID derives the stable identifier a document is stored under.
// Reprocessing the same file for the same patient and date overwrites
// the earlier row instead of duplicating it.
func ReportID(doc *types.ReportDocument) string {
	h := sha256.Sum256([]byte(doc.PatientID + "|" + doc.TestDate.Format("2006-01-02") + "|" + doc.SourceFile))
	return hex.EncodeToString(h[:])[:12]
}

// SaveReport upserts a processed document and its result rows,
// returning the stored report ID.
func (s *Store) SaveReport(ctx context.Context, doc *types.ReportDocument) (string, error) {
	id := ReportID(doc)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE report_id = ?`, id); err != nil {
		return "", fmt.Errorf("deleting old results: %w", err)
	}

	abnormalJSON, _ := json.Marshal(doc.AbnormalFlags)
	criticalJSON, _ := json.Marshal(doc.CriticalFlags)
	vectorJSON, _ := json.Marshal(doc.RiskVector)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reports (id, patient_id, test_date, test_type, lab_name, report_text,
			abnormal_flags, critical_flags, processed_at, source_file,
			risk_vector, risk_score, risk_level)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			patient_id=excluded.patient_id, test_date=excluded.test_date,
			test_type=excluded.test_type, lab_name=excluded.lab_name,
			report_text=excluded.report_text, abnormal_flags=excluded.abnormal_flags,
			critical_flags=excluded.critical_flags, processed_at=excluded.processed_at,
			source_file=excluded.source_file, risk_vector=excluded.risk_vector,
			risk_score=excluded.risk_score, risk_level=excluded.risk_level`,
		id, doc.PatientID, doc.TestDate.Format(time.RFC3339), doc.TestType,
		doc.LabName, doc.ReportText, string(abnormalJSON), string(criticalJSON),
		doc.ProcessedAt.Format(time.RFC3339), doc.SourceFile,
		string(vectorJSON), doc.RiskScore, string(doc.RiskLevel),
	)
	if err != nil {
		return "", fmt.Errorf("upserting report: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (report_id, test_name, value, unit, reference_min, reference_max,
			is_abnormal, severity, deviation_pct)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range doc.Results {
		var dev sql.NullFloat64
		if r.DeviationPct != nil {
			dev = sql.NullFloat64{Float64: *r.DeviationPct, Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			id, r.TestName, r.Value, r.Unit, r.ReferenceMin, r.ReferenceMax,
			boolToInt(r.IsAbnormal), string(r.Severity), dev,
		)
		if err != nil {
			return "", fmt.Errorf("inserting result %s: %w", r.TestName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing report: %w", err)
	}
	return id, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
