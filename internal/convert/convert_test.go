// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/lab-engine/pkg/types"
)

// fakeConverter implements Converter for testing. It returns canned text
// or an error, depending on configuration.
type fakeConverter struct {
	output string
	err    error
}

func (f *fakeConverter) Convert(path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

// setupPDF creates a temporary PDF file and returns its path and the temp dir.
func setupPDF(t *testing.T) (pdfPath, tmpDir string) {
	t.Helper()
	tmpDir = t.TempDir()
	rawDir := filepath.Join(tmpDir, "raw")
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		t.Fatal(err)
	}
	pdfPath = filepath.Join(rawDir, "panel-2026-01.pdf")
	if err := os.WriteFile(pdfPath, []byte("fake pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	return pdfPath, tmpDir
}

func TestConvertReport(t *testing.T) {
	tests := []struct {
		name       string
		converter  *fakeConverter
		preCreate  bool // create output text before running
		wantStatus Status
		wantLog    string
	}{
		{
			name:       "successful conversion",
			converter:  &fakeConverter{output: "Glucose 95 normal mg/dL 70-100"},
			wantStatus: StatusDone,
			wantLog:    "converted:",
		},
		{
			name:       "skip existing text",
			converter:  &fakeConverter{output: "should not be called"},
			preCreate:  true,
			wantStatus: StatusSkipped,
			wantLog:    "skipped:",
		},
		{
			name:       "conversion failure",
			converter:  &fakeConverter{err: errors.New("damaged file")},
			wantStatus: StatusFailed,
			wantLog:    "failed:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdfPath, tmpDir := setupPDF(t)

			if tt.preCreate {
				txtDir := filepath.Join(tmpDir, "text")
				if err := os.MkdirAll(txtDir, 0o755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(filepath.Join(txtDir, "panel-2026-01.txt"), []byte("existing"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			var log bytes.Buffer
			status := ConvertReport(tt.converter, pdfPath, types.ConversionConfig{ReportsDir: tmpDir}, &log)

			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if !strings.Contains(log.String(), tt.wantLog) {
				t.Errorf("log output %q does not contain %q", log.String(), tt.wantLog)
			}

			if tt.wantStatus == StatusDone {
				data, err := os.ReadFile(filepath.Join(tmpDir, "text", "panel-2026-01.txt"))
				if err != nil {
					t.Fatalf("reading output: %v", err)
				}
				if string(data) != tt.converter.output {
					t.Errorf("output = %q, want %q", data, tt.converter.output)
				}
			}
		})
	}
}

func TestConvertBatch(t *testing.T) {
	tmpDir := t.TempDir()
	rawDir := filepath.Join(tmpDir, "raw")
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		t.Fatal(err)
	}

	var paths []string
	for _, name := range []string{"one.pdf", "two.pdf", "three.pdf"} {
		p := filepath.Join(rawDir, name)
		if err := os.WriteFile(p, []byte("pdf"), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}

	// Pre-create output for the second file so it is skipped.
	txtDir := filepath.Join(tmpDir, "text")
	if err := os.MkdirAll(txtDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(txtDir, "two.txt"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	var log bytes.Buffer
	result := ConvertBatch(&fakeConverter{output: "text"}, paths, types.ConversionConfig{ReportsDir: tmpDir}, &log)

	if result.Converted != 2 || result.Skipped != 1 || result.Failed != 0 {
		t.Errorf("result = %+v, want 2 converted, 1 skipped, 0 failed", result)
	}
	if result.Total() != 3 {
		t.Errorf("Total() = %d, want 3", result.Total())
	}
	if result.HasFailures() {
		t.Error("HasFailures() should be false")
	}
	if !strings.Contains(log.String(), "Batch summary: 2 converted, 1 skipped, 0 failed") {
		t.Errorf("missing batch summary in %q", log.String())
	}
}

func TestConvertBatchReportsFailures(t *testing.T) {
	tmpDir := t.TempDir()
	p := filepath.Join(tmpDir, "broken.pdf")
	if err := os.WriteFile(p, []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	var log bytes.Buffer
	result := ConvertBatch(&fakeConverter{err: errors.New("unreadable")}, []string{p}, types.ConversionConfig{ReportsDir: tmpDir}, &log)

	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
	if !result.HasFailures() {
		t.Error("HasFailures() should be true")
	}
}
