// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements PDF-to-text conversion with pluggable backends.
package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/lab-engine/pkg/types"
)

// textDir is the subdirectory under the reports base for extracted text.
const textDir = "text"

// Status is the outcome of converting one report file.
type Status int

const (
	// StatusDone means the text file was produced.
	StatusDone Status = iota
	// StatusSkipped means the text output already existed.
	StatusSkipped
	// StatusFailed means the conversion errored.
	StatusFailed
)

// Converter transforms a report file into plain text. Different
// backends (native PDF parsing, external OCR output) implement this
// interface.
type Converter interface {
	// Convert reads a report at path and returns its plain text.
	Convert(path string) (string, error)
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of reports processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any reports failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertReport converts a single report file to plain text, writing
// the result under the configured reports directory. If the text
// output already exists, it skips conversion and returns StatusSkipped.
func ConvertReport(c Converter, path string, cfg types.ConversionConfig, w io.Writer) Status {
	outDir := filepath.Join(cfg.ReportsDir, textDir)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	txtPath := filepath.Join(outDir, base+".txt")

	if _, err := os.Stat(txtPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
		return StatusSkipped
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return StatusFailed
	}

	text, err := c.Convert(path)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return StatusFailed
	}

	if err := os.WriteFile(txtPath, []byte(text), 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return StatusFailed
	}

	fmt.Fprintf(w, "converted: %s\n", base)
	return StatusDone
}

// ConvertBatch processes a list of report files through the converter,
// printing per-file status to w and returning a summary.
func ConvertBatch(c Converter, paths []string, cfg types.ConversionConfig, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range paths {
		switch ConvertReport(c, p, cfg, w) {
		case StatusDone:
			result.Converted++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}
