// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lab-engine/internal/convert"
	"github.com/pdiddy/lab-engine/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [reports...]",
	Short: "Convert PDF lab reports to plain text",
	Long: `Convert extracts plain text from PDF lab reports, writing one .txt
file per report under the reports directory. Already-converted reports
are skipped. With --batch it processes every PDF under reports/raw/.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("reports-dir", "reports", "base directory for reports (contains raw/, text/)")
	convertCmd.Flags().Bool("batch", false, "process all PDFs in reports-dir/raw/")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	reportsDir, _ := cmd.Flags().GetString("reports-dir")
	batch, _ := cmd.Flags().GetBool("batch")
	cfg := types.ConversionConfig{ReportsDir: reportsDir}

	paths := args
	if batch {
		rawDir := filepath.Join(reportsDir, "raw")
		entries, err := os.ReadDir(rawDir)
		if err != nil {
			return fmt.Errorf("reading %s: %w", rawDir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				continue
			}
			paths = append(paths, filepath.Join(rawDir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("no reports to convert: pass file paths or use --batch")
	}

	result := convert.ConvertBatch(convert.NewPDFTextConverter(), paths, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d report(s) failed conversion", result.Failed)
	}
	return nil
}
