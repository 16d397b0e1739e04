// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lab-engine/internal/catalog"
	"github.com/pdiddy/lab-engine/internal/labstore"
	"github.com/pdiddy/lab-engine/internal/report"
	"github.com/pdiddy/lab-engine/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process [text files...]",
	Short: "Extract and score lab results from converted report text",
	Long: `Process runs converted report text through the full pipeline:
measurement extraction against the reference catalog, severity grading,
abnormal and critical flagging, biomarker risk vector computation, and
composite risk scoring. With --save the resulting documents are written
to the lab store; otherwise they are printed as JSON.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().String("patient", "", "patient ID to associate the reports with")
	processCmd.Flags().String("catalog", "", "reference catalog YAML (default: embedded table)")
	processCmd.Flags().Bool("save", false, "save processed documents to the lab store")
	processCmd.Flags().String("data-dir", "data", "base directory for the lab store")
	processCmd.MarkFlagRequired("patient")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	patientID, _ := cmd.Flags().GetString("patient")
	catalogPath, _ := cmd.Flags().GetString("catalog")
	save, _ := cmd.Flags().GetBool("save")
	dataDir, _ := cmd.Flags().GetString("data-dir")

	cat, err := catalog.Load(types.CatalogConfig{Path: catalogPath})
	if err != nil {
		return err
	}
	processor := report.NewProcessor(cat, types.ExtractionConfig{})

	var store *labstore.Store
	if save {
		store, err = labstore.NewStore(types.StoreConfig{DataDir: dataDir})
		if err != nil {
			return err
		}
		defer store.Close()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	var failed int
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed:  %s (%v)\n", path, err)
			failed++
			continue
		}

		doc, err := processor.Process(string(data), report.Meta{
			PatientID:  patientID,
			SourceFile: filepath.Base(path),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed:  %s (%v)\n", path, err)
			failed++
			continue
		}

		if save {
			id, err := store.SaveReport(context.Background(), doc)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed:  %s (%v)\n", path, err)
				failed++
				continue
			}
			fmt.Printf("saved: %s as %s (%d results, risk %s %.1f)\n",
				filepath.Base(path), id, len(doc.Results), doc.RiskLevel, doc.RiskScore)
			continue
		}

		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding document: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d report(s) failed processing", failed)
	}
	return nil
}
