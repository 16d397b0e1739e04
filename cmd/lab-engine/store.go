// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lab-engine/internal/labstore"
	"github.com/pdiddy/lab-engine/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Query the lab store (summary, recent, trends, critical, export)",
	Long: `Store answers questions over the processed panel history: per-patient
summaries, recent panels with full results, per-test trend analysis,
critical-value listings, and YAML/JSON export.`,
}

var storeSummaryCmd = &cobra.Command{
	Use:   "summary <patient-id>",
	Short: "Show panel counts and date span for a patient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		summary, err := store.PatientSummary(context.Background(), args[0])
		if err != nil {
			return err
		}
		return printJSON(summary)
	},
}

var storeRecentCmd = &cobra.Command{
	Use:   "recent <patient-id>",
	Short: "Show a patient's most recent panels with full results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		reports, err := store.RecentLabs(context.Background(), args[0], limit)
		if err != nil {
			return err
		}
		return printJSON(reports)
	},
}

var storeTrendsCmd = &cobra.Command{
	Use:   "trends <patient-id>",
	Short: "Analyze per-test trends across a patient's panels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		trends, err := store.AnalyzeTrends(context.Background(), args[0])
		if err != nil {
			return err
		}
		return printJSON(trends)
	},
}

var storeCriticalCmd = &cobra.Command{
	Use:   "critical <patient-id>",
	Short: "List a patient's recent critical values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		report, err := store.CriticalValues(context.Background(), args[0])
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored panel history to YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		patientID, _ := cmd.Flags().GetString("patient")
		format, _ := cmd.Flags().GetString("format")

		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		switch format {
		case "yaml":
			err = store.ExportYAML(context.Background(), patientID)
		case "json":
			err = store.ExportJSON(context.Background(), patientID)
		default:
			return fmt.Errorf("unknown export format %q: use yaml or json", format)
		}
		if err != nil {
			return err
		}
		fmt.Printf("exported %s history to the store index\n", format)
		return nil
	},
}

func init() {
	storeCmd.PersistentFlags().String("data-dir", "data", "base directory for the lab store")
	storeCmd.PersistentFlags().Int("max-results", 0, "default maximum query results")

	storeRecentCmd.Flags().Int("limit", 5, "number of panels to return")
	storeExportCmd.Flags().String("patient", "", "restrict export to one patient")
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	storeCmd.AddCommand(storeSummaryCmd, storeRecentCmd, storeTrendsCmd, storeCriticalCmd, storeExportCmd)
	rootCmd.AddCommand(storeCmd)
}

func openStore(cmd *cobra.Command) (*labstore.Store, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = "data"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return labstore.NewStore(types.StoreConfig{
		DataDir:    dataDir,
		MaxResults: maxResults,
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
