// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lab-engine/internal/catalog"
	"github.com/pdiddy/lab-engine/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the reference catalog (lookup, list)",
	Long: `Catalog inspects the reference range table the extractor matches
against. Lookups use the same name resolution as extraction: exact
match, lab-code suffix stripping, then substring matching.`,
}

var catalogLookupCmd = &cobra.Command{
	Use:   "lookup <test name>",
	Short: "Resolve a test name to its reference range",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(cmd)
		if err != nil {
			return err
		}

		rng, ok := cat.Lookup(args[0])
		if !ok {
			return fmt.Errorf("no reference range for %q", args[0])
		}

		fmt.Printf("%s: %g-%g %s\n", args[0], rng.Min, rng.Max, rng.Unit)
		if rng.CriticalLow != nil {
			fmt.Printf("  critical low:  %g\n", *rng.CriticalLow)
		}
		if rng.CriticalHigh != nil {
			fmt.Printf("  critical high: %g\n", *rng.CriticalHigh)
		}
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every reference range in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(cmd)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TEST\tRANGE\tUNIT")
		for _, name := range cat.Names() {
			rng, _ := cat.Lookup(name)
			fmt.Fprintf(w, "%s\t%g-%g\t%s\n", name, rng.Min, rng.Max, rng.Unit)
		}
		return w.Flush()
	},
}

func init() {
	catalogCmd.PersistentFlags().String("catalog", "", "reference catalog YAML (default: embedded table)")

	catalogCmd.AddCommand(catalogLookupCmd, catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}

func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	path, _ := cmd.Flags().GetString("catalog")
	return catalog.Load(types.CatalogConfig{Path: path})
}
