// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the lab-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the lab-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "lab-engine",
	Short: "Turn lab report text into structured, scored patient data",
	Long: `lab-engine processes laboratory reports into structured results. It
converts PDF reports to text, extracts test measurements against a
reference catalog, grades severity, computes a biomarker risk vector and
composite risk score, and stores the processed panels for per-patient
summary, trend, and critical-value queries.

Each pipeline stage is a subcommand: convert, process, store, and
catalog.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./lab-engine.yaml or ~/.config/lab-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lab-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "lab-engine"))
		}
	}

	viper.SetEnvPrefix("LAB_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
