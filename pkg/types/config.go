// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CatalogConfig holds settings for the reference catalog.
type CatalogConfig struct {
	// Path is an optional YAML catalog asset. Empty uses the embedded
	// default table. Ranges vary by lab and population, so deployments
	// swap this file without touching code.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// ExtractionConfig holds settings for the result extraction stage.
type ExtractionConfig struct {
	// MinTextLen is the minimum input length considered processable
	// (default 50). Shorter inputs are rejected as "no data".
	MinTextLen int `json:"min_text_len" yaml:"min_text_len"`
}

// ConversionConfig holds settings for the PDF-to-text stage.
type ConversionConfig struct {
	// ReportsDir is the base directory for reports (contains raw/, text/).
	ReportsDir string `json:"reports_dir" yaml:"reports_dir"`
}

// StoreConfig holds settings for the lab store.
type StoreConfig struct {
	// DataDir is the base directory for the store (contains index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Catalog    CatalogConfig    `json:"catalog" yaml:"catalog"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	Store      StoreConfig      `json:"store" yaml:"store"`
}
