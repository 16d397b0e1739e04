// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/lab-engine/pkg/types"
)

//go:embed catalog.yaml
var defaultAsset []byte

// assetFile is the on-disk shape of a catalog asset.
type assetFile struct {
	Ranges  map[string]types.ReferenceRange `yaml:"ranges"`
	Weights []types.WeightEntry             `yaml:"weights"`
}

// Load builds a Catalog from the configured asset path, or from the
// embedded default table when no path is set.
func Load(cfg types.CatalogConfig) (*Catalog, error) {
	if cfg.Path == "" {
		return parseAsset(defaultAsset)
	}
	data, err := os.ReadFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog asset %s: %w", cfg.Path, err)
	}
	c, err := parseAsset(data)
	if err != nil {
		return nil, fmt.Errorf("catalog asset %s: %w", cfg.Path, err)
	}
	return c, nil
}

// Default returns the embedded catalog. It panics only if the shipped
// asset is malformed, which the package tests guard against.
func Default() *Catalog {
	c, err := parseAsset(defaultAsset)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog asset invalid: %v", err))
	}
	return c
}

func parseAsset(data []byte) (*Catalog, error) {
	var f assetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog asset: %w", err)
	}
	if len(f.Ranges) == 0 {
		return nil, fmt.Errorf("catalog asset has no range entries")
	}
	for name, r := range f.Ranges {
		if r.Min >= r.Max {
			return nil, fmt.Errorf("catalog entry %q: min %v >= max %v", name, r.Min, r.Max)
		}
	}
	return New(f.Ranges, f.Weights), nil
}
