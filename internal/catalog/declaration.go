package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// declaration is the versioned catalog shipped with the binary.
//
//go:embed catalog.yaml
var declaration []byte

type declarationFile struct {
	Version    int                   `yaml:"version"`
	Categories []declarationCategory `yaml:"categories"`
}

type declarationCategory struct {
	ID          string                  `yaml:"id"`
	Slug        string                  `yaml:"slug"`
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description"`
	Color       string                  `yaml:"color"`
	Calculators []declarationCalculator `yaml:"calculators"`
}

type declarationCalculator struct {
	ID          string `yaml:"id"`
	Slug        string `yaml:"slug"`
	Category    string `yaml:"category"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Color       string `yaml:"color"`
}

// Default builds the catalog from the embedded declaration.
func Default() (*Catalog, error) {
	return Load(declaration)
}

// Load parses a YAML declaration and builds a validated catalog. A calculator
// that omits its category inherits the ID of the category it is declared in.
func Load(data []byte) (*Catalog, error) {
	var file declarationFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("catalog: parse declaration: %w", err)
	}

	categories := make([]Category, 0, len(file.Categories))
	for _, dc := range file.Categories {
		cat := Category{
			ID:          strings.TrimSpace(dc.ID),
			Slug:        strings.TrimSpace(dc.Slug),
			Name:        strings.TrimSpace(dc.Name),
			Description: strings.TrimSpace(dc.Description),
			Color:       Color(strings.TrimSpace(dc.Color)),
			Calculators: make([]Calculator, 0, len(dc.Calculators)),
		}
		for _, dcalc := range dc.Calculators {
			owner := strings.TrimSpace(dcalc.Category)
			if owner == "" {
				owner = cat.ID
			}
			cat.Calculators = append(cat.Calculators, Calculator{
				ID:          strings.TrimSpace(dcalc.ID),
				Slug:        strings.TrimSpace(dcalc.Slug),
				Category:    owner,
				Name:        strings.TrimSpace(dcalc.Name),
				Description: strings.TrimSpace(dcalc.Description),
				Color:       Color(dcalc.Color),
			})
		}
		categories = append(categories, cat)
	}
	return New(categories)
}
