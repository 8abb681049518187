package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iho/stockrecon/internal/domain"
)

// CatalogFile is the YAML layout of the item catalog.
type CatalogFile struct {
	Items []string `yaml:"items"`
}

// LoadCatalog reads the item catalog from path. An empty path yields the
// default catalog.
func LoadCatalog(path string) (*domain.Catalog, error) {
	if path == "" {
		return domain.NewCatalog(domain.DefaultItems)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	catalog, err := domain.NewCatalog(file.Items)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return catalog, nil
}
