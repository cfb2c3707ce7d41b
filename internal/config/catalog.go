package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// LoadCatalog reads the catalog from path, or the built-in one when path is
// empty. Unknown keys, blank names and a catalog without vehicles are errors.
func LoadCatalog(path string) (domain.Catalog, error) {
	raw := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return domain.Catalog{}, fmt.Errorf("config.LoadCatalog: %w", err)
		}
		raw = b
	}

	var c domain.Catalog
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return domain.Catalog{}, fmt.Errorf("config.LoadCatalog: decode: %w", err)
	}
	if err := validateCatalog(c); err != nil {
		return domain.Catalog{}, fmt.Errorf("config.LoadCatalog: %w", err)
	}
	return c, nil
}

func validateCatalog(c domain.Catalog) error {
	if len(c.Vehicles) == 0 {
		return fmt.Errorf("no vehicles")
	}
	for _, v := range c.Vehicles {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("blank vehicle name")
		}
	}
	for _, d := range c.Drivers {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("blank driver name")
		}
	}
	for _, r := range c.Regions {
		for _, s := range r.Stores {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("blank store name in region %q", r.Name)
			}
		}
	}
	return nil
}
