package catalog

import (
	_ "embed"
	"fmt"
	"os"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/usecase"
	"gopkg.in/yaml.v3"
)

//go:embed data/products.yaml
var embedded []byte

type file struct {
	Products []domain.Product `yaml:"products"`
}

// Load reads the catalog from path, or the embedded data set when path is
// empty.
func Load(path string) (*usecase.Catalog, error) {
	raw := embedded
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		raw = b
	}
	return Parse(raw)
}

func Parse(raw []byte) (*usecase.Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for _, p := range f.Products {
		if !domain.IsCategory(p.Category) {
			return nil, fmt.Errorf("product %d: unknown category %q", p.ID, p.Category)
		}
	}
	return usecase.NewCatalog(f.Products)
}
