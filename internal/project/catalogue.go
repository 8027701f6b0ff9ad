package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/metre/internal/model"
	"gopkg.in/yaml.v3"
)

// DefaultCataloguePath returns the default catalogue location, ~/.metre/catalogue.yaml.
func DefaultCataloguePath() string {
	return filepath.Join(DefaultConfigDir(), "catalogue.yaml")
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// MarshalCatalogue encodes a catalogue as YAML or JSON.
func MarshalCatalogue(cat model.Catalogue, asYAML bool) ([]byte, error) {
	if asYAML {
		return yaml.Marshal(cat)
	}
	return json.MarshalIndent(cat, "", "  ")
}

// UnmarshalCatalogue decodes a YAML or JSON catalogue. Items without an
// id get one so they can be picked.
func UnmarshalCatalogue(data []byte, asYAML bool) (model.Catalogue, error) {
	var cat model.Catalogue
	var err error
	if asYAML {
		err = yaml.Unmarshal(data, &cat)
	} else {
		err = json.Unmarshal(data, &cat)
	}
	if err != nil {
		return model.Catalogue{}, err
	}
	if cat.Items == nil {
		cat.Items = []model.CatalogueItem{}
	}
	for i, it := range cat.Items {
		if it.ID == "" {
			fresh := model.NewCatalogueItem(it.Designation, it.Lot, it.SubCategory, it.Unit, it.UnitPrice)
			cat.Items[i].ID = fresh.ID
		}
	}
	return cat, nil
}

// SaveCatalogue writes the catalogue, as YAML when the path ends in .yaml/.yml
// and as JSON otherwise.
func SaveCatalogue(path string, cat model.Catalogue) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create catalogue directory: %w", err)
	}
	data, err := MarshalCatalogue(cat, isYAML(path))
	if err != nil {
		return fmt.Errorf("failed to encode catalogue: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalogue: %w", err)
	}
	return nil
}

// LoadCatalogue reads the catalogue from path. If the file does not exist,
// the default catalogue is returned and saved there.
func LoadCatalogue(path string) (model.Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cat := model.DefaultCatalogue()
			if saveErr := SaveCatalogue(path, cat); saveErr != nil {
				return cat, saveErr
			}
			return cat, nil
		}
		return model.Catalogue{}, fmt.Errorf("failed to read catalogue: %w", err)
	}
	cat, err := UnmarshalCatalogue(data, isYAML(path))
	if err != nil {
		return model.Catalogue{}, fmt.Errorf("failed to parse catalogue: %w", err)
	}
	return cat, nil
}

// LoadOrCreateCatalogue loads the catalogue from the default path.
func LoadOrCreateCatalogue() (model.Catalogue, string, error) {
	path := DefaultCataloguePath()
	cat, err := LoadCatalogue(path)
	return cat, path, err
}

// MergeCatalogue appends the imported items to existing. Items whose id or
// designation (case-insensitive) is already present are skipped; the number
// of added items is returned.
func MergeCatalogue(existing model.Catalogue, imported []model.CatalogueItem) (model.Catalogue, int) {
	ids := make(map[string]bool, len(existing.Items))
	names := make(map[string]bool, len(existing.Items))
	for _, it := range existing.Items {
		ids[it.ID] = true
		names[strings.ToLower(it.Designation)] = true
	}

	added := 0
	for _, it := range imported {
		name := strings.ToLower(it.Designation)
		if ids[it.ID] || names[name] {
			continue
		}
		existing.Items = append(existing.Items, it)
		ids[it.ID] = true
		names[name] = true
		added++
	}
	return existing, added
}

// ImportCatalogue reads a YAML or JSON catalogue file and merges it into existing.
func ImportCatalogue(path string, existing model.Catalogue) (model.Catalogue, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, 0, fmt.Errorf("failed to read catalogue: %w", err)
	}
	imported, err := UnmarshalCatalogue(data, isYAML(path))
	if err != nil {
		return existing, 0, fmt.Errorf("failed to parse catalogue: %w", err)
	}
	merged, added := MergeCatalogue(existing, imported.Items)
	return merged, added, nil
}
