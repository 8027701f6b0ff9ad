package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/metre/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalogue_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogue.yaml")

	cat, err := LoadCatalogue(path)
	require.NoError(t, err)
	assert.Equal(t, len(model.DefaultCatalogue().Items), len(cat.Items))

	_, err = os.Stat(path)
	assert.NoError(t, err, "default catalogue is written on first load")
}

func TestSaveLoadCatalogue_YAMLAndJSON(t *testing.T) {
	cat := model.NewCatalogue()
	cat.Add(model.NewCatalogueItem("Carrelage grès cérame", "Revêtements", "Sols", model.UnitSquareMeter, 65))

	for _, name := range []string{"cat.yaml", "cat.json"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, SaveCatalogue(path, cat))

		loaded, err := LoadCatalogue(path)
		require.NoError(t, err, name)
		require.Len(t, loaded.Items, 1, name)
		assert.Equal(t, cat.Items[0], loaded.Items[0], name)
	}
}

func TestSaveCatalogue_YAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cat.yml")
	cat := model.NewCatalogue()
	cat.Add(model.NewCatalogueItem("Plinthe", "Revêtements", "", model.UnitLinearMeter, 12))
	require.NoError(t, SaveCatalogue(path, cat))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "designation: Plinthe")
	assert.Contains(t, string(data), "unit_price: 12")
}

func TestUnmarshalCatalogue_AssignsMissingIDs(t *testing.T) {
	doc := []byte("items:\n  - designation: Peinture murs\n    lot: Peinture\n    unit: m²\n    unit_price: 18\n")
	cat, err := UnmarshalCatalogue(doc, true)
	require.NoError(t, err)
	require.Len(t, cat.Items, 1)
	assert.Len(t, cat.Items[0].ID, 8)
	assert.Equal(t, 18.0, cat.Items[0].UnitPrice)

	_, err = UnmarshalCatalogue([]byte("items: [: bad"), true)
	assert.Error(t, err)
}

func TestMergeCatalogue(t *testing.T) {
	existing := model.NewCatalogue()
	porte := model.NewCatalogueItem("Porte isoplane", "Menuiseries", "", model.UnitEach, 185)
	existing.Add(porte)

	imported := []model.CatalogueItem{
		porte,
		model.NewCatalogueItem("PORTE ISOPLANE", "Menuiseries", "", model.UnitEach, 190),
		model.NewCatalogueItem("Fenêtre PVC", "Menuiseries", "", model.UnitEach, 420),
	}
	merged, added := MergeCatalogue(existing, imported)
	assert.Equal(t, 1, added)
	assert.Len(t, merged.Items, 2)
	assert.Equal(t, "Fenêtre PVC", merged.Items[1].Designation)
}

func TestImportCatalogue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.json")
	src := model.NewCatalogue()
	src.Add(model.NewCatalogueItem("Cloison placo", "Plâtrerie", "", model.UnitSquareMeter, 45))
	require.NoError(t, SaveCatalogue(path, src))

	merged, added, err := ImportCatalogue(path, model.NewCatalogue())
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Len(t, merged.Items, 1)

	_, _, err = ImportCatalogue(filepath.Join(t.TempDir(), "missing.yaml"), model.NewCatalogue())
	assert.Error(t, err)
}
