package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/metre/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProject() model.Project {
	p := model.NewProject()
	p.Name = "Maison Dupont"
	p.PlanName = "rdc.svg"
	room := model.NewElement(model.KindRoom, "PIECES", model.RectGeometry(0, 0, 500, 400))
	p.Elements = append(p.Elements, room,
		model.NewElement(model.KindDoor, "PORTES", model.RectGeometry(100, 390, 90, 20)))

	tile := model.NewWorkItem("Carrelage", "Revêtements", model.UnitSquareMeter, 20, 65).WithCoefficient(1.5)
	s := model.NewSurfaceFromRoom("Séjour", room)
	s.Link(tile.ID)
	tile.SurfaceID = s.ID
	p.WorkItems = append(p.WorkItems, tile)
	p.Surfaces = append(p.Surfaces, s)
	return p
}

func TestSaveLoadProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maison"+FileExtension)
	p := sampleProject()

	require.NoError(t, SaveProject(path, p))
	loaded, err := LoadProject(path)
	require.NoError(t, err)

	assert.Equal(t, p.ID, loaded.ID)
	assert.Equal(t, p.Elements, loaded.Elements)
	assert.Equal(t, p.Surfaces, loaded.Surfaces)
	require.Len(t, loaded.WorkItems, 1)
	assert.InDelta(t, 1950, loaded.TotalCost(), 1e-9)
	assert.Equal(t, 1.5, loaded.WorkItems[0].EffectiveCoefficient())
}

func TestLoadProject_Errors(t *testing.T) {
	_, err := LoadProject("/nonexistent/p.metre")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.metre")
	require.NoError(t, os.WriteFile(path, []byte(`{"work_items": [{"designation": "x", "quantity": 1, "unit_price": -3}]}`), 0644))
	_, err = LoadProject(path)
	assert.ErrorIs(t, err, model.ErrInvalidWorkItem)
}

func TestLoadProject_NilCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.metre")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": "Vide", "elements": null}`), 0644))

	p, err := LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, "Vide", p.Name)
	assert.NotNil(t, p.Elements)
	assert.NotNil(t, p.WorkItems)
	assert.NotNil(t, p.Surfaces)
	assert.Equal(t, model.DefaultSettings(), p.Settings)
}

func TestWithExtension(t *testing.T) {
	assert.Equal(t, "a.metre", WithExtension("a"))
	assert.Equal(t, "a.METRE", WithExtension("a.METRE"))
}
