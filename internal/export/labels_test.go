package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/metre/internal/model"
)

func TestCollectLabelInfos(t *testing.T) {
	p := buildTestProject()
	p.Surfaces[0].Link("ghost")
	empty := model.NewSurfaceFromRoom("Cuisine", p.Elements[1])
	p.Surfaces = append(p.Surfaces, empty)

	labels := CollectLabelInfos(p.Surfaces, p.WorkItems)
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}

	sejour := labels[0]
	if sejour.Name != "Séjour" {
		t.Errorf("expected 'Séjour', got %q", sejour.Name)
	}
	if sejour.Superficie != 20 {
		t.Errorf("expected 20 m², got %v", sejour.Superficie)
	}
	if len(sejour.Ouvrages) != 1 || sejour.Ouvrages[0] != "Carrelage grès cérame" {
		t.Errorf("unknown ids should be skipped, got %v", sejour.Ouvrages)
	}
	if sejour.Total != 20*65*1.5 {
		t.Errorf("expected total %v, got %v", 20*65*1.5, sejour.Total)
	}

	if labels[1].Ouvrages == nil || len(labels[1].Ouvrages) != 0 {
		t.Errorf("surface without items should have an empty list, got %v", labels[1].Ouvrages)
	}
}

func TestLabelInfoJSON(t *testing.T) {
	p := buildTestProject()
	labels := CollectLabelInfos(p.Surfaces, p.WorkItems)
	data, err := json.Marshal(labels[0])
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"id", "name", "superficie_m2", "ouvrages", "total"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("expected key %q in QR payload", key)
		}
	}
	if _, ok := decoded["overridden"]; ok {
		t.Error("overridden should be omitted when false")
	}
}

func TestExportLabels_CreatesFile(t *testing.T) {
	p := buildTestProject()
	path := filepath.Join(t.TempDir(), "etiquettes.pdf")

	if err := ExportLabels(path, p.Surfaces, p.WorkItems, "€"); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("labels file was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("labels file is empty")
	}
}

func TestExportLabels_MultiplePages(t *testing.T) {
	p := buildTestProject()
	var surfaces []model.Surface
	for i := 0; i < labelsPerPage+3; i++ {
		s := model.NewSurfaceFromRoom("Pièce", p.Elements[0])
		for _, w := range p.WorkItems {
			s.Link(w.ID)
		}
		surfaces = append(surfaces, s)
	}
	path := filepath.Join(t.TempDir(), "etiquettes.pdf")
	if err := ExportLabels(path, surfaces, p.WorkItems, "€"); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
}

func TestExportLabels_NoSurfaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etiquettes.pdf")
	if err := ExportLabels(path, nil, nil, "€"); err == nil {
		t.Fatal("expected error without surfaces")
	}
}
