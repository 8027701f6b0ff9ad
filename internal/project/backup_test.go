package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/metre/internal/model"
)

func TestExportImportAllData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")

	cfg := model.DefaultAppConfig()
	cfg.Theme = "dark"
	cat := model.DefaultCatalogue()

	p := model.NewProject()
	p.Name = "Maison Dupont"
	p.WorkItems = append(p.WorkItems, model.NewWorkItem("Porte", "Menuiseries", model.UnitEach, 3, 185))

	if err := ExportAllData(path, cfg, cat, []model.Project{p}); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}

	if backup.Version != BackupVersion {
		t.Errorf("expected version %s, got %s", BackupVersion, backup.Version)
	}
	if backup.CreatedAt == "" {
		t.Error("expected CreatedAt to be set")
	}
	if backup.Config.Theme != "dark" {
		t.Errorf("expected theme dark, got %s", backup.Config.Theme)
	}
	if len(backup.Catalogue.Items) != len(cat.Items) {
		t.Errorf("expected %d catalogue items, got %d", len(cat.Items), len(backup.Catalogue.Items))
	}
	if len(backup.Projects) != 1 || backup.Projects[0].Name != "Maison Dupont" {
		t.Fatalf("expected the project to round-trip, got %+v", backup.Projects)
	}
	if got := backup.Projects[0].TotalCost(); got != 555 {
		t.Errorf("expected total 555, got %f", got)
	}
}

func TestImportAllDataMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	if err := os.WriteFile(path, []byte(`{"config": {}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportAllData(path); err == nil {
		t.Fatal("expected error for backup without version")
	}
}

func TestImportAllDataRejectsNegativeQuantity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	doc := `{"version": "1.0.0", "projects": [{"name": "P", "work_items": [
		{"designation": "Porte", "lot": "L", "unit": "U", "quantity": -1, "unit_price": 10}
	]}]}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportAllData(path); err == nil {
		t.Fatal("expected error for negative quantity")
	}
}

func TestImportAllDataFillsEmptyCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	if err := os.WriteFile(path, []byte(`{"version": "1.0.0"}`), 0644); err != nil {
		t.Fatal(err)
	}
	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}
	if backup.Config.RecentProjects == nil {
		t.Error("expected non-nil RecentProjects")
	}
	if backup.Catalogue.Items == nil {
		t.Error("expected non-nil catalogue items")
	}
}

func TestImportAllDataFileNotFound(t *testing.T) {
	if _, err := ImportAllData("/nonexistent/backup.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
