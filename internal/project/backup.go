package project

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/piwi3910/metre/internal/model"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string          `json:"version"`
	CreatedAt string          `json:"created_at"`
	Config    model.AppConfig `json:"config"`
	Catalogue model.Catalogue `json:"catalogue"`
	Projects  []model.Project `json:"projects,omitempty"`
}

// ExportAllData writes the config, the catalogue and the given projects to
// a single JSON file.
func ExportAllData(exportPath string, config model.AppConfig, cat model.Catalogue, projects []model.Project) error {
	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Catalogue: cat,
		Projects:  projects,
	}
	if err := writeJSON(exportPath, backup); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying it.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.RecentProjects == nil {
		backup.Config.RecentProjects = []string{}
	}
	if backup.Catalogue.Items == nil {
		backup.Catalogue.Items = []model.CatalogueItem{}
	}
	for _, p := range backup.Projects {
		for _, w := range p.WorkItems {
			if err := w.Validate(); err != nil {
				return BackupData{}, fmt.Errorf("invalid backup file: project %q: %w", p.Name, err)
			}
		}
	}
	return backup, nil
}
