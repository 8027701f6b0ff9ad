// Package project persists projects, the catalogue and application settings,
// either as plain files under ~/.metre or through a key-value Store.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/piwi3910/metre/internal/model"
)

// FileExtension is appended to project files saved from the desktop app.
const FileExtension = ".metre"

// SaveProject writes a project as indented JSON.
func SaveProject(path string, p model.Project) error {
	return writeJSON(path, p)
}

// LoadProject reads a project file and validates its work items.
func LoadProject(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to read project: %w", err)
	}
	return decodeProject(data)
}

// WithExtension returns path with the project extension added when missing.
func WithExtension(path string) string {
	if strings.HasSuffix(strings.ToLower(path), FileExtension) {
		return path
	}
	return path + FileExtension
}

func decodeProject(data []byte) (model.Project, error) {
	p := model.NewProject()
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Project{}, fmt.Errorf("failed to parse project: %w", err)
	}
	for _, w := range p.WorkItems {
		if err := w.Validate(); err != nil {
			return model.Project{}, fmt.Errorf("project %q: %w", p.Name, err)
		}
	}
	if p.Elements == nil {
		p.Elements = []model.Element{}
	}
	if p.WorkItems == nil {
		p.WorkItems = []model.WorkItem{}
	}
	if p.Surfaces == nil {
		p.Surfaces = []model.Surface{}
	}
	return p, nil
}
