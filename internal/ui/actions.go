package ui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"github.com/piwi3910/metre/internal/export"
	"github.com/piwi3910/metre/internal/importer"
	"github.com/piwi3910/metre/internal/model"
	"github.com/piwi3910/metre/internal/project"
)

// maxListedMessages bounds the error and warning lines shown in a dialog.
const maxListedMessages = 10

// ─── Plan and project files ────────────────────────────────

func (a *App) openPlan() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		a.loadPlanFile(path)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".dxf", ".svg", ".json"}))
	d.Show()
}

func (a *App) loadPlanFile(path string) {
	result := importer.ImportPlan(path)
	if !result.OK() {
		dialog.ShowError(fmt.Errorf("%s", joinMessages("Import du plan impossible:", result.Errors)), a.window)
		return
	}
	if err := a.ws.LoadPlan(filepath.Base(path), result.Elements); err != nil {
		dialog.ShowError(err, a.window)
		return
	}

	counts := result.CountByKind()
	msg := fmt.Sprintf("%d élément(s) importé(s) : %d porte(s), %d fenêtre(s), %d mur(s), %d pièce(s).",
		len(result.Elements), counts[model.KindDoor], counts[model.KindWindow], counts[model.KindWall], counts[model.KindRoom])
	if len(result.Errors) > 0 {
		msg += "\n\n" + joinMessages("Erreurs:", result.Errors)
	}
	if len(result.Warnings) > 0 {
		msg += "\n\n" + joinMessages("Avertissements:", result.Warnings)
	}
	dialog.ShowInformation("Plan importé", msg, a.window)
}

func (a *App) saveProject() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		path := project.WithExtension(writer.URI().Path())
		if err := project.SaveProject(path, a.ws.Project()); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.rememberProject(path)
	}, a.window)
	d.SetFileName(a.ws.Name() + project.FileExtension)
	d.Show()
}

func (a *App) openProject() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		a.loadProjectFile(path)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{project.FileExtension}))
	d.Show()
}

func (a *App) loadProjectFile(path string) {
	p, err := project.LoadProject(path)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	if err := a.ws.Restore(p); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.rememberProject(path)
}

// rememberProject records path as the current project and at the top of
// the recent list.
func (a *App) rememberProject(path string) {
	a.projectPath = path
	a.config.AddRecentProject(path, maxRecentProjects)
	a.saveConfig()
	a.SetupMenus()
}

// ─── Catalogue import ──────────────────────────────────────

func (a *App) importCSV() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		a.handleImportResult(importer.ImportCSV(reader.URI().Path()))
	}, a.window)
}

func (a *App) importExcel() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		a.handleImportResult(importer.ImportExcel(reader.URI().Path()))
	}, a.window)
}

func (a *App) importLibrary() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		merged, added, err := project.ImportCatalogue(reader.URI().Path(), *a.ws.Catalogue())
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.setCatalogue(merged)
		dialog.ShowInformation("Bibliothèque importée", fmt.Sprintf("%d ouvrage(s) ajouté(s) au bordereau.", added), a.window)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".yaml", ".yml", ".json"}))
	d.Show()
}

func (a *App) handleImportResult(result importer.ImportResult) {
	if len(result.Errors) > 0 && len(result.Items) == 0 {
		dialog.ShowError(fmt.Errorf("%s", joinMessages("Import impossible:", result.Errors)), a.window)
		return
	}

	merged, added := project.MergeCatalogue(*a.ws.Catalogue(), result.Items)
	a.setCatalogue(merged)

	msg := fmt.Sprintf("%d ligne(s) lue(s), %d ouvrage(s) ajouté(s) au bordereau.", len(result.Items), added)
	if len(result.Errors) > 0 {
		msg += "\n\n" + joinMessages("Erreurs:", result.Errors)
	}
	if len(result.Warnings) > 0 {
		msg += "\n\n" + joinMessages("Avertissements:", result.Warnings)
	}
	dialog.ShowInformation("Import terminé", msg, a.window)
}

// setCatalogue replaces the workspace catalogue and writes it back.
func (a *App) setCatalogue(cat model.Catalogue) {
	*a.ws.Catalogue() = cat
	if a.cataloguePath != "" {
		if err := project.SaveCatalogue(a.cataloguePath, cat); err != nil {
			a.log.Error("failed to save catalogue", slog.String("path", a.cataloguePath), slog.String("error", err.Error()))
		}
	}
	a.tools.refreshCatalogue()
	a.wizard.invalidatePick()
	a.refresh()
}

// ─── Exports ───────────────────────────────────────────────

// saveAs asks for a destination and runs write on it.
func (a *App) saveAs(defaultName string, write func(path string) error) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := write(path); err != nil {
			a.log.Error("export failed", slog.String("path", path), slog.String("error", err.Error()))
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowInformation("Export terminé", fmt.Sprintf("Fichier enregistré : %s", path), a.window)
	}, a.window)
	d.SetFileName(defaultName)
	d.Show()
}

func (a *App) exportExcel() {
	if len(a.ws.WorkItems()) == 0 {
		dialog.ShowInformation("Rien à exporter", "Ajoutez au moins un ouvrage.", a.window)
		return
	}
	a.saveAs(a.ws.Name()+".xlsx", func(path string) error {
		return export.ExportExcel(path, a.ws.WorkItems(), a.ws.Surfaces())
	})
}

func (a *App) exportPDF() {
	a.saveAs(a.ws.Name()+".pdf", func(path string) error {
		return export.ExportPDF(path, a.ws.Project())
	})
}

func (a *App) exportLabels() {
	if len(a.ws.Surfaces()) == 0 {
		dialog.ShowInformation("Aucune surface", "Sélectionnez des pièces sur le plan pour créer des surfaces.", a.window)
		return
	}
	a.saveAs(a.ws.Name()+"-etiquettes.pdf", func(path string) error {
		return export.ExportLabels(path, a.ws.Surfaces(), a.ws.WorkItems(), a.ws.Settings().Currency)
	})
}

// ─── Backup ────────────────────────────────────────────────

func (a *App) exportBackup() {
	a.saveAs("metre-sauvegarde.json", func(path string) error {
		return project.ExportAllData(path, a.config, *a.ws.Catalogue(), []model.Project{a.ws.Project()})
	})
}

func (a *App) importBackup() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		backup, err := project.ImportAllData(reader.URI().Path())
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowConfirm("Restaurer la sauvegarde",
			fmt.Sprintf("Remplacer les préférences, le bordereau (%d ouvrages) et le projet en cours ?", len(backup.Catalogue.Items)),
			func(ok bool) {
				if ok {
					a.applyBackup(backup)
				}
			}, a.window)
	}, a.window)
}

func (a *App) applyBackup(b project.BackupData) {
	a.config = b.Config
	a.saveConfig()
	a.setCatalogue(b.Catalogue)
	if len(b.Projects) > 0 {
		if err := a.ws.Restore(b.Projects[0]); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.projectPath = ""
	}
	a.SetupMenus()
}

// joinMessages formats a titled list, truncated to maxListedMessages lines.
func joinMessages(title string, msgs []string) string {
	lines := []string{title}
	for i, m := range msgs {
		if i == maxListedMessages {
			lines = append(lines, fmt.Sprintf("... et %d autre(s)", len(msgs)-i))
			break
		}
		lines = append(lines, "- "+m)
	}
	return strings.Join(lines, "\n")
}
