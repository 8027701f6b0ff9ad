package ui

import (
	"fmt"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/metre/internal/measure"
	"github.com/piwi3910/metre/internal/model"
	"github.com/piwi3910/metre/internal/project"
	"github.com/piwi3910/metre/internal/render"
	"github.com/piwi3910/metre/internal/ui/widgets"
	"github.com/piwi3910/metre/internal/workspace"
)

// maxRecentProjects bounds the File > Recent list.
const maxRecentProjects = 8

// App holds all application state and UI references.
type App struct {
	window fyne.Window
	ws     *workspace.Workspace
	log    *slog.Logger

	config        model.AppConfig
	configPath    string
	cataloguePath string
	projectPath   string

	// UI references for dynamic updates
	canvas  *widgets.PlanCanvas
	wizard  *wizardPanel
	tools   *toolBar
	takeoff *takeoffPanel
	status  *widget.Label

	confirming   bool
	stopAutoSave chan struct{}
}

// NewApp creates the application around a workspace. configPath and
// cataloguePath are where preferences and the catalogue are written back.
func NewApp(window fyne.Window, ws *workspace.Workspace, cfg model.AppConfig, configPath, cataloguePath string, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		window:        window,
		ws:            ws,
		log:           logger.With(slog.String("component", "ui")),
		config:        cfg,
		configPath:    configPath,
		cataloguePath: cataloguePath,
	}
	ws.OnChange(a.refresh)
	return a
}

// SetupMenus creates the native menu bar for the application.
func (a *App) SetupMenus() {
	fileMenu := fyne.NewMenu("Fichier",
		fyne.NewMenuItem("Nouveau projet", a.newProject),
		fyne.NewMenuItem("Ouvrir un plan...", a.openPlan),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Ouvrir un projet...", a.openProject),
		a.recentMenu(),
		fyne.NewMenuItem("Enregistrer le projet...", a.saveProject),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Bordereau de prix...", a.showCatalogueDialog),
		fyne.NewMenuItem("Importer un bordereau CSV...", a.importCSV),
		fyne.NewMenuItem("Importer un bordereau Excel...", a.importExcel),
		fyne.NewMenuItem("Importer une bibliothèque (YAML/JSON)...", a.importLibrary),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Exporter vers Excel...", a.exportExcel),
		fyne.NewMenuItem("Exporter le rapport PDF...", a.exportPDF),
		fyne.NewMenuItem("Étiquettes QR des surfaces...", a.exportLabels),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Sauvegarde complète...", a.exportBackup),
		fyne.NewMenuItem("Restaurer une sauvegarde...", a.importBackup),
	)

	editMenu := fyne.NewMenu("Édition",
		fyne.NewMenuItem("Annuler", func() { a.ws.Undo() }),
		fyne.NewMenuItem("Rétablir", func() { a.ws.Redo() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Étendre aux éléments similaires", func() { a.ws.ExtendToSimilar() }),
		fyne.NewMenuItem("Exclure les éléments similaires", func() { a.ws.ExcludeSimilar() }),
		fyne.NewMenuItem("Isoler la sélection", func() {
			a.ws.SetIsolation(!a.ws.Selection().Isolation())
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Localisation...", a.showLocationDialog),
		fyne.NewMenuItem("Renommer le projet...", a.showRenameDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Préférences...", a.showPreferencesDialog),
	)

	calibrationMenu := fyne.NewMenu("Calibrage",
		fyne.NewMenuItem("Démarrer le calibrage", func() { a.ws.StartCalibration() }),
		fyne.NewMenuItem("Réinitialiser", func() { a.ws.ResetCalibration() }),
	)

	helpMenu := fyne.NewMenu("Aide",
		fyne.NewMenuItem("À propos", a.showAboutDialog),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, calibrationMenu, helpMenu))
}

func (a *App) recentMenu() *fyne.MenuItem {
	item := fyne.NewMenuItem("Projets récents", nil)
	if len(a.config.RecentProjects) == 0 {
		item.Disabled = true
		return item
	}
	var entries []*fyne.MenuItem
	for _, path := range a.config.RecentProjects {
		p := path
		entries = append(entries, fyne.NewMenuItem(p, func() { a.loadProjectFile(p) }))
	}
	item.ChildMenu = fyne.NewMenu("", entries...)
	return item
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation(
		"À propos de Métré",
		"Métré - calibrage de plans et métré quantitatif\n\n"+
			"Identifiez portes, fenêtres, murs et pièces sur un plan,\n"+
			"comptez et mesurez, puis chiffrez les ouvrages par lot,\n"+
			"par localisation et par surface.\n\n"+
			"Version 1.0.0",
		a.window,
	)
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	a.canvas = widgets.NewPlanCanvas()
	a.canvas.OnTap = func(p model.Point2D) { a.ws.Click(p) }
	a.canvas.OnSecondaryTap = func(p model.Point2D) { a.ws.RightClick(p) }
	a.canvas.OnDragStart = func(p model.Point2D) { a.ws.BeginDrag(p) }
	a.canvas.OnDrag = func(p model.Point2D) { a.ws.DragTo(p) }
	a.canvas.OnDragEnd = func(p model.Point2D) { a.ws.Release(p) }

	a.wizard = newWizardPanel(a)
	a.tools = newToolBar(a)
	a.takeoff = newTakeoffPanel(a)
	a.status = widget.NewLabel("")

	a.window.Canvas().SetOnTypedKey(a.typedKey)

	left := container.NewBorder(a.tools.bar, container.NewVBox(a.tools.footer, a.status), nil, nil, a.canvas)
	right := container.NewAppTabs(
		container.NewTabItem("Calibrage", a.wizard.content),
		container.NewTabItem("Métré", a.takeoff.content),
	)
	split := container.NewHSplit(left, right)
	split.SetOffset(0.65)

	a.refresh()
	return split
}

// typedKey routes Escape to the tool bar, then to the wizard.
func (a *App) typedKey(ev *fyne.KeyEvent) {
	if ev.Name != fyne.KeyEscape {
		return
	}
	a.handleDecision(a.ws.Escape())
}

// handleDecision shows the discard confirmation when the counter holds data.
func (a *App) handleDecision(d measure.Decision) {
	if d != measure.NeedsConfirmation || a.confirming {
		return
	}
	tool, _ := a.ws.Tools().Pending()
	a.confirming = true
	msg := fmt.Sprintf("Le compteur contient %d élément(s).\nQuitter l'outil et perdre le comptage ?", a.ws.Tools().Total())
	if tool != "" && tool != measure.ToolSelect {
		msg = fmt.Sprintf("Le compteur contient %d élément(s).\nPasser à l'outil %s et perdre le comptage ?", a.ws.Tools().Total(), tool.Label())
	}
	dialog.ShowConfirm("Abandonner le comptage", msg, func(ok bool) {
		a.confirming = false
		if ok {
			a.ws.ConfirmTool()
		} else {
			a.ws.DeclineTool()
		}
	}, a.window)
}

// scene projects the workspace state for the canvas.
func (a *App) scene() render.Scene {
	opts := render.Options{
		Isolation:        a.ws.Selection().Isolation(),
		IsolationOpacity: a.ws.Settings().IsolationOpacity,
	}
	var preview *measure.Measurement
	if m, ok := a.ws.Tools().Preview(); ok {
		preview = &m
	}
	return render.Build(a.ws.Store().All(), a.ws.Tools().Markers(), preview, opts)
}

// refresh redraws every panel from the workspace. It runs after each change.
func (a *App) refresh() {
	if a.canvas == nil {
		return
	}
	a.canvas.SetScene(a.scene())
	a.wizard.refresh()
	a.tools.refresh()
	a.takeoff.refresh()
	a.status.SetText(a.statusText())
	a.window.SetTitle(a.title())
}

func (a *App) title() string {
	if a.ws.PlanName() == "" {
		return fmt.Sprintf("Métré - %s", a.ws.Name())
	}
	return fmt.Sprintf("Métré - %s (%s)", a.ws.Name(), a.ws.PlanName())
}

func (a *App) statusText() string {
	sel := a.ws.Selection()
	text := fmt.Sprintf("%d élément(s) | %d sélectionné(s) | %s",
		a.ws.Store().Len(), sel.Count(), a.ws.Location().Key())
	if key, ok := sel.SimilarKey(); ok {
		text += fmt.Sprintf(" | dernier: %s / %s", key.Kind.Label(), key.Layer)
	}
	if sel.Isolation() {
		text += " | isolation"
	}
	return text
}

// ─── Dialogs ───────────────────────────────────────────────

func (a *App) newProject() {
	settings := model.DefaultSettings()
	a.config.ApplyToSettings(&settings)
	p := model.NewProject()
	p.Settings = settings
	if err := a.ws.Restore(p); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.projectPath = ""
}

func (a *App) showLocationDialog() {
	loc := a.ws.Location()
	levelEntry := widget.NewEntry()
	levelEntry.SetText(loc.Level)
	roomEntry := widget.NewEntry()
	roomEntry.SetText(loc.Room)

	form := dialog.NewForm("Localisation", "Appliquer", "Annuler",
		[]*widget.FormItem{
			widget.NewFormItem("Niveau", levelEntry),
			widget.NewFormItem("Pièce", roomEntry),
		},
		func(ok bool) {
			if !ok {
				return
			}
			a.ws.SetLocation(model.Location{Level: levelEntry.Text, Room: roomEntry.Text})
		}, a.window)
	form.Resize(fyne.NewSize(360, 200))
	form.Show()
}

func (a *App) showRenameDialog() {
	nameEntry := widget.NewEntry()
	nameEntry.SetText(a.ws.Name())
	dialog.ShowForm("Renommer le projet", "Renommer", "Annuler",
		[]*widget.FormItem{widget.NewFormItem("Nom", nameEntry)},
		func(ok bool) {
			if ok && nameEntry.Text != "" {
				a.ws.SetName(nameEntry.Text)
			}
		}, a.window)
}

// StartAutoSave saves the current project file every AutoSaveInterval
// minutes, replacing any running ticker. Nothing is saved until the project
// has a path.
func (a *App) StartAutoSave() {
	if a.stopAutoSave != nil {
		close(a.stopAutoSave)
		a.stopAutoSave = nil
	}
	if a.config.AutoSaveInterval <= 0 {
		return
	}
	interval := time.Duration(a.config.AutoSaveInterval) * time.Minute
	stop := make(chan struct{})
	a.stopAutoSave = stop
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fyne.Do(a.autoSave)
			case <-stop:
				return
			}
		}
	}()
}

func (a *App) autoSave() {
	if a.projectPath == "" {
		return
	}
	if err := project.SaveProject(a.projectPath, a.ws.Project()); err != nil {
		a.log.Error("autosave failed", slog.String("path", a.projectPath), slog.String("error", err.Error()))
		return
	}
	a.log.Debug("project autosaved", slog.String("path", a.projectPath))
}

// saveConfig writes preferences back, logging instead of interrupting the user.
func (a *App) saveConfig() {
	if a.configPath == "" {
		return
	}
	if err := project.SaveAppConfig(a.configPath, a.config); err != nil {
		a.log.Error("failed to save config", slog.String("error", err.Error()))
	}
}
