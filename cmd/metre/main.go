// Métré - plan calibration and quantity takeoff
//
// A cross-platform desktop application for identifying doors, windows,
// walls and rooms on an imported plan, then counting, measuring and
// pricing the resulting work items.
//
// Build:
//   go build -o metre ./cmd/metre
//
// Using fyne-cross for packaging:
//   fyne-cross windows -arch=amd64
//   fyne-cross darwin  -arch=amd64,arm64

package main

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/piwi3910/metre/internal/log"
	"github.com/piwi3910/metre/internal/model"
	"github.com/piwi3910/metre/internal/project"
	"github.com/piwi3910/metre/internal/ui"
	"github.com/piwi3910/metre/internal/workspace"
)

func main() {
	logger := log.Init(log.FromEnv())
	defer log.Close()

	configPath := project.DefaultConfigPath()
	cfg, err := project.LoadAppConfig(configPath)
	if err != nil {
		logger.Warn("using default preferences", slog.String("error", err.Error()))
		cfg = model.DefaultAppConfig()
	}
	cat, catPath, err := project.LoadOrCreateCatalogue()
	if err != nil {
		logger.Warn("using default catalogue", slog.String("error", err.Error()))
		cat = model.DefaultCatalogue()
	}

	settings := model.DefaultSettings()
	cfg.ApplyToSettings(&settings)
	ws := workspace.New(settings, cat, log.WithComponent("workspace"))

	application := app.NewWithID("io.metre.desktop")
	application.Settings().SetTheme(ui.ThemeFromConfig(cfg.Theme))
	window := application.NewWindow("Métré")

	appUI := ui.NewApp(window, ws, cfg, configPath, catPath, logger)
	appUI.SetupMenus()
	window.SetContent(appUI.Build())
	appUI.StartAutoSave()
	window.Resize(fyne.NewSize(1400, 850))
	window.CenterOnScreen()
	window.ShowAndRun()
}
