package ui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/metre/internal/model"
)

// showPreferencesDialog edits the application preferences and the defaults
// applied to new projects.
func (a *App) showPreferencesDialog() {
	cfg := a.config

	floatEntry := func(val *float64) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(fmt.Sprintf("%.2f", *val))
		e.OnChanged = func(text string) {
			if v, err := parseNumber(text); err == nil {
				*val = v
			}
		}
		return e
	}

	intEntry := func(val *int) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(fmt.Sprintf("%d", *val))
		e.OnChanged = func(text string) {
			if v, err := strconv.Atoi(text); err == nil {
				*val = v
			}
		}
		return e
	}

	stringEntry := func(val *string) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(*val)
		e.OnChanged = func(text string) { *val = text }
		return e
	}

	themeSelect := widget.NewSelect([]string{"system", "light", "dark"}, func(selected string) {
		cfg.Theme = selected
	})
	themeSelect.SetSelected(cfg.Theme)

	storageSelect := widget.NewSelect([]string{model.StorageJSON, model.StorageSQLite}, func(selected string) {
		cfg.StorageBackend = selected
	})
	storageSelect.SetSelected(cfg.StorageBackend)

	formItems := []*widget.FormItem{
		widget.NewFormItem("Thème", themeSelect),
		widget.NewFormItem("Sauvegarde auto (min, 0 = non)", intEntry(&cfg.AutoSaveInterval)),
		widget.NewFormItem("Stockage serveur", storageSelect),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Devise", stringEntry(&cfg.DefaultCurrency)),
		widget.NewFormItem("Niveau par défaut", stringEntry(&cfg.DefaultLevel)),
		widget.NewFormItem("Lot des comptages", stringEntry(&cfg.DefaultLot)),
		widget.NewFormItem("Opacité hors sélection (0-1)", floatEntry(&cfg.DefaultIsolationOpacity)),
		widget.NewFormItem("Tolérance de clic (unités plan)", floatEntry(&cfg.DefaultHitTolerance)),
	}

	d := dialog.NewForm("Préférences", "Enregistrer", "Annuler", formItems,
		func(ok bool) {
			if !ok {
				return
			}
			if err := validatePreferences(cfg); err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.config = cfg
			a.saveConfig()
			fyne.CurrentApp().Settings().SetTheme(ThemeFromConfig(cfg.Theme))
			a.StartAutoSave()
			dialog.ShowInformation("Préférences enregistrées",
				"Les valeurs par défaut s'appliquent aux nouveaux projets.", a.window)
		},
		a.window,
	)
	d.Resize(fyne.NewSize(500, 480))
	d.Show()
}

func validatePreferences(cfg model.AppConfig) error {
	switch {
	case cfg.AutoSaveInterval < 0:
		return fmt.Errorf("l'intervalle de sauvegarde doit être positif")
	case cfg.DefaultIsolationOpacity < 0 || cfg.DefaultIsolationOpacity > 1:
		return fmt.Errorf("l'opacité doit être comprise entre 0 et 1")
	case cfg.DefaultHitTolerance < 0:
		return fmt.Errorf("la tolérance de clic doit être positive")
	case cfg.DefaultCurrency == "":
		return fmt.Errorf("la devise est obligatoire")
	}
	return nil
}
