package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/metre/internal/calibration"
	"github.com/piwi3910/metre/internal/model"
	"github.com/piwi3910/metre/internal/ui/widgets"
)

// wizardPanel renders the calibration session: instructions, 4-dot
// progress, catalogue pick for the current kind and captured points.
type wizardPanel struct {
	app     *App
	content fyne.CanvasObject

	title        *widget.Label
	instructions *widget.Label
	dots         *widgets.ProgressDots
	pick         *widget.Select
	points       *fyne.Container

	startBtn  *widget.Button
	beginBtn  *widget.Button
	reviewBtn *widget.Button
	skipBtn   *widget.Button
	cancelBtn *widget.Button

	pickIDs   []string
	pickFor   model.ElementKind
	pickStale bool
}

func newWizardPanel(a *App) *wizardPanel {
	w := &wizardPanel{app: a}

	w.title = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	w.instructions = widget.NewLabel("")
	w.instructions.Wrapping = fyne.TextWrapWord
	w.dots = widgets.NewProgressDots(len(model.CalibrationSequence))
	w.points = container.NewVBox()

	w.pick = widget.NewSelect(nil, func(string) {
		i := w.pick.SelectedIndex()
		if w.pickFor == "" || i < 0 || i >= len(w.pickIDs) {
			return
		}
		a.ws.SetCataloguePick(w.pickFor, w.pickIDs[i])
	})
	w.pick.PlaceHolder = "Ouvrage du bordereau (optionnel)"

	w.startBtn = widget.NewButtonWithIcon("Démarrer", theme.MediaPlayIcon(), func() { a.ws.StartCalibration() })
	w.beginBtn = widget.NewButtonWithIcon("Commencer", theme.NavigateNextIcon(), func() { a.ws.BeginStep() })
	w.beginBtn.Importance = widget.HighImportance
	w.reviewBtn = widget.NewButtonWithIcon("Vérifier", theme.VisibilityIcon(), func() { a.ws.ReviewStep() })
	w.skipBtn = widget.NewButtonWithIcon("Passer", theme.MediaSkipNextIcon(), func() { a.ws.SkipStep() })
	w.cancelBtn = widget.NewButtonWithIcon("Annuler", theme.CancelIcon(), func() { a.ws.CancelStep() })
	resetBtn := widget.NewButtonWithIcon("Réinitialiser", theme.ViewRefreshIcon(), func() { a.ws.ResetCalibration() })

	similar := container.NewGridWithColumns(2,
		widget.NewButton("Étendre aux similaires", func() { a.ws.ExtendToSimilar() }),
		widget.NewButton("Exclure les similaires", func() { a.ws.ExcludeSimilar() }),
	)

	w.content = container.NewBorder(
		container.NewVBox(
			container.NewHBox(w.title, w.dots),
			w.instructions,
			w.pick,
			container.NewGridWithColumns(3, w.startBtn, w.beginBtn, w.reviewBtn),
			container.NewGridWithColumns(3, w.skipBtn, w.cancelBtn, resetBtn),
			similar,
			widget.NewSeparator(),
			widget.NewLabelWithStyle("Points relevés", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		),
		nil, nil, nil,
		container.NewVScroll(w.points),
	)
	return w
}

// stepText returns the heading and the instructions of a session.
func stepText(s calibration.Session) (string, string) {
	kind := s.CurrentType.Label()
	switch s.Status() {
	case calibration.StepInstructions:
		return "Étape : " + kind,
			fmt.Sprintf("Cliquez sur Commencer puis sélectionnez une %s sur le plan. "+
				"Utilisez Étendre pour sélectionner tous les éléments similaires.", kind)
	case calibration.StepSelecting:
		return "Sélection : " + kind,
			fmt.Sprintf("Cliquez sur chaque %s ou sur un élément représentatif, "+
				"puis Valider. Passer si le plan n'en contient pas.", kind)
	case calibration.StepReview:
		return "Vérification : " + kind,
			"Contrôlez les éléments en vert et saisissez les cotes réelles des points relevés."
	case calibration.StepComplete:
		return "Calibrage terminé",
			"Tous les types d'éléments ont été identifiés. Les ouvrages sont dans l'onglet Métré."
	}
	return "Calibrage", "Démarrez le calibrage pour identifier portes, fenêtres, murs et pièces."
}

func (w *wizardPanel) refresh() {
	s := w.app.ws.Calibration()
	title, text := stepText(s)
	w.title.SetText(title)
	w.instructions.SetText(text)

	done, total := s.Progress()
	w.dots.SetProgress(done, total, s.Step != calibration.StepIdle)

	step := s.Step
	setEnabled(w.startBtn, step == calibration.StepIdle)
	setEnabled(w.beginBtn, step != calibration.StepIdle)
	setEnabled(w.reviewBtn, step == calibration.StepSelecting)
	setEnabled(w.skipBtn, step != calibration.StepIdle)
	setEnabled(w.cancelBtn, step == calibration.StepSelecting || step == calibration.StepReview)
	if step == calibration.StepInstructions {
		w.beginBtn.SetText("Commencer")
	} else {
		w.beginBtn.SetText("Valider l'étape")
	}

	w.refreshPick(s.CurrentType)
	w.refreshPoints(s)
}

// refreshPick lists the catalogue items of the current kind. The options
// are rebuilt only when the kind changes so the user's choice survives.
func (w *wizardPanel) refreshPick(kind model.ElementKind) {
	if kind == w.pickFor && !w.pickStale {
		return
	}
	w.pickFor = kind
	w.pickStale = false
	w.pickIDs = nil
	var labels []string
	if kind != "" {
		for _, item := range w.app.ws.Catalogue().ForKind(kind) {
			w.pickIDs = append(w.pickIDs, item.ID)
			labels = append(labels, fmt.Sprintf("%s (%.2f %s/%s)", item.Designation, item.UnitPrice, w.app.ws.Settings().Currency, item.Unit))
		}
	}
	w.pick.Options = labels
	w.pick.ClearSelected()
	setEnabled(w.pick, len(labels) > 0)
}

// invalidatePick forces the pick options to be rebuilt after a catalogue change.
func (w *wizardPanel) invalidatePick() {
	w.pickStale = true
}

func (w *wizardPanel) refreshPoints(s calibration.Session) {
	w.points.RemoveAll()
	pts := s.CurrentPoints()
	if len(pts) == 0 {
		w.points.Add(widget.NewLabel("Aucun point relevé pour ce type."))
		return
	}
	for i, p := range pts {
		idx := i // capture
		text := fmt.Sprintf("#%d  (%.0f, %.0f)", i+1, p.X, p.Y)
		if p.Dimensions != nil {
			text += "  " + formatDimensions(*p.Dimensions)
		}
		row := container.NewBorder(nil, nil, nil, nil, widget.NewLabel(text))
		if p.Dimensions == nil {
			btn := widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() {
				w.showDimensionDialog(idx, s.CurrentType)
			})
			row = container.NewBorder(nil, nil, nil, btn, widget.NewLabel(text))
		}
		w.points.Add(row)
	}
}

func formatDimensions(d model.Dimensions) string {
	switch {
	case d.Length > 0:
		return fmt.Sprintf("L %.2f m", d.Length)
	case d.Width > 0 || d.Height > 0:
		return fmt.Sprintf("%.2f x %.2f m", d.Width, d.Height)
	}
	return ""
}

func (w *wizardPanel) showDimensionDialog(index int, kind model.ElementKind) {
	widthEntry := widget.NewEntry()
	heightEntry := widget.NewEntry()
	lengthEntry := widget.NewEntry()

	var items []*widget.FormItem
	if kind.Linear() {
		items = []*widget.FormItem{widget.NewFormItem("Longueur (m)", lengthEntry)}
	} else {
		items = []*widget.FormItem{
			widget.NewFormItem("Largeur (m)", widthEntry),
			widget.NewFormItem("Hauteur (m)", heightEntry),
		}
	}

	dialog.ShowForm("Cotes réelles", "Enregistrer", "Annuler", items, func(ok bool) {
		if !ok {
			return
		}
		d, err := parseDimensions(widthEntry.Text, heightEntry.Text, lengthEntry.Text)
		if err != nil {
			dialog.ShowError(err, w.app.window)
			return
		}
		w.app.ws.SetDimension(index, d)
	}, w.app.window)
}

// parseDimensions reads the dimension entries; empty fields are zero and a
// decimal comma is accepted.
func parseDimensions(width, height, length string) (model.Dimensions, error) {
	var d model.Dimensions
	fields := []struct {
		text string
		dst  *float64
	}{{width, &d.Width}, {height, &d.Height}, {length, &d.Length}}
	for _, f := range fields {
		if f.text == "" {
			continue
		}
		v, err := parseNumber(f.text)
		if err != nil || v <= 0 {
			return model.Dimensions{}, fmt.Errorf("cote invalide: %q", f.text)
		}
		*f.dst = v
	}
	if d == (model.Dimensions{}) {
		return d, fmt.Errorf("aucune cote saisie")
	}
	return d, nil
}

type disableable interface {
	Enable()
	Disable()
}

func setEnabled(w disableable, on bool) {
	if on {
		w.Enable()
	} else {
		w.Disable()
	}
}
