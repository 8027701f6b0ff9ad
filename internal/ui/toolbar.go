package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"github.com/piwi3910/metre/internal/measure"
)

const (
	modeAutomatic = "Automatique"
	modeManual    = "Manuel"
	shapeRect     = "Rectangle"
	shapeCircle   = "Cercle"
	noCatalogue   = "(sans ouvrage du bordereau)"
)

// toolBar is the measurement tool bar above the canvas and the
// Valider/Annuler footer below it.
type toolBar struct {
	app *App

	bar    fyne.CanvasObject
	footer *fyne.Container

	buttons   map[measure.Tool]*ttwidget.Button
	undoBtn   *ttwidget.Button
	redoBtn   *ttwidget.Button
	isolation *widget.Check

	mode      *widget.RadioGroup
	shape     *widget.RadioGroup
	counts    *widget.Label
	catalogue *widget.Select
	catIDs    []string
	validate  *widget.Button
}

func toolIcon(t measure.Tool) fyne.Resource {
	switch t {
	case measure.ToolSurface:
		return theme.ViewFullScreenIcon()
	case measure.ToolLength:
		return theme.ContentRemoveIcon()
	case measure.ToolCounter:
		return theme.ContentAddIcon()
	case measure.ToolDetection:
		return theme.SearchIcon()
	case measure.ToolCompare:
		return theme.ViewRestoreIcon()
	case measure.ToolLayer:
		return theme.ListIcon()
	}
	return theme.VisibilityIcon()
}

func newToolBar(a *App) *toolBar {
	tb := &toolBar{app: a, buttons: make(map[measure.Tool]*ttwidget.Button)}

	var toolButtons []fyne.CanvasObject
	for _, t := range measure.Tools {
		tool := t // capture
		btn := newToolButton(tool, toolIcon(tool), func() {
			a.handleDecision(a.ws.SelectTool(tool))
		})
		tb.buttons[tool] = btn
		toolButtons = append(toolButtons, btn)
	}

	tb.undoBtn = newIconButtonWithTooltip(theme.ContentUndoIcon(), "Annuler la dernière modification des ouvrages", func() { a.ws.Undo() })
	tb.redoBtn = newIconButtonWithTooltip(theme.ContentRedoIcon(), "Rétablir", func() { a.ws.Redo() })
	tb.isolation = widget.NewCheck("Isoler", func(on bool) {
		if on != a.ws.Selection().Isolation() {
			a.ws.SetIsolation(on)
		}
	})

	tb.bar = container.NewHBox(append(toolButtons,
		layout.NewSpacer(), tb.isolation, tb.undoBtn, tb.redoBtn)...)

	tb.mode = widget.NewRadioGroup([]string{modeAutomatic, modeManual}, func(s string) {
		if s == "" {
			return
		}
		a.ws.SetCounterMode(counterModeOf(s))
	})
	tb.mode.Horizontal = true
	tb.mode.Required = true

	tb.shape = widget.NewRadioGroup([]string{shapeRect, shapeCircle}, func(s string) {
		if s == shapeCircle {
			a.ws.SetShape(measure.ShapeCircle)
		} else if s == shapeRect {
			a.ws.SetShape(measure.ShapeRectangle)
		}
	})
	tb.shape.Horizontal = true
	tb.shape.Required = true

	tb.counts = widget.NewLabel("")
	tb.catalogue = widget.NewSelect(nil, nil)
	tb.catalogue.PlaceHolder = noCatalogue

	tb.validate = widget.NewButtonWithIcon("Valider", theme.ConfirmIcon(), tb.onValidate)
	tb.validate.Importance = widget.HighImportance
	cancel := widget.NewButtonWithIcon("Annuler", theme.CancelIcon(), func() {
		a.handleDecision(a.ws.CancelTool())
	})

	tb.footer = container.NewVBox(
		container.NewHBox(tb.mode, tb.shape, layout.NewSpacer(), tb.counts),
		container.NewBorder(nil, nil, nil, container.NewHBox(cancel, tb.validate), tb.catalogue),
	)
	tb.refreshCatalogue()
	return tb
}

func counterModeOf(label string) measure.CounterMode {
	if label == modeManual {
		return measure.CounterManual
	}
	return measure.CounterAutomatic
}

func (tb *toolBar) onValidate() {
	id := ""
	if i := tb.catalogue.SelectedIndex(); i >= 0 && i < len(tb.catIDs) {
		id = tb.catIDs[i]
	}
	items := tb.app.ws.ValidateTool(id)
	if len(items) > 0 {
		tb.app.status.SetText(fmt.Sprintf("%d ouvrage(s) ajouté(s) au métré", len(items)))
	}
}

// refreshCatalogue reloads the catalogue picker of the footer.
func (tb *toolBar) refreshCatalogue() {
	cat := tb.app.ws.Catalogue()
	tb.catIDs = nil
	var labels []string
	for _, item := range cat.Items {
		tb.catIDs = append(tb.catIDs, item.ID)
		labels = append(labels, fmt.Sprintf("%s [%s]", item.Designation, item.Unit))
	}
	tb.catalogue.Options = labels
	tb.catalogue.ClearSelected()
}

// countsText summarises what the active tool holds.
func countsText(e *measure.Engine) string {
	switch e.Tool() {
	case measure.ToolCounter:
		return fmt.Sprintf("Comptage : %d (auto %d, manuel %d)", e.Total(), e.AutoCount(), e.ManualCount())
	case measure.ToolSurface:
		return fmt.Sprintf("Surfaces : %d mesure(s), %.2f m²", len(e.Measurements()), e.MeasuredTotal())
	case measure.ToolLength:
		return fmt.Sprintf("Longueurs : %d mesure(s), %.2f m", len(e.Measurements()), e.MeasuredTotal())
	}
	return ""
}

func (tb *toolBar) refresh() {
	e := tb.app.ws.Tools()
	active := e.Tool()
	for t, btn := range tb.buttons {
		markActive(btn, t == active)
	}
	setEnabled(tb.buttons[measure.ToolCounter], !tb.app.ws.Calibration().Active())
	setEnabled(tb.undoBtn, tb.app.ws.CanUndo())
	setEnabled(tb.redoBtn, tb.app.ws.CanRedo())
	if tb.isolation.Checked != tb.app.ws.Selection().Isolation() {
		tb.isolation.SetChecked(tb.app.ws.Selection().Isolation())
	}

	if !active.IsCalculation() {
		tb.footer.Hide()
		return
	}
	tb.footer.Show()

	if active == measure.ToolCounter {
		want := modeAutomatic
		if e.Mode() == measure.CounterManual {
			want = modeManual
		}
		if tb.mode.Selected != want {
			tb.mode.SetSelected(want)
		}
		tb.mode.Show()
	} else {
		tb.mode.Hide()
	}

	if active == measure.ToolSurface {
		want := shapeRect
		if e.Shape() == measure.ShapeCircle {
			want = shapeCircle
		}
		if tb.shape.Selected != want {
			tb.shape.SetSelected(want)
		}
		tb.shape.Show()
	} else {
		tb.shape.Hide()
	}

	tb.counts.SetText(countsText(e))
	setEnabled(tb.validate, e.CanValidate())
}
