package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"github.com/piwi3910/metre/internal/measure"
)

// newIconButtonWithTooltip creates an icon-only button with a tooltip that appears on hover.
func newIconButtonWithTooltip(icon fyne.Resource, tooltip string, tapped func()) *ttwidget.Button {
	btn := ttwidget.NewButtonWithIcon("", icon, tapped)
	btn.SetToolTip(tooltip)
	return btn
}

// newToolButton creates a labelled tool bar button whose tooltip explains the tool.
func newToolButton(t measure.Tool, icon fyne.Resource, tapped func()) *ttwidget.Button {
	btn := ttwidget.NewButtonWithIcon(t.Label(), icon, tapped)
	btn.SetToolTip(toolHelp(t))
	return btn
}

// markActive gives the active tool button the primary colour.
func markActive(btn *ttwidget.Button, active bool) {
	if active {
		btn.Importance = widget.HighImportance
	} else {
		btn.Importance = widget.MediumImportance
	}
	btn.Refresh()
}

func toolHelp(t measure.Tool) string {
	switch t {
	case measure.ToolSelect:
		return "Cliquer un élément pour le sélectionner"
	case measure.ToolSurface:
		return "Glisser pour mesurer une surface (rectangle ou cercle)"
	case measure.ToolLength:
		return "Glisser pour mesurer une longueur"
	case measure.ToolCounter:
		return "Compter les éléments ou poser des repères"
	case measure.ToolDetection:
		return "Détection des éléments similaires"
	case measure.ToolCompare:
		return "Comparer deux versions du plan"
	case measure.ToolLayer:
		return "Afficher les calques"
	}
	return t.Label()
}
