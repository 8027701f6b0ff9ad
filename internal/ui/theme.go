// Package ui provides the Métré desktop application UI components.
//
// This file defines a compact Fyne theme so the plan canvas keeps most of
// the window.

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// MetreTheme wraps the default Fyne theme with compact sizing overrides.
type MetreTheme struct {
	base    fyne.Theme
	variant fyne.ThemeVariant
	system  bool
}

// NewMetreTheme creates a theme that follows the system light/dark variant.
func NewMetreTheme() *MetreTheme {
	return &MetreTheme{base: theme.DefaultTheme(), system: true}
}

// ThemeFromConfig maps the AppConfig theme preference ("light", "dark",
// "system") to a theme.
func ThemeFromConfig(name string) *MetreTheme {
	t := NewMetreTheme()
	switch name {
	case "light":
		t.SetVariant(theme.VariantLight)
	case "dark":
		t.SetVariant(theme.VariantDark)
	}
	return t
}

// SetVariant forces a light or dark variant.
func (t *MetreTheme) SetVariant(variant fyne.ThemeVariant) {
	t.variant = variant
	t.system = false
}

// Color delegates to the base theme, with the forced variant when one is set.
func (t *MetreTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if t.system {
		return t.base.Color(name, variant)
	}
	return t.base.Color(name, t.variant)
}

// Font delegates to the base theme.
func (t *MetreTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

// Icon delegates to the base theme.
func (t *MetreTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size returns compact sizing overrides.
func (t *MetreTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 12
	case theme.SizeNameCaptionText:
		return 9
	case theme.SizeNameHeadingText:
		return 18
	case theme.SizeNameSubHeadingText:
		return 14
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameInlineIcon:
		return 18
	default:
		return t.base.Size(name)
	}
}
