package ui

import (
	"log/slog"
	"strings"
	"testing"

	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/metre/internal/calibration"
	"github.com/piwi3910/metre/internal/measure"
	"github.com/piwi3910/metre/internal/model"
	"github.com/piwi3910/metre/internal/plan"
)

func TestStepText(t *testing.T) {
	s := calibration.NewSession()
	title, _ := stepText(s)
	assert.Equal(t, "Calibrage", title)

	s, ok := calibration.Start(s)
	require.True(t, ok)
	title, text := stepText(s)
	assert.Equal(t, "Étape : Porte", title)
	assert.Contains(t, text, "Commencer")

	s, _ = calibration.BeginStep(s, false)
	title, _ = stepText(s)
	assert.Equal(t, "Sélection : Porte", title)

	s, _ = calibration.Review(s)
	title, _ = stepText(s)
	assert.Equal(t, "Vérification : Porte", title)

	for range model.CalibrationSequence {
		s, _ = calibration.SkipStep(s)
	}
	title, _ = stepText(s)
	assert.Equal(t, "Calibrage terminé", title)
}

func TestParseDimensions(t *testing.T) {
	d, err := parseDimensions("0,83", "2.04", "")
	require.NoError(t, err)
	assert.Equal(t, model.Dimensions{Width: 0.83, Height: 2.04}, d)

	d, err = parseDimensions("", "", "4.5")
	require.NoError(t, err)
	assert.Equal(t, 4.5, d.Length)

	_, err = parseDimensions("", "", "")
	assert.Error(t, err)
	_, err = parseDimensions("abc", "", "")
	assert.Error(t, err)
	_, err = parseDimensions("-1", "", "")
	assert.Error(t, err)
}

func TestFormatDimensions(t *testing.T) {
	assert.Equal(t, "L 4.50 m", formatDimensions(model.Dimensions{Length: 4.5}))
	assert.Equal(t, "0.83 x 2.04 m", formatDimensions(model.Dimensions{Width: 0.83, Height: 2.04}))
	assert.Empty(t, formatDimensions(model.Dimensions{}))
}

func TestParseNumber(t *testing.T) {
	v, err := parseNumber(" 12,5 ")
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	_, err = parseNumber("douze")
	assert.Error(t, err)
}

func TestSameCoefficient(t *testing.T) {
	one, other := 1.5, 1.5
	two := 2.0
	assert.True(t, sameCoefficient(nil, nil))
	assert.True(t, sameCoefficient(&one, &other))
	assert.False(t, sameCoefficient(&one, &two))
	assert.False(t, sameCoefficient(nil, &one))
}

func TestCountsText(t *testing.T) {
	store := plan.NewStore()
	require.NoError(t, store.Load([]model.Element{
		{ID: "d1", Kind: model.KindDoor, Layer: "PORTES", Geometry: model.RectGeometry(0, 0, 90, 20)},
	}))
	e := measure.NewEngine(plan.NewSelection(store), 10, slog.Default())

	assert.Empty(t, countsText(e))

	e.SelectTool(measure.ToolCounter)
	e.Click(model.Point2D{X: 10, Y: 10}, "d1")
	assert.Equal(t, "Comptage : 1 (auto 1, manuel 0)", countsText(e))

	require.Equal(t, measure.NeedsConfirmation, e.SelectTool(measure.ToolLength))
	require.Equal(t, measure.Applied, e.Confirm())
	require.Equal(t, measure.ToolLength, e.Tool())
	e.BeginDrag(model.Point2D{})
	_, ok := e.Release(model.Point2D{X: 300})
	require.True(t, ok)
	assert.Equal(t, "Longueurs : 1 mesure(s), 3.00 m", countsText(e))
}

func TestCounterModeOf(t *testing.T) {
	assert.Equal(t, measure.CounterManual, counterModeOf(modeManual))
	assert.Equal(t, measure.CounterAutomatic, counterModeOf(modeAutomatic))
}

func TestToolHelp(t *testing.T) {
	for _, tool := range measure.Tools {
		assert.NotEmpty(t, toolHelp(tool), tool)
	}
}

func TestJoinMessages(t *testing.T) {
	msgs := make([]string, 12)
	for i := range msgs {
		msgs[i] = "ligne"
	}
	out := joinMessages("Erreurs:", msgs)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, maxListedMessages+2)
	assert.Equal(t, "Erreurs:", lines[0])
	assert.Equal(t, "... et 2 autre(s)", lines[len(lines)-1])

	assert.Equal(t, "Titre\n- a", joinMessages("Titre", []string{"a"}))
}

func TestThemeFromConfig(t *testing.T) {
	dark := ThemeFromConfig("dark")
	assert.False(t, dark.system)
	assert.Equal(t, theme.VariantDark, dark.variant)

	light := ThemeFromConfig("light")
	assert.Equal(t, theme.VariantLight, light.variant)

	sys := ThemeFromConfig("system")
	assert.True(t, sys.system)
	assert.Equal(t, float32(12), sys.Size(theme.SizeNameText))
}

func TestCatalogueItemFromForm(t *testing.T) {
	item, err := catalogueItemFromForm(" Porte coulissante ", "Menuiseries", "", model.UnitEach, "310,50", "Porte")
	require.NoError(t, err)
	assert.Equal(t, "Porte coulissante", item.Designation)
	assert.Equal(t, 310.5, item.UnitPrice)
	assert.Equal(t, model.KindDoor, item.Kind)
	assert.Len(t, item.ID, 8)

	item, err = catalogueItemFromForm("Prise", "Électricité", "", model.UnitEach, "0", noKind)
	require.NoError(t, err)
	assert.Empty(t, item.Kind)

	_, err = catalogueItemFromForm("", "Lot", "", model.UnitEach, "1", noKind)
	assert.Error(t, err)
	_, err = catalogueItemFromForm("X", "Lot", "", "", "1", noKind)
	assert.Error(t, err)
	_, err = catalogueItemFromForm("X", "Lot", "", model.UnitEach, "-3", noKind)
	assert.Error(t, err)
}

func TestKindOptionsRoundTrip(t *testing.T) {
	opts := kindOptions()
	require.Len(t, opts, len(model.CalibrationSequence)+1)
	assert.Equal(t, noKind, opts[0])
	for _, k := range model.CalibrationSequence {
		assert.Equal(t, k, kindFromOption(kindOption(k)))
	}
	assert.Equal(t, noKind, kindOption(""))
}

func TestValidatePreferences(t *testing.T) {
	cfg := model.DefaultAppConfig()
	assert.NoError(t, validatePreferences(cfg))

	bad := cfg
	bad.DefaultIsolationOpacity = 1.5
	assert.Error(t, validatePreferences(bad))

	bad = cfg
	bad.AutoSaveInterval = -1
	assert.Error(t, validatePreferences(bad))

	bad = cfg
	bad.DefaultCurrency = ""
	assert.Error(t, validatePreferences(bad))
}
