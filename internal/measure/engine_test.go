package measure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/metre/internal/log"
	"github.com/piwi3910/metre/internal/model"
	"github.com/piwi3910/metre/internal/plan"
)

func newEngine(t *testing.T) (*Engine, *plan.Selection) {
	t.Helper()
	store := plan.NewStore()
	require.NoError(t, store.Load([]model.Element{
		{ID: "d1", Kind: model.KindDoor, Layer: "L1", Geometry: model.RectGeometry(0, 0, 90, 10)},
		{ID: "d2", Kind: model.KindDoor, Layer: "L1", Geometry: model.RectGeometry(200, 0, 90, 10)},
		{ID: "d3", Kind: model.KindDoor, Layer: "L1", Geometry: model.RectGeometry(400, 0, 90, 10)},
	}))
	sel := plan.NewSelection(store)
	return NewEngine(sel, 15, log.Discard()), sel
}

func pt(x, y float64) model.Point2D { return model.Point2D{X: x, Y: y} }

func TestToolToggleSemantics(t *testing.T) {
	e, _ := newEngine(t)
	assert.Equal(t, ToolSelect, e.Tool())

	assert.Equal(t, Applied, e.SelectTool(ToolLength))
	assert.Equal(t, ToolLength, e.Tool())
	assert.Equal(t, Applied, e.SelectTool(ToolLength))
	assert.Equal(t, ToolSelect, e.Tool())
	assert.Equal(t, Ignored, e.SelectTool(ToolSelect))
	assert.Equal(t, Ignored, e.SelectTool(Tool("laser")))
}

func TestCalculationTools(t *testing.T) {
	for _, tool := range []Tool{ToolSurface, ToolLength, ToolCounter, ToolDetection} {
		assert.True(t, tool.IsCalculation(), tool)
	}
	for _, tool := range []Tool{ToolSelect, ToolCompare, ToolLayer} {
		assert.False(t, tool.IsCalculation(), tool)
	}
}

func TestCounterMixedModesValidate(t *testing.T) {
	e, sel := newEngine(t)
	require.Equal(t, Applied, e.SelectTool(ToolCounter))
	assert.True(t, sel.Isolation())

	e.SetCounterMode(CounterManual)
	assert.True(t, e.Click(pt(1000, 1000), ""))
	assert.True(t, e.Click(pt(1100, 1000), ""))

	e.SetCounterMode(CounterAutomatic)
	assert.True(t, e.Click(pt(10, 5), "d1"))
	assert.True(t, e.Click(pt(210, 5), "d2"))

	e.SetCounterMode(CounterManual)
	assert.True(t, e.Click(pt(1200, 1000), ""))

	assert.Equal(t, 3, e.ManualCount())
	assert.Equal(t, 2, e.AutoCount())
	assert.Equal(t, 5, e.Total())
	require.True(t, e.CanValidate())

	items := e.Validate(Commit{Lot: "Comptages", Location: model.Location{Level: "RDC", Room: "Séjour"}})
	require.Len(t, items, 2)
	assert.Equal(t, 3.0, items[0].Quantity)
	assert.Equal(t, 2.0, items[1].Quantity)
	for _, w := range items {
		assert.Equal(t, model.UnitEach, w.Unit)
		assert.Zero(t, w.UnitPrice)
		assert.Equal(t, "RDC - Séjour", w.Location.Key())
	}

	assert.Zero(t, e.Total())
	assert.Equal(t, ToolSelect, e.Tool())
	assert.False(t, sel.Isolation())
	assert.Zero(t, sel.Count())
}

func TestCounterSingleBucket(t *testing.T) {
	e, _ := newEngine(t)
	e.SelectTool(ToolCounter)
	e.Click(pt(10, 5), "d1")

	items := e.Validate(Commit{Designation: "Porte", UnitPrice: 185})
	require.Len(t, items, 1)
	assert.Equal(t, "Porte (automatique)", items[0].Designation)
	assert.Equal(t, 185.0, items[0].UnitPrice)
}

func TestCounterEmptyValidateIsNoop(t *testing.T) {
	e, _ := newEngine(t)
	e.SelectTool(ToolCounter)
	assert.False(t, e.CanValidate())
	assert.Nil(t, e.Validate(Commit{}))
	assert.Equal(t, ToolCounter, e.Tool())
}

func TestAutoClickTogglesCount(t *testing.T) {
	e, sel := newEngine(t)
	e.SelectTool(ToolCounter)

	e.Click(pt(10, 5), "d1")
	assert.True(t, sel.IsHighlighted("d1"))
	assert.Equal(t, 1, e.AutoCount())

	e.Click(pt(10, 5), "d1")
	assert.False(t, sel.IsHighlighted("d1"))
	assert.Equal(t, 0, e.AutoCount())

	assert.False(t, e.Click(pt(700, 700), ""), "bare canvas in automatic mode")
}

func TestManualIgnoresElements(t *testing.T) {
	e, _ := newEngine(t)
	e.SelectTool(ToolCounter)
	e.SetCounterMode(CounterManual)
	assert.False(t, e.Click(pt(10, 5), "d1"))
	assert.Zero(t, e.Total())
}

func TestRightClickRemovesNearestMarker(t *testing.T) {
	e, _ := newEngine(t)
	e.SelectTool(ToolCounter)
	e.SetCounterMode(CounterManual)
	e.Click(pt(100, 100), "")
	e.Click(pt(110, 100), "")
	e.Click(pt(500, 500), "")

	assert.True(t, e.RightClick(pt(108, 100)))
	assert.Equal(t, []model.Point2D{pt(100, 100), pt(500, 500)}, e.Markers())
	assert.False(t, e.RightClick(pt(300, 300)), "nothing within radius")
}

func TestLeavingCounterNeedsConfirmation(t *testing.T) {
	e, _ := newEngine(t)
	e.SelectTool(ToolCounter)
	e.SetCounterMode(CounterManual)
	e.Click(pt(100, 100), "")

	assert.Equal(t, NeedsConfirmation, e.SelectTool(ToolLength))
	pending, ok := e.Pending()
	require.True(t, ok)
	assert.Equal(t, ToolLength, pending)
	assert.False(t, e.Click(pt(1, 1), ""), "input is blocked while confirming")

	assert.Equal(t, Applied, e.Decline())
	assert.Equal(t, ToolCounter, e.Tool())
	assert.Equal(t, 1, e.Total())

	assert.Equal(t, NeedsConfirmation, e.SelectTool(ToolCounter))
	_, ok = e.Pending()
	require.True(t, ok)
	assert.Equal(t, Applied, e.Confirm())
	assert.Equal(t, ToolSelect, e.Tool())
	assert.Zero(t, e.Total())
}

func TestCancelAndEscape(t *testing.T) {
	e, _ := newEngine(t)
	assert.Equal(t, Ignored, e.Cancel())

	e.SelectTool(ToolCounter)
	assert.Equal(t, Applied, e.Cancel(), "empty counter discards immediately")
	assert.Equal(t, ToolSelect, e.Tool())

	e.SelectTool(ToolCounter)
	e.Click(pt(10, 5), "d1")
	assert.Equal(t, NeedsConfirmation, e.Escape())
	assert.Equal(t, NeedsConfirmation, e.Escape())
	assert.Equal(t, Applied, e.Confirm())
	assert.Equal(t, ToolSelect, e.Tool())
	assert.Equal(t, Ignored, e.Confirm())
}

func TestSurfaceRectangleDrag(t *testing.T) {
	e, _ := newEngine(t)
	e.SelectTool(ToolSurface)
	require.True(t, e.BeginDrag(pt(100, 100)))
	e.DragTo(pt(200, 200))
	preview, ok := e.Preview()
	require.True(t, ok)
	assert.InDelta(t, 1.0, preview.Value, 1e-9)

	m, ok := e.Release(pt(500, 300))
	require.True(t, ok)
	assert.InDelta(t, 8.0, m.Value, 1e-9) // 400 × 200 cm
	assert.Equal(t, model.UnitSquareMeter, m.Unit)

	_, ok = e.Preview()
	assert.False(t, ok, "no partial shape survives release")
}

func TestSurfaceCircleDrag(t *testing.T) {
	e, _ := newEngine(t)
	e.SelectTool(ToolSurface)
	e.SetShape(ShapeCircle)
	e.BeginDrag(pt(0, 0))
	m, ok := e.Release(pt(100, 0))
	require.True(t, ok)
	assert.InDelta(t, math.Pi, m.Value, 1e-9)
}

func TestLengthDragAndValidate(t *testing.T) {
	e, _ := newEngine(t)
	e.SelectTool(ToolLength)
	e.BeginDrag(pt(0, 0))
	_, ok := e.Release(pt(300, 400))
	require.True(t, ok)
	e.BeginDrag(pt(0, 0))
	_, ok = e.Release(pt(0, 250))
	require.True(t, ok)

	assert.InDelta(t, 7.5, e.MeasuredTotal(), 1e-9)
	items := e.Validate(Commit{Designation: "Plinthe", Lot: "Menuiseries"})
	require.Len(t, items, 1)
	assert.Equal(t, model.UnitMeter, items[0].Unit)
	assert.InDelta(t, 7.5, items[0].Quantity, 1e-9)
	assert.Equal(t, ToolSelect, e.Tool())
}

func TestUnreleasedDragIsDiscarded(t *testing.T) {
	e, _ := newEngine(t)
	e.SelectTool(ToolLength)
	e.BeginDrag(pt(0, 0))
	e.DragTo(pt(100, 0))
	e.BeginDrag(pt(50, 50))
	m, ok := e.Release(pt(50, 150))
	require.True(t, ok)
	assert.InDelta(t, 1.0, m.Value, 1e-9)

	e.BeginDrag(pt(0, 0))
	e.SelectTool(ToolSurface)
	_, ok = e.Release(pt(100, 100))
	assert.False(t, ok, "tool change drops the drag")
	assert.Empty(t, e.Measurements())
}

func TestDegenerateDragProducesNothing(t *testing.T) {
	e, _ := newEngine(t)
	e.SelectTool(ToolSurface)
	e.BeginDrag(pt(10, 10))
	_, ok := e.Release(pt(10, 200))
	assert.False(t, ok)
	assert.False(t, e.CanValidate())
}

func TestDragOnlyInMeasuringTools(t *testing.T) {
	e, _ := newEngine(t)
	assert.False(t, e.BeginDrag(pt(0, 0)))
	e.SelectTool(ToolCounter)
	assert.False(t, e.BeginDrag(pt(0, 0)))
	assert.False(t, e.DragTo(pt(1, 1)))
}

func TestPlaceholderToolsCommitNothing(t *testing.T) {
	e, _ := newEngine(t)
	e.SelectTool(ToolDetection)
	assert.False(t, e.CanValidate())
	assert.Nil(t, e.Validate(Commit{}))
	assert.Equal(t, Applied, e.Cancel())
	assert.Equal(t, ToolSelect, e.Tool())
}
