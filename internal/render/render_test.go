package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/metre/internal/model"
)

func el(id string, kind model.ElementKind, g model.Geometry) model.Element {
	return model.Element{ID: id, Kind: kind, Layer: "L", Geometry: g}
}

func TestStyleForStates(t *testing.T) {
	base := el("d", model.KindDoor, model.RectGeometry(0, 0, 90, 10))
	opts := Options{Isolation: true, IsolationOpacity: 0.25}

	plain := StyleFor(base, Options{})
	assert.Equal(t, KindColor(model.KindDoor), plain.Fill)
	assert.Equal(t, 1.0, plain.Opacity)

	dimmed := StyleFor(base, opts)
	assert.Equal(t, 0.25, dimmed.Opacity)

	hl := base
	hl.Highlighted = true
	s := StyleFor(hl, opts)
	assert.Equal(t, HighlightColor, s.Fill)
	assert.Equal(t, 1.0, s.Opacity, "highlighted elements are not dimmed")

	rm := base
	rm.Removed = true
	s = StyleFor(rm, Options{})
	assert.Equal(t, RemovedColor, s.Fill)
	assert.Less(t, s.Opacity, 1.0, "removed elements are faded even without isolation")
}

func TestWallsAreStroked(t *testing.T) {
	w := el("w", model.KindWall, model.SegmentGeometry(model.Point2D{}, model.Point2D{X: 100}))
	s := StyleFor(w, Options{})
	assert.Equal(t, float32(3), s.StrokeWidth)
	w.Highlighted = true
	assert.Equal(t, HighlightColor, StyleFor(w, Options{}).Stroke)
}

func TestApplyScalesAlpha(t *testing.T) {
	s := Style{Opacity: 0.5}
	c := s.Apply(HighlightColor)
	assert.Equal(t, uint8(110), c.A)
}

func TestBuildDrawsRoomsFirst(t *testing.T) {
	elements := []model.Element{
		el("d", model.KindDoor, model.RectGeometry(10, 0, 90, 10)),
		el("r", model.KindRoom, model.RectGeometry(0, 0, 500, 400)),
	}
	sc := Build(elements, nil, nil, Options{})
	require.Len(t, sc.Items, 2)
	assert.Equal(t, "r", sc.Items[0].Element.ID)
	assert.Equal(t, "d", sc.Items[1].Element.ID)
	assert.Equal(t, model.Geometry{X: 0, Y: 0, Width: 500, Height: 400}, sc.Bounds)
}

func TestViewportRoundTrip(t *testing.T) {
	v := Fit(model.Geometry{X: 100, Y: 50, Width: 1000, Height: 500}, 500, 500)
	assert.InDelta(t, 0.5, v.Scale, 1e-9)

	x, y := v.ToScreen(model.Point2D{X: 300, Y: 250})
	assert.InDelta(t, 100, x, 1e-9)
	assert.InDelta(t, 100, y, 1e-9)

	p := v.ToPlan(x, y)
	assert.InDelta(t, 300, p.X, 1e-9)
	assert.InDelta(t, 250, p.Y, 1e-9)
}

func TestFitDegenerate(t *testing.T) {
	v := Fit(model.Geometry{}, 100, 100)
	assert.Equal(t, 1.0, v.Scale)
}
