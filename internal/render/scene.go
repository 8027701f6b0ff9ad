package render

import (
	"math"

	"github.com/piwi3910/metre/internal/measure"
	"github.com/piwi3910/metre/internal/model"
)

// Item is one element ready to draw.
type Item struct {
	Element model.Element
	Style   Style
}

// Scene is everything drawn over the plan background.
type Scene struct {
	Items   []Item
	Markers []model.Point2D
	Preview *measure.Measurement
	Bounds  model.Geometry
}

// Build projects elements, counter markers and a running drag preview.
// Rooms are drawn first so doors, windows and walls stay visible on top.
func Build(elements []model.Element, markers []model.Point2D, preview *measure.Measurement, opts Options) Scene {
	sc := Scene{Markers: markers, Preview: preview, Bounds: Bounds(elements)}
	for _, pass := range []bool{true, false} {
		for _, e := range elements {
			if (e.Kind == model.KindRoom) != pass {
				continue
			}
			sc.Items = append(sc.Items, Item{Element: e, Style: StyleFor(e, opts)})
		}
	}
	return sc
}

// Bounds returns the union of the elements' bounding boxes.
func Bounds(elements []model.Element) model.Geometry {
	if len(elements) == 0 {
		return model.Geometry{}
	}
	var outline model.Outline
	for _, e := range elements {
		g := e.Geometry
		outline = append(outline,
			model.Point2D{X: g.X, Y: g.Y},
			model.Point2D{X: g.X + g.Width, Y: g.Y + g.Height},
		)
	}
	return model.OutlineGeometry(outline)
}

// Viewport maps plan units to screen units with a uniform scale.
type Viewport struct {
	Origin model.Point2D // plan point drawn at screen (0,0)
	Scale  float64       // screen units per plan unit
}

// Fit returns the viewport that fits bounds inside maxW × maxH, keeping the aspect ratio.
func Fit(bounds model.Geometry, maxW, maxH float64) Viewport {
	if bounds.Width <= 0 || bounds.Height <= 0 || maxW <= 0 || maxH <= 0 {
		return Viewport{Origin: model.Point2D{X: bounds.X, Y: bounds.Y}, Scale: 1}
	}
	scale := math.Min(maxW/bounds.Width, maxH/bounds.Height)
	return Viewport{Origin: model.Point2D{X: bounds.X, Y: bounds.Y}, Scale: scale}
}

// ToScreen converts a plan point to screen coordinates.
func (v Viewport) ToScreen(p model.Point2D) (float64, float64) {
	return (p.X - v.Origin.X) * v.Scale, (p.Y - v.Origin.Y) * v.Scale
}

// ToPlan converts screen coordinates back to a plan point.
func (v Viewport) ToPlan(x, y float64) model.Point2D {
	if v.Scale == 0 {
		return v.Origin
	}
	return model.Point2D{X: x/v.Scale + v.Origin.X, Y: y/v.Scale + v.Origin.Y}
}
