package measure

import (
	"math"

	"github.com/piwi3910/metre/internal/model"
)

// Source tells how a counted unit was captured.
type Source string

const (
	SourceManual Source = "manual"
	SourceAuto   Source = "auto"
)

// Capture is one counted unit: either a manual marker at Point or an
// automatically detected element identified by ElementID.
type Capture struct {
	Source    Source        `json:"source"`
	Point     model.Point2D `json:"point"`
	ElementID string        `json:"element_id,omitempty"`
}

// ManualCapture creates a marker capture.
func ManualCapture(p model.Point2D) Capture {
	return Capture{Source: SourceManual, Point: p}
}

// AutoCapture creates an element capture.
func AutoCapture(elementID string, at model.Point2D) Capture {
	return Capture{Source: SourceAuto, Point: at, ElementID: elementID}
}

// Measurement is a finalized surface or length drag.
type Measurement struct {
	Tool  Tool          `json:"tool"`
	Shape Shape         `json:"shape,omitempty"`
	Start model.Point2D `json:"start"`
	End   model.Point2D `json:"end"`
	Value float64       `json:"value"`
	Unit  string        `json:"unit"`
}

// RectangleArea returns the area in m² of the rectangle spanned by a and b.
func RectangleArea(a, b model.Point2D) float64 {
	return math.Abs((b.X-a.X)*(b.Y-a.Y)) / (model.UnitsPerMeter * model.UnitsPerMeter)
}

// CircleArea returns the area in m² of the circle centred on c through p.
func CircleArea(c, p model.Point2D) float64 {
	r := c.Distance(p)
	return math.Pi * r * r / (model.UnitsPerMeter * model.UnitsPerMeter)
}

// SegmentLength returns the length in metres between a and b.
func SegmentLength(a, b model.Point2D) float64 {
	return a.Distance(b) / model.UnitsPerMeter
}

type drag struct {
	tool    Tool
	shape   Shape
	start   model.Point2D
	current model.Point2D
}

func (d drag) measure(end model.Point2D) Measurement {
	m := Measurement{Tool: d.tool, Shape: d.shape, Start: d.start, End: end}
	switch {
	case d.tool == ToolLength:
		m.Value = SegmentLength(d.start, end)
		m.Unit = model.UnitMeter
		m.Shape = ""
	case d.shape == ShapeCircle:
		m.Value = CircleArea(d.start, end)
		m.Unit = model.UnitSquareMeter
	default:
		m.Value = RectangleArea(d.start, end)
		m.Unit = model.UnitSquareMeter
	}
	return m
}
