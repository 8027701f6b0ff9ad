// Package render maps plan state to draw styles. It holds no state of its
// own: the canvas widget and the PDF report both derive their drawing from
// the element records through this package.
package render

import (
	"fmt"
	"image/color"

	"github.com/piwi3910/metre/internal/model"
)

// Kind colours, drawn semi-transparent over the plan.
var kindColors = map[model.ElementKind]color.NRGBA{
	model.KindDoor:   {R: 255, G: 152, B: 0, A: 200},  // orange
	model.KindWindow: {R: 33, G: 150, B: 243, A: 200}, // blue
	model.KindWall:   {R: 96, G: 96, B: 96, A: 220},   // dark grey
	model.KindRoom:   {R: 210, G: 180, B: 140, A: 90}, // sand
}

var (
	HighlightColor = color.NRGBA{R: 76, G: 175, B: 80, A: 220}  // green
	RemovedColor   = color.NRGBA{R: 189, G: 189, B: 189, A: 60} // faded grey
	MarkerColor    = color.NRGBA{R: 244, G: 67, B: 54, A: 230}  // red
	PreviewColor   = color.NRGBA{R: 156, G: 39, B: 176, A: 120} // purple
	strokeColor    = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
)

// Style is the visual treatment of one element.
type Style struct {
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float32
	Opacity     float64
}

// Options tunes the projection.
type Options struct {
	Isolation        bool
	IsolationOpacity float64 // applied to non-highlighted elements when isolating
}

// KindColor returns the base colour of a kind.
func KindColor(k model.ElementKind) color.NRGBA {
	if c, ok := kindColors[k]; ok {
		return c
	}
	return color.NRGBA{R: 121, G: 85, B: 72, A: 200}
}

// StyleFor derives the style of e. Removed elements are always faded;
// highlighted ones are green; isolation dims everything else.
func StyleFor(e model.Element, opts Options) Style {
	s := Style{Fill: KindColor(e.Kind), Stroke: strokeColor, StrokeWidth: 1, Opacity: 1}
	if e.Kind.Linear() {
		s.StrokeWidth = 3
		s.Stroke = s.Fill
	}
	switch {
	case e.Removed:
		s.Fill = RemovedColor
		s.Stroke = RemovedColor
		s.Opacity = 0.3
	case e.Highlighted:
		s.Fill = HighlightColor
		s.StrokeWidth = 2
		if e.Kind.Linear() {
			s.Stroke = HighlightColor
			s.StrokeWidth = 4
		}
	case opts.Isolation:
		s.Opacity = opts.IsolationOpacity
	}
	return s
}

// Apply returns c with its alpha scaled by the style opacity.
func (s Style) Apply(c color.NRGBA) color.NRGBA {
	a := float64(c.A) * s.Opacity
	if a < 0 {
		a = 0
	}
	if a > 255 {
		a = 255
	}
	c.A = uint8(a)
	return c
}

// Hex formats c as #rrggbbaa.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
