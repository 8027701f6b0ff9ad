package widgets

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/metre/internal/measure"
	"github.com/piwi3910/metre/internal/model"
	"github.com/piwi3910/metre/internal/render"
)

// canvasMargin keeps the plan away from the widget border, in screen units.
const canvasMargin = 12

// markerSize is the on-screen diameter of a counter marker.
const markerSize = 10

var (
	backgroundColor = color.NRGBA{R: 250, G: 250, B: 248, A: 255}
	previewStroke   = color.NRGBA{R: 106, G: 27, B: 154, A: 255}
)

// PlanCanvas draws a render.Scene and reports pointer input in plan units.
//
// Taps, secondary taps and drags are converted with the viewport fitted at
// the last layout, so callbacks always receive plan coordinates.
type PlanCanvas struct {
	widget.BaseWidget

	scene    render.Scene
	viewport render.Viewport

	dragging bool
	dragLast model.Point2D

	OnTap          func(p model.Point2D)
	OnSecondaryTap func(p model.Point2D)
	OnDragStart    func(p model.Point2D)
	OnDrag         func(p model.Point2D)
	OnDragEnd      func(p model.Point2D)
}

// NewPlanCanvas creates an empty plan canvas.
func NewPlanCanvas() *PlanCanvas {
	pc := &PlanCanvas{viewport: render.Viewport{Scale: 1}}
	pc.ExtendBaseWidget(pc)
	return pc
}

// SetScene replaces the drawn scene and refreshes the widget.
func (pc *PlanCanvas) SetScene(sc render.Scene) {
	pc.scene = sc
	pc.Refresh()
}

// Scene returns the scene currently drawn.
func (pc *PlanCanvas) Scene() render.Scene { return pc.scene }

// fit recomputes the viewport for the given widget size.
func (pc *PlanCanvas) fit(size fyne.Size) {
	w := float64(size.Width) - 2*canvasMargin
	h := float64(size.Height) - 2*canvasMargin
	pc.viewport = render.Fit(pc.scene.Bounds, w, h)
}

// toScreen maps a plan point to widget coordinates.
func (pc *PlanCanvas) toScreen(p model.Point2D) fyne.Position {
	x, y := pc.viewport.ToScreen(p)
	return fyne.NewPos(float32(x)+canvasMargin, float32(y)+canvasMargin)
}

// ToPlan maps a widget position to plan units.
func (pc *PlanCanvas) ToPlan(pos fyne.Position) model.Point2D {
	return pc.viewport.ToPlan(float64(pos.X-canvasMargin), float64(pos.Y-canvasMargin))
}

func (pc *PlanCanvas) inside(pos fyne.Position) bool {
	size := pc.Size()
	return pos.X >= 0 && pos.Y >= 0 && pos.X <= size.Width && pos.Y <= size.Height
}

// Tapped forwards a primary click.
func (pc *PlanCanvas) Tapped(e *fyne.PointEvent) {
	if pc.OnTap == nil || !pc.inside(e.Position) {
		return
	}
	pc.OnTap(pc.ToPlan(e.Position))
}

// TappedSecondary forwards a right click.
func (pc *PlanCanvas) TappedSecondary(e *fyne.PointEvent) {
	if pc.OnSecondaryTap == nil || !pc.inside(e.Position) {
		return
	}
	pc.OnSecondaryTap(pc.ToPlan(e.Position))
}

// Dragged starts a drag on the first event and tracks the pointer afterwards.
// The start point is the event position minus the first delta.
func (pc *PlanCanvas) Dragged(e *fyne.DragEvent) {
	if !pc.dragging {
		pc.dragging = true
		start := e.Position.Subtract(e.Dragged)
		if pc.OnDragStart != nil {
			pc.OnDragStart(pc.ToPlan(start))
		}
	}
	pc.dragLast = pc.ToPlan(e.Position)
	if pc.OnDrag != nil {
		pc.OnDrag(pc.dragLast)
	}
}

// DragEnd reports the last sampled pointer position as the release point.
func (pc *PlanCanvas) DragEnd() {
	if !pc.dragging {
		return
	}
	pc.dragging = false
	if pc.OnDragEnd != nil {
		pc.OnDragEnd(pc.dragLast)
	}
}

func (pc *PlanCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &planCanvasRenderer{pc: pc}
}

type planCanvasRenderer struct {
	pc      *PlanCanvas
	objects []fyne.CanvasObject
	size    fyne.Size
}

func (r *planCanvasRenderer) rebuild() {
	r.objects = nil
	pc := r.pc

	bg := canvas.NewRectangle(backgroundColor)
	bg.Resize(r.size)
	r.objects = append(r.objects, bg)

	if len(pc.scene.Items) == 0 {
		hint := canvas.NewText("Aucun plan chargé. Fichier > Ouvrir un plan...", color.NRGBA{R: 120, G: 120, B: 120, A: 255})
		hint.TextSize = 12
		hint.Move(fyne.NewPos(canvasMargin, canvasMargin))
		r.objects = append(r.objects, hint)
		return
	}

	scale := float32(pc.viewport.Scale)
	for _, item := range pc.scene.Items {
		r.drawElement(item, scale)
	}
	for _, m := range pc.scene.Markers {
		r.drawMarker(m)
	}
	if pc.scene.Preview != nil {
		r.drawPreview(*pc.scene.Preview)
	}
}

func (r *planCanvasRenderer) drawElement(item render.Item, scale float32) {
	g := item.Element.Geometry
	st := item.Style
	pos := r.pc.toScreen(model.Point2D{X: g.X, Y: g.Y})

	if item.Element.Kind.Linear() {
		var a, b model.Point2D
		if g.Width >= g.Height {
			a, b = model.Point2D{X: g.X, Y: g.Y + g.Height/2}, model.Point2D{X: g.X + g.Width, Y: g.Y + g.Height/2}
		} else {
			a, b = model.Point2D{X: g.X + g.Width/2, Y: g.Y}, model.Point2D{X: g.X + g.Width/2, Y: g.Y + g.Height}
		}
		line := canvas.NewLine(st.Apply(st.Stroke))
		line.StrokeWidth = st.StrokeWidth
		line.Position1 = r.pc.toScreen(a)
		line.Position2 = r.pc.toScreen(b)
		r.objects = append(r.objects, line)
		return
	}

	rect := canvas.NewRectangle(st.Apply(st.Fill))
	rect.StrokeColor = st.Apply(st.Stroke)
	rect.StrokeWidth = st.StrokeWidth
	rect.Resize(fyne.NewSize(float32(g.Width)*scale, float32(g.Height)*scale))
	rect.Move(pos)
	r.objects = append(r.objects, rect)
}

func (r *planCanvasRenderer) drawMarker(p model.Point2D) {
	c := r.pc.toScreen(p)
	dot := canvas.NewCircle(render.MarkerColor)
	dot.StrokeColor = color.White
	dot.StrokeWidth = 1
	dot.Position1 = fyne.NewPos(c.X-markerSize/2, c.Y-markerSize/2)
	dot.Position2 = fyne.NewPos(c.X+markerSize/2, c.Y+markerSize/2)
	r.objects = append(r.objects, dot)
}

func (r *planCanvasRenderer) drawPreview(m measure.Measurement) {
	a := r.pc.toScreen(m.Start)
	b := r.pc.toScreen(m.End)

	switch {
	case m.Tool == measure.ToolLength:
		line := canvas.NewLine(previewStroke)
		line.StrokeWidth = 2
		line.Position1, line.Position2 = a, b
		r.objects = append(r.objects, line)
	case m.Shape == measure.ShapeCircle:
		radius := float32(m.Start.Distance(m.End) * r.pc.viewport.Scale)
		circle := canvas.NewCircle(render.PreviewColor)
		circle.StrokeColor = previewStroke
		circle.StrokeWidth = 2
		circle.Position1 = fyne.NewPos(a.X-radius, a.Y-radius)
		circle.Position2 = fyne.NewPos(a.X+radius, a.Y+radius)
		r.objects = append(r.objects, circle)
	default:
		rect := canvas.NewRectangle(render.PreviewColor)
		rect.StrokeColor = previewStroke
		rect.StrokeWidth = 2
		rect.Move(fyne.NewPos(min(a.X, b.X), min(a.Y, b.Y)))
		rect.Resize(fyne.NewSize(abs32(b.X-a.X), abs32(b.Y-a.Y)))
		r.objects = append(r.objects, rect)
	}

	label := canvas.NewText(fmt.Sprintf("%.2f %s", m.Value, m.Unit), previewStroke)
	label.TextSize = 11
	label.TextStyle = fyne.TextStyle{Bold: true}
	label.Move(fyne.NewPos(b.X+4, b.Y+4))
	r.objects = append(r.objects, label)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func (r *planCanvasRenderer) Layout(size fyne.Size) {
	r.size = size
	r.pc.fit(size)
	r.rebuild()
}

func (r *planCanvasRenderer) Refresh() {
	r.pc.fit(r.size)
	r.rebuild()
}

func (r *planCanvasRenderer) Destroy()                     {}
func (r *planCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *planCanvasRenderer) MinSize() fyne.Size           { return fyne.NewSize(480, 360) }
