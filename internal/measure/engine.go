package measure

import (
	"fmt"
	"log/slog"

	"github.com/piwi3910/metre/internal/model"
)

// Selector is the part of the selection engine the counter drives.
type Selector interface {
	Toggle(id string) bool
	IsHighlighted(id string) bool
	Clear()
	SetIsolation(enabled bool)
}

// Commit describes the work items produced by Validate.
type Commit struct {
	Designation string
	Lot         string
	SubCategory string
	UnitPrice   float64
	Location    model.Location
}

// Engine is the tool-mode state machine layered on the selection engine.
type Engine struct {
	sel          Selector
	log          *slog.Logger
	markerRadius float64

	tool     Tool
	mode     CounterMode
	shape    Shape
	captures []Capture

	drag         *drag
	measurements []Measurement

	pending *Tool
}

// NewEngine creates an engine with the select tool active.
func NewEngine(sel Selector, markerRadius float64, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		sel:          sel,
		log:          logger,
		markerRadius: markerRadius,
		tool:         ToolSelect,
		mode:         CounterAutomatic,
		shape:        ShapeRectangle,
	}
}

// Tool returns the active tool.
func (e *Engine) Tool() Tool { return e.tool }

// Mode returns the counter sub-mode.
func (e *Engine) Mode() CounterMode { return e.mode }

// Shape returns the surface tool figure.
func (e *Engine) Shape() Shape { return e.shape }

// Pending returns the tool change waiting for confirmation, if any.
func (e *Engine) Pending() (Tool, bool) {
	if e.pending == nil {
		return "", false
	}
	return *e.pending, true
}

// SelectTool activates t. Selecting the active tool again returns to select.
// Leaving the counter with counted units asks for confirmation first.
func (e *Engine) SelectTool(t Tool) Decision {
	if !t.Valid() {
		return Ignored
	}
	target := t
	if t == e.tool {
		target = ToolSelect
	}
	if target == e.tool {
		return Ignored
	}
	if e.tool == ToolCounter && e.Total() > 0 {
		e.pending = &target
		e.log.Debug("tool change needs confirmation", slog.String("from", string(e.tool)), slog.String("to", string(target)), slog.Int("count", e.Total()))
		return NeedsConfirmation
	}
	e.switchTo(target)
	return Applied
}

func (e *Engine) switchTo(t Tool) {
	from := e.tool
	e.drag = nil
	e.pending = nil
	if from == ToolCounter {
		e.captures = nil
		e.sel.Clear()
		e.sel.SetIsolation(false)
	}
	if from == ToolSurface || from == ToolLength {
		e.measurements = nil
	}
	e.tool = t
	if t == ToolCounter {
		e.sel.Clear()
		e.sel.SetIsolation(true)
	}
	e.log.Debug("tool changed", slog.String("from", string(from)), slog.String("to", string(t)))
}

// Confirm applies the pending tool change, discarding counted units.
func (e *Engine) Confirm() Decision {
	if e.pending == nil {
		return Ignored
	}
	e.switchTo(*e.pending)
	return Applied
}

// Decline drops the pending tool change and leaves the tool untouched.
func (e *Engine) Decline() Decision {
	if e.pending == nil {
		return Ignored
	}
	e.pending = nil
	return Applied
}

// Cancel leaves a calculation tool, discarding its data. Counted units
// require confirmation.
func (e *Engine) Cancel() Decision {
	if !e.tool.IsCalculation() {
		return Ignored
	}
	if e.tool == ToolCounter && e.Total() > 0 {
		target := ToolSelect
		e.pending = &target
		return NeedsConfirmation
	}
	e.switchTo(ToolSelect)
	return Applied
}

// Escape routes the Escape key. An unreleased drag is dropped first;
// otherwise it behaves as Cancel.
func (e *Engine) Escape() Decision {
	if e.pending != nil {
		return NeedsConfirmation
	}
	if e.drag != nil {
		e.drag = nil
		return Applied
	}
	return e.Cancel()
}

// SetCounterMode switches the counter sub-mode. Captured units are kept.
func (e *Engine) SetCounterMode(m CounterMode) bool {
	if m != CounterAutomatic && m != CounterManual {
		return false
	}
	e.mode = m
	return true
}

// SetShape chooses the surface tool figure.
func (e *Engine) SetShape(s Shape) bool {
	if s != ShapeRectangle && s != ShapeCircle {
		return false
	}
	e.shape = s
	return true
}

// Click handles a primary click at p. hitID is the element under the
// pointer, empty on bare canvas. Only the counter reacts to clicks.
func (e *Engine) Click(p model.Point2D, hitID string) bool {
	if e.tool != ToolCounter || e.pending != nil {
		return false
	}
	switch e.mode {
	case CounterAutomatic:
		if hitID == "" || !e.sel.Toggle(hitID) {
			return false
		}
		if e.sel.IsHighlighted(hitID) {
			e.captures = append(e.captures, AutoCapture(hitID, p))
		} else {
			e.dropAuto(hitID)
		}
		return true
	case CounterManual:
		if hitID != "" {
			return false
		}
		e.captures = append(e.captures, ManualCapture(p))
		return true
	}
	return false
}

func (e *Engine) dropAuto(id string) {
	for i, c := range e.captures {
		if c.Source == SourceAuto && c.ElementID == id {
			e.captures = append(e.captures[:i], e.captures[i+1:]...)
			return
		}
	}
}

// RightClick deletes the manual marker nearest to p within the marker radius.
func (e *Engine) RightClick(p model.Point2D) bool {
	if e.tool != ToolCounter || e.pending != nil {
		return false
	}
	best := -1
	bestDist := e.markerRadius
	for i, c := range e.captures {
		if c.Source != SourceManual {
			continue
		}
		if d := c.Point.Distance(p); d <= bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return false
	}
	e.captures = append(e.captures[:best], e.captures[best+1:]...)
	return true
}

// Captures returns a copy of the counted units.
func (e *Engine) Captures() []Capture {
	out := make([]Capture, len(e.captures))
	copy(out, e.captures)
	return out
}

// Markers returns the manual marker positions.
func (e *Engine) Markers() []model.Point2D {
	var out []model.Point2D
	for _, c := range e.captures {
		if c.Source == SourceManual {
			out = append(out, c.Point)
		}
	}
	return out
}

func (e *Engine) count(src Source) int {
	n := 0
	for _, c := range e.captures {
		if c.Source == src {
			n++
		}
	}
	return n
}

// ManualCount returns the number of manual markers.
func (e *Engine) ManualCount() int { return e.count(SourceManual) }

// AutoCount returns the number of automatically counted elements.
func (e *Engine) AutoCount() int { return e.count(SourceAuto) }

// Total returns manual plus automatic counts.
func (e *Engine) Total() int { return len(e.captures) }

// BeginDrag starts a surface or length drag at p. Any unreleased drag is discarded.
func (e *Engine) BeginDrag(p model.Point2D) bool {
	if e.tool != ToolSurface && e.tool != ToolLength {
		return false
	}
	e.drag = &drag{tool: e.tool, shape: e.shape, start: p, current: p}
	return true
}

// DragTo updates the pointer position of the running drag.
func (e *Engine) DragTo(p model.Point2D) bool {
	if e.drag == nil {
		return false
	}
	e.drag.current = p
	return true
}

// Preview returns the measurement the running drag would produce.
func (e *Engine) Preview() (Measurement, bool) {
	if e.drag == nil {
		return Measurement{}, false
	}
	return e.drag.measure(e.drag.current), true
}

// Release finalizes the running drag using the release position p.
// Degenerate drags produce nothing.
func (e *Engine) Release(p model.Point2D) (Measurement, bool) {
	if e.drag == nil {
		return Measurement{}, false
	}
	m := e.drag.measure(p)
	e.drag = nil
	if m.Value == 0 {
		return Measurement{}, false
	}
	e.measurements = append(e.measurements, m)
	e.log.Debug("measurement finalized", slog.String("tool", string(m.Tool)), slog.Float64("value", m.Value), slog.String("unit", m.Unit))
	return m, true
}

// Measurements returns the finalized measurements of the active tool.
func (e *Engine) Measurements() []Measurement {
	out := make([]Measurement, len(e.measurements))
	copy(out, e.measurements)
	return out
}

// MeasuredTotal sums the finalized measurements.
func (e *Engine) MeasuredTotal() float64 {
	var sum float64
	for _, m := range e.measurements {
		sum += m.Value
	}
	return sum
}

// CanValidate reports whether Validate would commit anything.
func (e *Engine) CanValidate() bool {
	if e.pending != nil {
		return false
	}
	switch e.tool {
	case ToolCounter:
		return e.Total() > 0
	case ToolSurface, ToolLength:
		return len(e.measurements) > 0
	}
	return false
}

// Validate commits the active tool's data as work items and returns to
// select. The counter emits one item per non-empty bucket; surface and
// length emit one item carrying the summed measurements. Nothing is
// produced when CanValidate is false.
func (e *Engine) Validate(c Commit) []model.WorkItem {
	if !e.CanValidate() {
		return nil
	}
	var items []model.WorkItem
	switch e.tool {
	case ToolCounter:
		if n := e.ManualCount(); n > 0 {
			items = append(items, e.item(c, "manuel", float64(n), model.UnitEach))
		}
		if n := e.AutoCount(); n > 0 {
			items = append(items, e.item(c, "automatique", float64(n), model.UnitEach))
		}
	case ToolSurface:
		items = append(items, e.item(c, "surface", e.MeasuredTotal(), model.UnitSquareMeter))
	case ToolLength:
		items = append(items, e.item(c, "longueur", e.MeasuredTotal(), model.UnitMeter))
	}
	e.log.Info("tool validated", slog.String("tool", string(e.tool)), slog.Int("work_items", len(items)))
	e.switchTo(ToolSelect)
	return items
}

func (e *Engine) item(c Commit, bucket string, qty float64, unit string) model.WorkItem {
	designation := c.Designation
	if designation == "" {
		designation = "Comptage"
		if e.tool != ToolCounter {
			designation = "Mesure"
		}
	}
	if e.tool == ToolCounter {
		designation = fmt.Sprintf("%s (%s)", designation, bucket)
	}
	w := model.NewWorkItem(designation, c.Lot, unit, qty, c.UnitPrice)
	w.SubCategory = c.SubCategory
	w.Location = c.Location
	return w
}
