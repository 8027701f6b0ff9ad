package model

import (
	"math"

	"github.com/google/uuid"
)

// UnitsPerMeter is the number of plan units in one metre. Plans are authored
// at 1 unit = 1 cm.
const UnitsPerMeter = 100.0

// ElementKind is the building element type of a plan element.
type ElementKind string

const (
	KindDoor   ElementKind = "door"
	KindWindow ElementKind = "window"
	KindWall   ElementKind = "wall"
	KindRoom   ElementKind = "room"
)

// CalibrationSequence is the fixed order in which element kinds are identified.
var CalibrationSequence = []ElementKind{KindDoor, KindWindow, KindWall, KindRoom}

// Valid reports whether k is one of the four known kinds.
func (k ElementKind) Valid() bool {
	switch k {
	case KindDoor, KindWindow, KindWall, KindRoom:
		return true
	}
	return false
}

// Label returns the French display name used in the wizard and reports.
func (k ElementKind) Label() string {
	switch k {
	case KindDoor:
		return "Porte"
	case KindWindow:
		return "Fenêtre"
	case KindWall:
		return "Mur"
	case KindRoom:
		return "Pièce"
	default:
		return "Inconnu"
	}
}

// Linear reports whether elements of this kind are measured by length.
func (k ElementKind) Linear() bool {
	return k == KindWall
}

// Point2D represents a 2D coordinate in plan units.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point2D) Distance(q Point2D) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Outline represents a closed polygon as a sequence of 2D points.
// The outline is implicitly closed: the last point connects back to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min = Point2D{X: o[0].X, Y: o[0].Y}
	max = Point2D{X: o[0].X, Y: o[0].Y}
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Geometry is the axis-aligned footprint of an element in plan units.
// Linear elements (walls) also carry their centre-line length.
type Geometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Length float64 `json:"length,omitempty"`
}

// RectGeometry builds a geometry from a position and size.
func RectGeometry(x, y, w, h float64) Geometry {
	return Geometry{X: x, Y: y, Width: w, Height: h}
}

// SegmentGeometry builds the geometry of a linear element from its two endpoints.
func SegmentGeometry(a, b Point2D) Geometry {
	min, max := Outline{a, b}.BoundingBox()
	return Geometry{
		X:      min.X,
		Y:      min.Y,
		Width:  max.X - min.X,
		Height: max.Y - min.Y,
		Length: a.Distance(b),
	}
}

// OutlineGeometry returns the bounding-box geometry of an outline.
func OutlineGeometry(o Outline) Geometry {
	min, max := o.BoundingBox()
	return Geometry{X: min.X, Y: min.Y, Width: max.X - min.X, Height: max.Y - min.Y}
}

// Area returns the bounding-box area in square plan units.
func (g Geometry) Area() float64 {
	return g.Width * g.Height
}

// Center returns the centre of the bounding box.
func (g Geometry) Center() Point2D {
	return Point2D{X: g.X + g.Width/2, Y: g.Y + g.Height/2}
}

// Contains reports whether p lies inside the bounding box grown by tolerance
// on each side. A tolerance lets thin linear elements be picked.
func (g Geometry) Contains(p Point2D, tolerance float64) bool {
	return p.X >= g.X-tolerance && p.X <= g.X+g.Width+tolerance &&
		p.Y >= g.Y-tolerance && p.Y <= g.Y+g.Height+tolerance
}

// AreaSquareMeters converts the bounding-box area to m².
func (g Geometry) AreaSquareMeters() float64 {
	return g.Area() / (UnitsPerMeter * UnitsPerMeter)
}

// LengthMeters converts the element length to metres. Non-linear elements
// report the longer side of their bounding box.
func (g Geometry) LengthMeters() float64 {
	l := g.Length
	if l == 0 {
		l = math.Max(g.Width, g.Height)
	}
	return l / UnitsPerMeter
}

// SimilarityKey groups elements considered similar for bulk selection.
type SimilarityKey struct {
	Kind  ElementKind `json:"kind"`
	Layer string      `json:"layer"`
}

// Element is a plan entity identified on an imported floor plan.
type Element struct {
	ID          string      `json:"id"`
	Kind        ElementKind `json:"kind"`
	Layer       string      `json:"layer"`
	Geometry    Geometry    `json:"geometry"`
	Highlighted bool        `json:"highlighted"`
	Removed     bool        `json:"removed"`
}

func NewElement(kind ElementKind, layer string, geom Geometry) Element {
	return Element{
		ID:       uuid.New().String()[:8],
		Kind:     kind,
		Layer:    layer,
		Geometry: geom,
	}
}

// Key returns the similarity key of the element.
func (e Element) Key() SimilarityKey {
	return SimilarityKey{Kind: e.Kind, Layer: e.Layer}
}

// Dimensions is a real-world size supplied by the user during calibration, in metres.
type Dimensions struct {
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Length float64 `json:"length,omitempty"`
}

// CalibrationPoint records a manual identification click during calibration.
type CalibrationPoint struct {
	Kind       ElementKind `json:"kind"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
}

// Settings holds per-project takeoff preferences.
type Settings struct {
	Currency         string  `json:"currency"`
	DefaultLevel     string  `json:"default_level"`
	DefaultLot       string  `json:"default_lot"`
	IsolationOpacity float64 `json:"isolation_opacity"` // 0..1 applied to non-selected elements
	HitTolerance     float64 `json:"hit_tolerance"`     // plan units around thin elements
	MarkerRadius     float64 `json:"marker_radius"`     // plan units for manual counter markers
}

func DefaultSettings() Settings {
	return Settings{
		Currency:         "€",
		DefaultLevel:     "RDC",
		DefaultLot:       "Comptages",
		IsolationOpacity: 0.25,
		HitTolerance:     5,
		MarkerRadius:     15,
	}
}

// Project ties everything together for save/load.
type Project struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	PlanName  string     `json:"plan_name,omitempty"`
	Elements  []Element  `json:"elements"`
	WorkItems []WorkItem `json:"work_items"`
	Surfaces  []Surface  `json:"surfaces"`
	Settings  Settings   `json:"settings"`
}

func NewProject() Project {
	return Project{
		ID:        uuid.New().String()[:8],
		Name:      "Sans titre",
		Elements:  []Element{},
		WorkItems: []WorkItem{},
		Surfaces:  []Surface{},
		Settings:  DefaultSettings(),
	}
}

// TotalCost returns the sum of all work item costs.
func (p Project) TotalCost() float64 {
	var total float64
	for _, w := range p.WorkItems {
		total += w.Cost()
	}
	return total
}
