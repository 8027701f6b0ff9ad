package model

import (
	"errors"
	"math"
	"testing"
)

func TestCalibrationSequenceOrder(t *testing.T) {
	want := []ElementKind{KindDoor, KindWindow, KindWall, KindRoom}
	if len(CalibrationSequence) != len(want) {
		t.Fatalf("expected %d kinds, got %d", len(want), len(CalibrationSequence))
	}
	for i, k := range want {
		if CalibrationSequence[i] != k {
			t.Errorf("sequence[%d]: expected %s, got %s", i, k, CalibrationSequence[i])
		}
	}
}

func TestElementKindValid(t *testing.T) {
	if !KindRoom.Valid() {
		t.Error("room should be valid")
	}
	if ElementKind("stairs").Valid() {
		t.Error("stairs should not be valid")
	}
	if KindWindow.Label() != "Fenêtre" {
		t.Errorf("expected Fenêtre, got %s", KindWindow.Label())
	}
}

func TestGeometryContainsWithTolerance(t *testing.T) {
	g := RectGeometry(10, 10, 100, 0)
	if !g.Contains(Point2D{X: 50, Y: 12}, 5) {
		t.Error("point within tolerance band should be contained")
	}
	if g.Contains(Point2D{X: 50, Y: 20}, 5) {
		t.Error("point outside tolerance band should not be contained")
	}
}

func TestSegmentGeometry(t *testing.T) {
	g := SegmentGeometry(Point2D{X: 300, Y: 0}, Point2D{X: 0, Y: 400})
	if g.X != 0 || g.Y != 0 || g.Width != 300 || g.Height != 400 {
		t.Errorf("unexpected bounding box %+v", g)
	}
	if g.Length != 500 {
		t.Errorf("expected length 500, got %f", g.Length)
	}
	if g.LengthMeters() != 5 {
		t.Errorf("expected 5 m, got %f", g.LengthMeters())
	}
}

func TestAreaSquareMeters(t *testing.T) {
	g := RectGeometry(0, 0, 400, 250)
	if got := g.AreaSquareMeters(); math.Abs(got-10) > 1e-9 {
		t.Errorf("expected 10 m², got %f", got)
	}
}

func TestOutlineBoundingBox(t *testing.T) {
	o := Outline{{X: 5, Y: 5}, {X: -2, Y: 8}, {X: 10, Y: -1}}
	min, max := o.BoundingBox()
	if min.X != -2 || min.Y != -1 || max.X != 10 || max.Y != 8 {
		t.Errorf("unexpected bounds min=%+v max=%+v", min, max)
	}
	g := OutlineGeometry(o)
	if g.Width != 12 || g.Height != 9 {
		t.Errorf("unexpected geometry %+v", g)
	}
}

func TestElementKey(t *testing.T) {
	a := NewElement(KindDoor, "L1", RectGeometry(0, 0, 90, 10))
	b := NewElement(KindDoor, "L1", RectGeometry(200, 0, 90, 10))
	c := NewElement(KindDoor, "L2", RectGeometry(400, 0, 90, 10))
	if a.ID == b.ID {
		t.Error("elements should get distinct ids")
	}
	if a.Key() != b.Key() {
		t.Error("same kind and layer should share a key")
	}
	if a.Key() == c.Key() {
		t.Error("different layers should not share a key")
	}
}

func TestWorkItemCostDefaultsCoefficient(t *testing.T) {
	w := NewWorkItem("Carrelage", "Revêtements", UnitSquareMeter, 10, 45)
	if w.EffectiveCoefficient() != 1 {
		t.Errorf("expected coefficient 1, got %f", w.EffectiveCoefficient())
	}
	if w.Cost() != 450 {
		t.Errorf("expected cost 450, got %f", w.Cost())
	}
	w = w.WithCoefficient(1.1)
	if math.Abs(w.Cost()-495) > 1e-9 {
		t.Errorf("expected cost 495, got %f", w.Cost())
	}
}

func TestWorkItemValidate(t *testing.T) {
	if err := NewWorkItem("ok", "lot", UnitEach, 0, 0).Validate(); err != nil {
		t.Errorf("zero quantity should be valid, got %v", err)
	}
	err := NewWorkItem("neg", "lot", UnitEach, -1, 5).Validate()
	if !errors.Is(err, ErrInvalidWorkItem) {
		t.Errorf("expected ErrInvalidWorkItem, got %v", err)
	}
	err = NewWorkItem("neg price", "lot", UnitEach, 1, -5).Validate()
	if !errors.Is(err, ErrInvalidWorkItem) {
		t.Errorf("expected ErrInvalidWorkItem, got %v", err)
	}
}

func TestLocationKey(t *testing.T) {
	l := Location{Level: "RDC", Room: "Cuisine"}
	if l.Key() != "RDC - Cuisine" {
		t.Errorf("unexpected key %q", l.Key())
	}
}

func TestSurfaceFromRoomAndOverride(t *testing.T) {
	room := NewElement(KindRoom, "PIECES", RectGeometry(0, 0, 500, 400))
	s := NewSurfaceFromRoom("Séjour", room)
	if s.RoomID != room.ID {
		t.Errorf("expected room id %s, got %s", room.ID, s.RoomID)
	}
	if s.Superficie != 20 {
		t.Errorf("expected 20 m², got %f", s.Superficie)
	}
	if s.Overridden {
		t.Error("new surface should not be overridden")
	}
	s.SetSuperficie(18.5)
	if s.Superficie != 18.5 || !s.Overridden {
		t.Errorf("override not applied: %+v", s)
	}
}

func TestSurfaceLinkUnlink(t *testing.T) {
	s := Surface{ID: "s1"}
	if !s.Link("w1") {
		t.Error("first link should succeed")
	}
	if s.Link("w1") {
		t.Error("duplicate link should be rejected")
	}
	s.Link("w2")
	if !s.Unlink("w1") {
		t.Error("unlink of linked id should succeed")
	}
	if s.Unlink("w1") {
		t.Error("unlink of missing id should fail")
	}
	if len(s.OuvragesIDs) != 1 || s.OuvragesIDs[0] != "w2" {
		t.Errorf("unexpected ids %v", s.OuvragesIDs)
	}
}

func TestProjectTotalCost(t *testing.T) {
	p := NewProject()
	p.WorkItems = append(p.WorkItems,
		NewWorkItem("a", "Gros œuvre", UnitEach, 10, 45),
		NewWorkItem("b", "Gros œuvre", UnitEach, 2, 1).WithCoefficient(2),
	)
	if p.TotalCost() != 454 {
		t.Errorf("expected total 454, got %f", p.TotalCost())
	}
}
