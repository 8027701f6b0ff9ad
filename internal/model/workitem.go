package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Units used by work items produced inside the takeoff workspace.
const (
	UnitEach        = "U"
	UnitSquareMeter = "m²"
	UnitMeter       = "m"
	UnitLinearMeter = "ml"
)

// ErrInvalidWorkItem is returned when a work item breaks its quantity or price invariant.
var ErrInvalidWorkItem = errors.New("invalid work item")

// Location is the physical place a work item belongs to.
type Location struct {
	Level string `json:"level"`
	Room  string `json:"room"`
}

// Key returns the "{level} - {room}" grouping key.
func (l Location) Key() string {
	return fmt.Sprintf("%s - %s", l.Level, l.Room)
}

// WorkItem (ouvrage) is a priced, quantified line of the cost takeoff.
type WorkItem struct {
	ID          string   `json:"id"`
	Designation string   `json:"designation"`
	Lot         string   `json:"lot"`
	SubCategory string   `json:"sub_category,omitempty"`
	Quantity    float64  `json:"quantity"`
	Unit        string   `json:"unit"`
	UnitPrice   float64  `json:"unit_price"`
	Coefficient *float64 `json:"coefficient,omitempty"` // nil means 1
	SurfaceID   string   `json:"surface_id,omitempty"`
	Location    Location `json:"location"`
}

// NewWorkItem creates a work item with a generated ID and no coefficient.
func NewWorkItem(designation, lot, unit string, qty, unitPrice float64) WorkItem {
	return WorkItem{
		ID:          uuid.New().String()[:8],
		Designation: designation,
		Lot:         lot,
		Quantity:    qty,
		Unit:        unit,
		UnitPrice:   unitPrice,
	}
}

// EffectiveCoefficient returns the multiplier, defaulting to 1.
func (w WorkItem) EffectiveCoefficient() float64 {
	if w.Coefficient == nil {
		return 1
	}
	return *w.Coefficient
}

// Cost returns quantity × unit price × coefficient.
func (w WorkItem) Cost() float64 {
	return w.Quantity * w.UnitPrice * w.EffectiveCoefficient()
}

// WithCoefficient returns a copy of w with the coefficient set.
func (w WorkItem) WithCoefficient(c float64) WorkItem {
	w.Coefficient = &c
	return w
}

// Validate checks the non-negative quantity and price invariants.
func (w WorkItem) Validate() error {
	if w.Quantity < 0 {
		return fmt.Errorf("%w: negative quantity %.3f for %q", ErrInvalidWorkItem, w.Quantity, w.Designation)
	}
	if w.UnitPrice < 0 {
		return fmt.Errorf("%w: negative unit price %.2f for %q", ErrInvalidWorkItem, w.UnitPrice, w.Designation)
	}
	return nil
}

// Surface is a named measurable area tied to one room element.
type Surface struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	RoomID      string   `json:"room_id"`
	Superficie  float64  `json:"superficie"` // m²
	Overridden  bool     `json:"overridden"`
	OuvragesIDs []string `json:"ouvrages_ids"`
}

// NewSurfaceFromRoom creates a surface whose area is derived from the room's bounding box.
func NewSurfaceFromRoom(name string, room Element) Surface {
	return Surface{
		ID:          uuid.New().String()[:8],
		Name:        name,
		RoomID:      room.ID,
		Superficie:  room.Geometry.AreaSquareMeters(),
		OuvragesIDs: []string{},
	}
}

// SetSuperficie overrides the derived area.
func (s *Surface) SetSuperficie(m2 float64) {
	s.Superficie = m2
	s.Overridden = true
}

// Has reports whether the work item id is linked to the surface.
func (s Surface) Has(id string) bool {
	for _, o := range s.OuvragesIDs {
		if o == id {
			return true
		}
	}
	return false
}

// Link adds a work item id. Returns false if it was already linked.
func (s *Surface) Link(id string) bool {
	if s.Has(id) {
		return false
	}
	s.OuvragesIDs = append(s.OuvragesIDs, id)
	return true
}

// Unlink removes a work item id. Returns true if found and removed.
func (s *Surface) Unlink(id string) bool {
	for i, o := range s.OuvragesIDs {
		if o == id {
			s.OuvragesIDs = append(s.OuvragesIDs[:i], s.OuvragesIDs[i+1:]...)
			return true
		}
	}
	return false
}
