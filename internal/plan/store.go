// Package plan holds the element arena of an imported floor plan and the
// similarity-based selection engine that operates over it.
package plan

import (
	"fmt"

	"github.com/piwi3910/metre/internal/model"
)

// Store is the in-memory arena of plan elements indexed by id. Element
// records are created once at load time and never destroyed; exclusion is
// expressed through the Removed flag.
type Store struct {
	byID  map[string]*model.Element
	order []string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{byID: make(map[string]*model.Element)}
}

// Load replaces the store content with the given elements. Elements
// without an id get one; duplicated ids are reported as an error and the
// store is left empty.
func (s *Store) Load(elements []model.Element) error {
	s.Reset()
	for _, e := range elements {
		if e.ID == "" {
			e = withID(e)
		}
		if err := s.Add(e); err != nil {
			s.Reset()
			return err
		}
	}
	return nil
}

func withID(e model.Element) model.Element {
	fresh := model.NewElement(e.Kind, e.Layer, e.Geometry)
	fresh.Highlighted = e.Highlighted
	fresh.Removed = e.Removed
	return fresh
}

// Add appends an element to the arena.
func (s *Store) Add(e model.Element) error {
	if _, ok := s.byID[e.ID]; ok {
		return fmt.Errorf("duplicate element id %q", e.ID)
	}
	el := e
	s.byID[e.ID] = &el
	s.order = append(s.order, e.ID)
	return nil
}

// Reset empties the arena.
func (s *Store) Reset() {
	s.byID = make(map[string]*model.Element)
	s.order = nil
}

// Len returns the number of elements.
func (s *Store) Len() int {
	return len(s.order)
}

// Get returns a copy of the element with the given id.
func (s *Store) Get(id string) (model.Element, bool) {
	e, ok := s.byID[id]
	if !ok {
		return model.Element{}, false
	}
	return *e, true
}

// All returns copies of every element in load order.
func (s *Store) All() []model.Element {
	out := make([]model.Element, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}

// ByKind returns the elements of one kind in load order.
func (s *Store) ByKind(kind model.ElementKind) []model.Element {
	var out []model.Element
	for _, id := range s.order {
		if e := s.byID[id]; e.Kind == kind {
			out = append(out, *e)
		}
	}
	return out
}

// ByKey returns the elements sharing a similarity key, removed ones included.
func (s *Store) ByKey(key model.SimilarityKey) []model.Element {
	var out []model.Element
	for _, id := range s.order {
		if e := s.byID[id]; e.Key() == key {
			out = append(out, *e)
		}
	}
	return out
}

// Layers returns the distinct layers of one kind in load order.
func (s *Store) Layers(kind model.ElementKind) []string {
	seen := make(map[string]bool)
	var layers []string
	for _, id := range s.order {
		e := s.byID[id]
		if e.Kind == kind && !seen[e.Layer] {
			seen[e.Layer] = true
			layers = append(layers, e.Layer)
		}
	}
	return layers
}

// HitTest returns the id of the top-most non-removed element containing p.
// Later elements are drawn above earlier ones. Linear elements are matched
// within tolerance plan units.
func (s *Store) HitTest(p model.Point2D, tolerance float64) (string, bool) {
	for i := len(s.order) - 1; i >= 0; i-- {
		e := s.byID[s.order[i]]
		if e.Removed {
			continue
		}
		tol := 0.0
		if e.Kind.Linear() || e.Geometry.Width == 0 || e.Geometry.Height == 0 {
			tol = tolerance
		}
		if e.Geometry.Contains(p, tol) {
			return e.ID, true
		}
	}
	return "", false
}

func (s *Store) setHighlighted(id string, on bool) {
	if e, ok := s.byID[id]; ok {
		e.Highlighted = on
	}
}

func (s *Store) setRemoved(id string) {
	if e, ok := s.byID[id]; ok {
		e.Removed = true
		e.Highlighted = false
	}
}

func (s *Store) restoreAll() {
	for _, e := range s.byID {
		e.Removed = false
		e.Highlighted = false
	}
}
