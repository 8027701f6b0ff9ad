package plan

import "github.com/piwi3910/metre/internal/model"

// Selection is the similarity-based selection engine. It is the only writer
// of the Highlighted and Removed flags of the store's elements.
type Selection struct {
	store *Store

	lastActivated string
	key           model.SimilarityKey
	hasKey        bool
	isolation     bool
}

// NewSelection creates a selection engine over store.
func NewSelection(store *Store) *Selection {
	return &Selection{store: store}
}

// Store returns the underlying element arena.
func (s *Selection) Store() *Store {
	return s.store
}

// Toggle flips the highlight of one element and records it as the last
// activated element. The similarity key is captured here and reused by
// ExtendToSimilar and ExcludeSimilar until the next toggle. Removed and
// unknown elements are ignored.
func (s *Selection) Toggle(id string) bool {
	e, ok := s.store.byID[id]
	if !ok || e.Removed {
		return false
	}
	e.Highlighted = !e.Highlighted
	s.lastActivated = id
	s.key = e.Key()
	s.hasKey = true
	return true
}

// LastActivated returns the id of the element clicked most recently.
func (s *Selection) LastActivated() (string, bool) {
	return s.lastActivated, s.hasKey
}

// SimilarKey returns the key cached at the most recent toggle.
func (s *Selection) SimilarKey() (model.SimilarityKey, bool) {
	return s.key, s.hasKey
}

// Preview lists the ids ExtendToSimilar would highlight, without changing anything.
func (s *Selection) Preview() []string {
	if !s.hasKey {
		return nil
	}
	var ids []string
	for _, id := range s.store.order {
		e := s.store.byID[id]
		if e.Key() == s.key && !e.Removed && !e.Highlighted {
			ids = append(ids, id)
		}
	}
	return ids
}

// ExtendToSimilar highlights every non-removed element sharing the cached
// key. It returns the number of newly highlighted elements; a second call
// returns 0.
func (s *Selection) ExtendToSimilar() int {
	ids := s.Preview()
	for _, id := range ids {
		s.store.setHighlighted(id, true)
	}
	return len(ids)
}

// ExcludeSimilar marks every element sharing the cached key as removed and
// un-highlights it. Removed elements stay out of later extensions until Reset.
func (s *Selection) ExcludeSimilar() int {
	if !s.hasKey {
		return 0
	}
	n := 0
	for _, id := range s.store.order {
		e := s.store.byID[id]
		if e.Key() == s.key && !e.Removed {
			s.store.setRemoved(id)
			n++
		}
	}
	return n
}

// SetIsolation switches the isolation display. It only affects rendering.
func (s *Selection) SetIsolation(enabled bool) {
	s.isolation = enabled
}

// Isolation reports whether isolation display is on.
func (s *Selection) Isolation() bool {
	return s.isolation
}

// IsHighlighted reports whether the element is currently highlighted.
func (s *Selection) IsHighlighted(id string) bool {
	e, ok := s.store.byID[id]
	return ok && e.Highlighted
}

// IsRemoved reports whether the element has been excluded.
func (s *Selection) IsRemoved(id string) bool {
	e, ok := s.store.byID[id]
	return ok && e.Removed
}

// Highlighted returns the highlighted elements in load order.
func (s *Selection) Highlighted() []model.Element {
	var out []model.Element
	for _, id := range s.store.order {
		if e := s.store.byID[id]; e.Highlighted {
			out = append(out, *e)
		}
	}
	return out
}

// HighlightedOfKind returns the highlighted elements of one kind.
func (s *Selection) HighlightedOfKind(kind model.ElementKind) []model.Element {
	var out []model.Element
	for _, e := range s.Highlighted() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of highlighted elements.
func (s *Selection) Count() int {
	n := 0
	for _, e := range s.store.byID {
		if e.Highlighted {
			n++
		}
	}
	return n
}

// Clear un-highlights every element. Exclusions and the cached key are kept.
func (s *Selection) Clear() {
	for _, e := range s.store.byID {
		e.Highlighted = false
	}
}

// Reset starts a new selection session: exclusions are lifted, the cached
// key is dropped and isolation is turned off.
func (s *Selection) Reset() {
	s.store.restoreAll()
	s.Forget()
}

// Forget drops the cached key and turns isolation off. Element flags are kept.
func (s *Selection) Forget() {
	s.lastActivated = ""
	s.key = model.SimilarityKey{}
	s.hasKey = false
	s.isolation = false
}
