package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/metre/internal/model"
)

func door(id, layer string, x float64) model.Element {
	return model.Element{ID: id, Kind: model.KindDoor, Layer: layer, Geometry: model.RectGeometry(x, 0, 90, 10)}
}

func newABC(t *testing.T) *Selection {
	t.Helper()
	store := NewStore()
	require.NoError(t, store.Load([]model.Element{
		door("A", "L1", 0),
		door("B", "L1", 200),
		door("C", "L2", 400),
	}))
	return NewSelection(store)
}

func highlightedIDs(s *Selection) []string {
	var ids []string
	for _, e := range s.Highlighted() {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestToggleFlipsHighlight(t *testing.T) {
	s := newABC(t)

	assert.True(t, s.Toggle("A"))
	assert.True(t, s.IsHighlighted("A"))
	assert.True(t, s.Toggle("A"))
	assert.False(t, s.IsHighlighted("A"))

	last, ok := s.LastActivated()
	require.True(t, ok)
	assert.Equal(t, "A", last)
}

func TestToggleUnknownIsNoop(t *testing.T) {
	s := newABC(t)
	assert.False(t, s.Toggle("Z"))
	_, ok := s.LastActivated()
	assert.False(t, ok)
}

func TestExtendWithoutActivationIsNoop(t *testing.T) {
	s := newABC(t)
	assert.Equal(t, 0, s.ExtendToSimilar())
	assert.Empty(t, s.Highlighted())
}

func TestExtendToSimilarIsIdempotent(t *testing.T) {
	s := newABC(t)
	s.Toggle("A")

	assert.Equal(t, 1, s.ExtendToSimilar())
	assert.ElementsMatch(t, []string{"A", "B"}, highlightedIDs(s))

	assert.Equal(t, 0, s.ExtendToSimilar())
	assert.ElementsMatch(t, []string{"A", "B"}, highlightedIDs(s))
}

func TestExcludeThenExtendOtherLayer(t *testing.T) {
	s := newABC(t)
	s.Toggle("A")
	s.ExtendToSimilar()

	assert.Equal(t, 2, s.ExcludeSimilar())
	assert.True(t, s.IsRemoved("A"))
	assert.True(t, s.IsRemoved("B"))
	assert.Empty(t, s.Highlighted())

	// clicking an excluded element does nothing
	assert.False(t, s.Toggle("B"))

	s.Toggle("C")
	s.ExtendToSimilar()
	assert.Equal(t, []string{"C"}, highlightedIDs(s))
}

func TestExclusionIsMonotonic(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Load([]model.Element{
		door("A", "L1", 0),
		door("B", "L1", 200),
	}))
	s := NewSelection(store)

	s.Toggle("A")
	s.ExcludeSimilar()
	for i := 0; i < 3; i++ {
		s.ExtendToSimilar()
		s.Toggle("A")
		s.Toggle("B")
	}
	assert.Empty(t, s.Highlighted())
}

func TestKeyCachedAtToggle(t *testing.T) {
	s := newABC(t)
	s.Toggle("A")
	s.Toggle("A") // un-highlight keeps A as last activated

	key, ok := s.SimilarKey()
	require.True(t, ok)
	assert.Equal(t, model.SimilarityKey{Kind: model.KindDoor, Layer: "L1"}, key)
	assert.ElementsMatch(t, []string{"A", "B"}, s.Preview())
}

func TestIsolationIsVisualOnly(t *testing.T) {
	s := newABC(t)
	s.Toggle("A")
	s.SetIsolation(true)
	assert.True(t, s.Isolation())
	assert.Equal(t, []string{"A"}, highlightedIDs(s))
	s.SetIsolation(false)
	assert.Equal(t, []string{"A"}, highlightedIDs(s))
}

func TestResetLiftsExclusions(t *testing.T) {
	s := newABC(t)
	s.Toggle("A")
	s.ExcludeSimilar()
	s.SetIsolation(true)

	s.Reset()
	assert.False(t, s.IsRemoved("A"))
	assert.False(t, s.Isolation())
	_, ok := s.SimilarKey()
	assert.False(t, ok)
}

func TestClearKeepsExclusions(t *testing.T) {
	s := newABC(t)
	s.Toggle("C")
	s.Toggle("A")
	s.ExcludeSimilar()
	s.Clear()
	assert.Zero(t, s.Count())
	assert.True(t, s.IsRemoved("A"))
	assert.Len(t, s.HighlightedOfKind(model.KindDoor), 0)
}
