package workspace

import "github.com/piwi3910/metre/internal/model"

const defaultMaxDepth = 50

// Snapshot captures the committed takeoff at a point in time.
type Snapshot struct {
	WorkItems []model.WorkItem
	Surfaces  []model.Surface
	Label     string // e.g. "Valider compteur"
}

// History manages undo/redo stacks of takeoff snapshots.
type History struct {
	undoStack []Snapshot
	redoStack []Snapshot
	maxDepth  int
}

// NewHistory creates a History with the default max depth of 50.
func NewHistory() *History {
	return &History{maxDepth: defaultMaxDepth}
}

// Push saves a snapshot taken before a modification and clears the redo stack.
func (h *History) Push(s Snapshot) {
	h.undoStack = append(h.undoStack, s)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[len(h.undoStack)-h.maxDepth:]
	}
	h.redoStack = nil
}

// Undo pops the most recent snapshot and stores current for Redo.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	if len(h.undoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, current)
	return last, true
}

// Redo pops the most recently undone snapshot and stores current for Undo.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if len(h.redoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, current)
	return last, true
}

// CanUndo returns true if there is at least one snapshot to undo.
func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }

// CanRedo returns true if there is at least one snapshot to redo.
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// UndoLabel returns the label of the snapshot Undo would restore.
func (h *History) UndoLabel() string {
	if len(h.undoStack) == 0 {
		return ""
	}
	return h.undoStack[len(h.undoStack)-1].Label
}

// Clear removes all undo and redo history.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}

func copyItems(items []model.WorkItem) []model.WorkItem {
	if items == nil {
		return nil
	}
	cp := make([]model.WorkItem, len(items))
	for i, w := range items {
		cp[i] = w
		if w.Coefficient != nil {
			c := *w.Coefficient
			cp[i].Coefficient = &c
		}
	}
	return cp
}

func copySurfaces(surfaces []model.Surface) []model.Surface {
	if surfaces == nil {
		return nil
	}
	cp := make([]model.Surface, len(surfaces))
	for i, s := range surfaces {
		cp[i] = s
		cp[i].OuvragesIDs = append([]string(nil), s.OuvragesIDs...)
	}
	return cp
}

// MakeSnapshot deep-copies the takeoff state with a label.
func MakeSnapshot(items []model.WorkItem, surfaces []model.Surface, label string) Snapshot {
	return Snapshot{
		WorkItems: copyItems(items),
		Surfaces:  copySurfaces(surfaces),
		Label:     label,
	}
}
