package calibration

import (
	"log/slog"

	"github.com/piwi3910/metre/internal/model"
)

// SelectionSource tells the machine what has been selected on the plan.
type SelectionSource interface {
	HighlightedOfKind(kind model.ElementKind) []model.Element
}

// AdvanceFunc is called after the sequence moved past kind. skipped is true
// when the step was skipped rather than completed.
type AdvanceFunc func(kind model.ElementKind, skipped bool)

// Machine holds the current Session and applies the pure transitions to it.
// It is owned by a single UI session and is not safe for concurrent use.
type Machine struct {
	session   Session
	selection SelectionSource
	log       *slog.Logger

	onChange  []func(Session)
	onAdvance []AdvanceFunc
}

// NewMachine creates an idle machine reading selection state from sel.
func NewMachine(sel SelectionSource, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{session: NewSession(), selection: sel, log: logger}
}

// Session returns the current snapshot.
func (m *Machine) Session() Session {
	return m.session
}

// OnChange registers a listener called after every effective transition.
func (m *Machine) OnChange(fn func(Session)) {
	m.onChange = append(m.onChange, fn)
}

// OnAdvance registers a listener called when a kind is completed or skipped,
// before the next kind's instructions are shown.
func (m *Machine) OnAdvance(fn AdvanceFunc) {
	m.onAdvance = append(m.onAdvance, fn)
}

func (m *Machine) hasSelection() bool {
	if m.session.CurrentType == "" || m.selection == nil {
		return false
	}
	return len(m.selection.HighlightedOfKind(m.session.CurrentType)) > 0 ||
		len(m.session.CurrentPoints()) > 0
}

func (m *Machine) apply(op string, next Session, ok bool) bool {
	if !ok {
		m.log.Debug("calibration transition ignored", slog.String("op", op), slog.String("step", string(m.session.Step)))
		return false
	}
	prev := m.session
	m.session = next
	m.log.Debug("calibration transition",
		slog.String("op", op),
		slog.String("from", string(prev.Step)),
		slog.String("to", string(next.Status())),
		slog.String("kind", string(next.CurrentType)),
	)
	if prev.CurrentType != "" && (prev.StepIndex != next.StepIndex || next.Step == StepIdle) {
		for _, fn := range m.onAdvance {
			fn(prev.CurrentType, op == "skip")
		}
	}
	for _, fn := range m.onChange {
		fn(m.session)
	}
	return true
}

// Start begins a new cycle.
func (m *Machine) Start() bool {
	next, ok := Start(m.session)
	return m.apply("start", next, ok)
}

// BeginStep is the wizard's primary action: it starts selecting, or
// advances when already selecting.
func (m *Machine) BeginStep() bool {
	next, ok := BeginStep(m.session, m.hasSelection())
	op := "begin"
	if m.session.Step == StepSelecting || m.session.Step == StepReview {
		op = "complete"
	}
	return m.apply(op, next, ok)
}

// AddPoint records a manual identification click.
func (m *Machine) AddPoint(x, y float64) bool {
	next, ok := AddPoint(m.session, x, y)
	return m.apply("point", next, ok)
}

// SetDimension attaches a real-world dimension to a captured point.
func (m *Machine) SetDimension(i int, d model.Dimensions) bool {
	next, ok := SetDimension(m.session, i, d)
	return m.apply("dimension", next, ok)
}

// Review shows the captured elements before advancing.
func (m *Machine) Review() bool {
	next, ok := Review(m.session)
	return m.apply("review", next, ok)
}

// CompleteStep advances when something is selected for the current kind.
func (m *Machine) CompleteStep() bool {
	next, ok := CompleteStep(m.session, m.hasSelection())
	return m.apply("complete", next, ok)
}

// SkipStep advances without selection.
func (m *Machine) SkipStep() bool {
	next, ok := SkipStep(m.session)
	return m.apply("skip", next, ok)
}

// CancelStep returns to the current kind's instructions.
func (m *Machine) CancelStep() bool {
	next, ok := CancelStep(m.session)
	return m.apply("cancel", next, ok)
}

// Reset abandons the cycle without calling advance listeners.
func (m *Machine) Reset() {
	m.session = Reset(m.session)
	for _, fn := range m.onChange {
		fn(m.session)
	}
}
