// Package calibration implements the guided wizard that walks the user
// through identifying each element kind on a plan.
//
// Transitions are pure functions over a Session value: each returns the
// next snapshot and whether anything changed. Invalid transitions return
// the input unchanged.
package calibration

import "github.com/piwi3910/metre/internal/model"

// Step is the wizard state.
type Step string

const (
	StepIdle         Step = "idle"
	StepInstructions Step = "instructions"
	StepSelecting    Step = "selecting"
	StepReview       Step = "review"
	StepComplete     Step = "complete"
)

// Session is a snapshot of the calibration wizard.
//
// CurrentType is always model.CalibrationSequence[StepIndex] while a cycle is
// running and empty when Step is idle. Complete records that the last cycle
// ran through every kind.
type Session struct {
	Step        Step                     `json:"step"`
	StepIndex   int                      `json:"step_index"`
	CurrentType model.ElementKind        `json:"current_type,omitempty"`
	Points      []model.CalibrationPoint `json:"points"`
	Complete    bool                     `json:"complete"`
}

// NewSession returns an idle session.
func NewSession() Session {
	return Session{Step: StepIdle, Points: []model.CalibrationPoint{}}
}

// Status is the step reported to the wizard UI. A finished cycle is
// reported as complete even though the machine itself is back to idle.
func (s Session) Status() Step {
	if s.Step == StepIdle && s.Complete {
		return StepComplete
	}
	return s.Step
}

// Progress returns the number of kinds already passed and the sequence length,
// for the 4-dot indicator.
func (s Session) Progress() (done, total int) {
	total = len(model.CalibrationSequence)
	if s.Step == StepIdle {
		if s.Complete {
			return total, total
		}
		return 0, total
	}
	return s.StepIndex, total
}

// Active reports whether point and element capture is enabled on the plan.
func (s Session) Active() bool {
	return s.Step == StepSelecting
}

// CurrentPoints returns the captured points of the current kind.
func (s Session) CurrentPoints() []model.CalibrationPoint {
	var out []model.CalibrationPoint
	if s.CurrentType == "" {
		return out
	}
	for _, p := range s.Points {
		if p.Kind == s.CurrentType {
			out = append(out, p)
		}
	}
	return out
}

// Start begins a cycle at the first kind. Only valid from idle.
func Start(s Session) (Session, bool) {
	if s.Step != StepIdle {
		return s, false
	}
	return Session{
		Step:        StepInstructions,
		StepIndex:   0,
		CurrentType: model.CalibrationSequence[0],
		Points:      []model.CalibrationPoint{},
	}, true
}

// BeginStep moves instructions to selecting. From selecting or review the
// same action advances the sequence, which lets a single primary button
// both start and finish a step. hasSelection is forwarded to CompleteStep.
func BeginStep(s Session, hasSelection bool) (Session, bool) {
	switch s.Step {
	case StepInstructions:
		s.Step = StepSelecting
		return s, true
	case StepSelecting, StepReview:
		return CompleteStep(s, hasSelection)
	}
	return s, false
}

// AddPoint records a manual identification click for the current kind.
func AddPoint(s Session, x, y float64) (Session, bool) {
	if s.Step != StepSelecting || s.CurrentType == "" {
		return s, false
	}
	pts := make([]model.CalibrationPoint, len(s.Points), len(s.Points)+1)
	copy(pts, s.Points)
	s.Points = append(pts, model.CalibrationPoint{Kind: s.CurrentType, X: x, Y: y})
	return s, true
}

// SetDimension attaches a real-world dimension to the i-th point of the
// current kind. A point's dimension can only be set once.
func SetDimension(s Session, i int, d model.Dimensions) (Session, bool) {
	if s.Step != StepSelecting && s.Step != StepReview {
		return s, false
	}
	n := -1
	for j, p := range s.Points {
		if p.Kind != s.CurrentType {
			continue
		}
		n++
		if n != i {
			continue
		}
		if p.Dimensions != nil {
			return s, false
		}
		pts := make([]model.CalibrationPoint, len(s.Points))
		copy(pts, s.Points)
		dim := d
		pts[j].Dimensions = &dim
		s.Points = pts
		return s, true
	}
	return s, false
}

// Review moves selecting to review, where the user checks the captured
// elements before advancing.
func Review(s Session) (Session, bool) {
	if s.Step != StepSelecting {
		return s, false
	}
	s.Step = StepReview
	return s, true
}

// CompleteStep advances to the next kind. It requires something to have
// been selected for the current kind.
func CompleteStep(s Session, hasSelection bool) (Session, bool) {
	if !hasSelection {
		return s, false
	}
	return advance(s)
}

// SkipStep advances to the next kind without any selection.
func SkipStep(s Session) (Session, bool) {
	return advance(s)
}

// CancelStep returns to the instructions of the current kind. Captured
// points are kept.
func CancelStep(s Session) (Session, bool) {
	if s.Step != StepSelecting && s.Step != StepReview {
		return s, false
	}
	s.Step = StepInstructions
	return s, true
}

// Reset abandons any cycle.
func Reset(Session) Session {
	return NewSession()
}

func advance(s Session) (Session, bool) {
	switch s.Step {
	case StepInstructions, StepSelecting, StepReview:
	default:
		return s, false
	}
	if s.StepIndex+1 < len(model.CalibrationSequence) {
		s.StepIndex++
		s.CurrentType = model.CalibrationSequence[s.StepIndex]
		s.Step = StepInstructions
		return s, true
	}
	s.Step = StepIdle
	s.CurrentType = ""
	s.Complete = true
	return s, true
}
