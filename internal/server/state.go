package server

import (
	"github.com/piwi3910/metre/internal/calibration"
	"github.com/piwi3910/metre/internal/measure"
	"github.com/piwi3910/metre/internal/model"
	"github.com/piwi3910/metre/internal/workspace"
)

type calibrationState struct {
	calibration.Session
	Status   calibration.Step `json:"status"`
	Done     int              `json:"done"`
	Total    int              `json:"total"`
	Current  string           `json:"current_label,omitempty"`
	Selected int              `json:"selected"`
}

type toolState struct {
	Tool         measure.Tool          `json:"tool"`
	Mode         measure.CounterMode   `json:"counter_mode"`
	Shape        measure.Shape         `json:"shape"`
	Pending      measure.Tool          `json:"pending,omitempty"`
	ManualCount  int                   `json:"manual_count"`
	AutoCount    int                   `json:"auto_count"`
	Total        int                   `json:"total"`
	Captures     []measure.Capture     `json:"captures"`
	Measurements []measure.Measurement `json:"measurements"`
	Measured     float64               `json:"measured_total"`
	CanValidate  bool                  `json:"can_validate"`
}

type selectionState struct {
	Highlighted []string             `json:"highlighted"`
	Preview     []string             `json:"preview"`
	Count       int                  `json:"count"`
	Isolation   bool                 `json:"isolation"`
	SimilarKey  *model.SimilarityKey `json:"similar_key,omitempty"`
}

type state struct {
	Plan        string           `json:"plan"`
	Location    model.Location   `json:"location"`
	Calibration calibrationState `json:"calibration"`
	Tool        toolState        `json:"tool"`
	Selection   selectionState   `json:"selection"`
	CanUndo     bool             `json:"can_undo"`
	CanRedo     bool             `json:"can_redo"`
}

func calibrationOf(ws *workspace.Workspace) calibrationState {
	sess := ws.Calibration()
	done, total := sess.Progress()
	cs := calibrationState{Session: sess, Status: sess.Status(), Done: done, Total: total}
	if sess.CurrentType != "" {
		cs.Current = sess.CurrentType.Label()
		cs.Selected = len(ws.Selection().HighlightedOfKind(sess.CurrentType))
	}
	return cs
}

func snapshot(ws *workspace.Workspace) state {
	tools := ws.Tools()
	sel := ws.Selection()

	ts := toolState{
		Tool:         tools.Tool(),
		Mode:         tools.Mode(),
		Shape:        tools.Shape(),
		ManualCount:  tools.ManualCount(),
		AutoCount:    tools.AutoCount(),
		Total:        tools.Total(),
		Captures:     tools.Captures(),
		Measurements: tools.Measurements(),
		Measured:     tools.MeasuredTotal(),
		CanValidate:  tools.CanValidate(),
	}
	if p, ok := tools.Pending(); ok {
		ts.Pending = p
	}

	ss := selectionState{Preview: sel.Preview(), Count: sel.Count(), Isolation: sel.Isolation(), Highlighted: []string{}}
	for _, e := range sel.Highlighted() {
		ss.Highlighted = append(ss.Highlighted, e.ID)
	}
	if ss.Preview == nil {
		ss.Preview = []string{}
	}
	if k, ok := sel.SimilarKey(); ok {
		ss.SimilarKey = &k
	}

	return state{
		Plan:        ws.PlanName(),
		Location:    ws.Location(),
		Calibration: calibrationOf(ws),
		Tool:        ts,
		Selection:   ss,
		CanUndo:     ws.CanUndo(),
		CanRedo:     ws.CanRedo(),
	}
}
