// Package measure implements the measurement tool bar: the active tool,
// drag-defined surface and length measurements, and the dual-mode counter.
package measure

// Tool is the active tool of the tool bar.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolSurface   Tool = "surface"
	ToolLength    Tool = "length"
	ToolCounter   Tool = "counter"
	ToolDetection Tool = "detection"
	ToolCompare   Tool = "compare"
	ToolLayer     Tool = "layer"
)

// Tools lists the tool bar in display order.
var Tools = []Tool{ToolSelect, ToolSurface, ToolLength, ToolCounter, ToolDetection, ToolCompare, ToolLayer}

// Valid reports whether t is a known tool.
func (t Tool) Valid() bool {
	for _, x := range Tools {
		if x == t {
			return true
		}
	}
	return false
}

// IsCalculation reports whether the tool shows the validate/cancel footer.
func (t Tool) IsCalculation() bool {
	switch t {
	case ToolSurface, ToolLength, ToolCounter, ToolDetection:
		return true
	}
	return false
}

// Label returns the French tool bar caption.
func (t Tool) Label() string {
	switch t {
	case ToolSelect:
		return "Sélection"
	case ToolSurface:
		return "Surface"
	case ToolLength:
		return "Longueur"
	case ToolCounter:
		return "Compteur"
	case ToolDetection:
		return "Détection"
	case ToolCompare:
		return "Comparer"
	case ToolLayer:
		return "Calques"
	}
	return string(t)
}

// CounterMode is the capture sub-mode of the counter tool.
type CounterMode string

const (
	CounterAutomatic CounterMode = "automatic"
	CounterManual    CounterMode = "manual"
)

// Shape is the figure drawn by the surface tool.
type Shape string

const (
	ShapeRectangle Shape = "rectangle"
	ShapeCircle    Shape = "circle"
)

// Decision is the outcome of an action that may need user confirmation.
type Decision int

const (
	// Ignored means the action did not apply in the current state.
	Ignored Decision = iota
	// Applied means the action took effect.
	Applied
	// NeedsConfirmation means counted data would be lost; call Confirm or Decline.
	NeedsConfirmation
)

func (d Decision) String() string {
	switch d {
	case Applied:
		return "applied"
	case NeedsConfirmation:
		return "needs_confirmation"
	default:
		return "ignored"
	}
}
