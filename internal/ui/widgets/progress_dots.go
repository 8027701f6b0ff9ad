package widgets

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const (
	dotSize = 12
	dotGap  = 8
)

var (
	dotDone    = color.NRGBA{R: 76, G: 175, B: 80, A: 255}
	dotCurrent = color.NRGBA{R: 33, G: 150, B: 243, A: 255}
	dotPending = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
)

// ProgressDots shows calibration progress as one dot per element kind.
// Dots before Done are filled green, the current one is blue.
type ProgressDots struct {
	widget.BaseWidget
	Done    int
	Total   int
	Current bool // highlight the dot at index Done
}

func NewProgressDots(total int) *ProgressDots {
	d := &ProgressDots{Total: total}
	d.ExtendBaseWidget(d)
	return d
}

// SetProgress updates the dots.
func (d *ProgressDots) SetProgress(done, total int, current bool) {
	d.Done, d.Total, d.Current = done, total, current
	d.Refresh()
}

func (d *ProgressDots) CreateRenderer() fyne.WidgetRenderer {
	r := &progressDotsRenderer{d: d}
	r.rebuild()
	return r
}

type progressDotsRenderer struct {
	d       *ProgressDots
	objects []fyne.CanvasObject
}

// dotColor returns the fill of dot i.
func (d *ProgressDots) dotColor(i int) color.NRGBA {
	switch {
	case i < d.Done:
		return dotDone
	case i == d.Done && d.Current:
		return dotCurrent
	default:
		return dotPending
	}
}

func (r *progressDotsRenderer) rebuild() {
	r.objects = nil
	for i := 0; i < r.d.Total; i++ {
		c := canvas.NewCircle(r.d.dotColor(i))
		x := float32(i * (dotSize + dotGap))
		c.Position1 = fyne.NewPos(x, 0)
		c.Position2 = fyne.NewPos(x+dotSize, dotSize)
		r.objects = append(r.objects, c)
	}
}

func (r *progressDotsRenderer) Layout(size fyne.Size)        {}
func (r *progressDotsRenderer) Refresh()                     { r.rebuild() }
func (r *progressDotsRenderer) Destroy()                     {}
func (r *progressDotsRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *progressDotsRenderer) MinSize() fyne.Size {
	if r.d.Total == 0 {
		return fyne.NewSize(0, dotSize)
	}
	return fyne.NewSize(float32(r.d.Total*dotSize+(r.d.Total-1)*dotGap), dotSize)
}
