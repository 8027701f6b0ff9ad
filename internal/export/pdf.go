// Package export writes takeoff results to files: an Excel workbook of the
// work items and rollups, a PDF cost report and QR-coded surface labels.
package export

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/metre/internal/model"
	"github.com/piwi3910/metre/internal/render"
	"github.com/piwi3910/metre/internal/takeoff"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	rowHeight    = 6.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// report wraps the PDF with the cp1252 translator so French labels and the
// euro sign render with the core fonts.
type report struct {
	pdf      *fpdf.Fpdf
	tr       func(string) string
	currency string
}

// ExportPDF generates the cost report of a project: a plan overview page
// followed by the by-lot, by-location and by-surface views.
func ExportPDF(path string, p model.Project) error {
	if len(p.WorkItems) == 0 && len(p.Elements) == 0 {
		return fmt.Errorf("nothing to export: project has no plan and no work items")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	r := &report{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), currency: p.Settings.Currency}

	if len(p.Elements) > 0 {
		pdf.AddPage()
		r.planPage(p)
	}

	summary := takeoff.Summarize(p.WorkItems, p.Surfaces)
	pdf.AddPage()
	r.lotPage(p, summary)
	r.locationPages(summary.ByLocation)
	r.surfacePages(summary.BySurface)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func (r *report) money(v float64) string {
	return fmt.Sprintf("%.2f %s", v, r.currency)
}

func (r *report) text(x, y, w, h float64, s, align string) {
	r.pdf.SetXY(x, y)
	r.pdf.CellFormat(w, h, r.tr(s), "", 0, align, false, 0, "")
}

func (r *report) title(s string) {
	r.pdf.SetFont("Helvetica", "B", 14)
	r.pdf.SetTextColor(0, 0, 0)
	r.text(marginLeft, marginTop, contentWidth, headerHeight, s, "L")
	r.footer()
}

func (r *report) footer() {
	r.pdf.SetFont("Helvetica", "I", 8)
	r.pdf.SetTextColor(120, 120, 120)
	r.text(marginLeft, pageHeight-marginBottom, contentWidth, 4,
		fmt.Sprintf("Généré par Métré - page %d", r.pdf.PageNo()), "C")
	r.pdf.SetTextColor(0, 0, 0)
}

// planPage draws the plan with the element colours used on screen.
func (r *report) planPage(p model.Project) {
	pdf := r.pdf
	r.title(fmt.Sprintf("%s - %s", p.Name, p.PlanName))

	counts := make(map[model.ElementKind]int)
	for _, e := range p.Elements {
		if !e.Removed {
			counts[e.Kind]++
		}
	}
	pdf.SetFont("Helvetica", "", 10)
	r.text(marginLeft, marginTop+headerHeight, contentWidth, 5, fmt.Sprintf(
		"Portes: %d | Fenêtres: %d | Murs: %d | Pièces: %d | Total HT: %s",
		counts[model.KindDoor], counts[model.KindWindow], counts[model.KindWall], counts[model.KindRoom],
		r.money(takeoff.Total(p.WorkItems))), "L")

	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	bounds := render.Bounds(p.Elements)
	vp := render.Fit(bounds, contentWidth, drawHeight)
	offsetX := marginLeft + (contentWidth-bounds.Width*vp.Scale)/2
	offsetY := drawAreaTop

	scene := render.Build(p.Elements, nil, nil, render.Options{})
	for _, item := range scene.Items {
		x, y := vp.ToScreen(model.Point2D{X: item.Element.Geometry.X, Y: item.Element.Geometry.Y})
		x, y = x+offsetX, y+offsetY
		g := item.Element.Geometry

		fill := item.Style.Apply(item.Style.Fill)
		stroke := item.Style.Apply(item.Style.Stroke)
		pdf.SetAlpha(float64(fill.A)/255, "Normal")
		pdf.SetFillColor(int(fill.R), int(fill.G), int(fill.B))
		pdf.SetDrawColor(int(stroke.R), int(stroke.G), int(stroke.B))
		pdf.SetLineWidth(math.Max(0.1, float64(item.Style.StrokeWidth)*0.2))

		if item.Element.Kind.Linear() {
			ax, ay, bx, by := wallEnds(g)
			pdf.Line(x+(ax-g.X)*vp.Scale, y+(ay-g.Y)*vp.Scale, x+(bx-g.X)*vp.Scale, y+(by-g.Y)*vp.Scale)
			continue
		}
		pdf.Rect(x, y, g.Width*vp.Scale, g.Height*vp.Scale, "FD")
	}
	pdf.SetAlpha(1, "Normal")

	r.kindLegend(offsetY + bounds.Height*vp.Scale + 5)
}

// wallEnds returns the endpoints of the wall centre line inside its box.
func wallEnds(g model.Geometry) (ax, ay, bx, by float64) {
	if g.Width >= g.Height {
		return g.X, g.Y + g.Height/2, g.X + g.Width, g.Y + g.Height/2
	}
	return g.X + g.Width/2, g.Y, g.X + g.Width/2, g.Y + g.Height
}

func (r *report) kindLegend(y float64) {
	pdf := r.pdf
	pdf.SetFont("Helvetica", "", 8)
	x := marginLeft
	for _, k := range model.CalibrationSequence {
		c := render.KindColor(k)
		pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		pdf.Rect(x, y+0.5, 3, 3, "F")
		r.text(x+4, y, 30, 4, k.Label(), "L")
		x += 35
	}
}

// table draws a header row and returns the next y.
func (r *report) tableHeader(y float64, widths []float64, headers []string) float64 {
	pdf := r.pdf
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	x := marginLeft
	for i, h := range headers {
		pdf.SetXY(x, y)
		pdf.CellFormat(widths[i], rowHeight, r.tr(h), "1", 0, "C", true, 0, "")
		x += widths[i]
	}
	pdf.SetFont("Helvetica", "", 9)
	return y + rowHeight
}

func (r *report) tableRow(y float64, widths []float64, cells []string, shade bool, bold bool) float64 {
	pdf := r.pdf
	if shade {
		pdf.SetFillColor(245, 245, 245)
	} else {
		pdf.SetFillColor(255, 255, 255)
	}
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, 9)
	x := marginLeft
	for i, c := range cells {
		align := "L"
		if i == len(cells)-1 {
			align = "R"
		}
		pdf.SetXY(x, y)
		pdf.CellFormat(widths[i], rowHeight, r.tr(c), "1", 0, align, true, 0, "")
		x += widths[i]
	}
	return y + rowHeight
}

// nextRow starts a new page with the same title and header when the table
// would cross the bottom margin.
func (r *report) nextRow(y float64, title string, widths []float64, headers []string) float64 {
	if y+rowHeight <= pageHeight-marginBottom-6 {
		return y
	}
	r.pdf.AddPage()
	r.title(title + " (suite)")
	return r.tableHeader(drawAreaTop, widths, headers)
}

func (r *report) lotPage(p model.Project, s takeoff.Summary) {
	const title = "Récapitulatif par lot"
	r.title(title)
	r.pdf.SetFont("Helvetica", "", 10)
	r.text(marginLeft, marginTop+headerHeight, contentWidth, 5,
		fmt.Sprintf("%s | %d ouvrages | Total HT: %s", p.Name, s.ItemCount, r.money(s.GrandTotal)), "L")

	widths := []float64{95, 30, 20, 35, 30, 57}
	headers := []string{"Désignation", "Quantité", "Unité", "Prix unitaire", "Coef.", "Total"}
	y := r.tableHeader(drawAreaTop, widths, headers)

	for _, lot := range s.ByLot.Lots {
		y = r.nextRow(y, title, widths, headers)
		y = r.tableRow(y, widths, []string{lot.Name, "", "", "", "", r.money(lot.Subtotal)}, true, true)
		for _, sub := range lot.SubCategories {
			y = r.nextRow(y, title, widths, headers)
			y = r.tableRow(y, widths, []string{"  " + sub.Name, "", "", "", "", r.money(sub.Subtotal)}, false, true)
			for _, w := range sub.Items {
				y = r.nextRow(y, title, widths, headers)
				y = r.tableRow(y, widths, []string{
					"    " + w.Designation,
					fmt.Sprintf("%.2f", w.Quantity),
					w.Unit,
					r.money(w.UnitPrice),
					fmt.Sprintf("%.2f", w.EffectiveCoefficient()),
					r.money(takeoff.Cost(w)),
				}, false, false)
			}
		}
	}
	y = r.nextRow(y, title, widths, headers)
	r.tableRow(y, widths, []string{"Total HT", "", "", "", "", r.money(s.ByLot.Total)}, true, true)
}

func (r *report) locationPages(view takeoff.LocationView) {
	if len(view.Locations) == 0 {
		return
	}
	const title = "Récapitulatif par localisation"
	r.pdf.AddPage()
	r.title(title)

	widths := []float64{80, 120, 67}
	headers := []string{"Localisation", "Désignation", "Total"}
	y := r.tableHeader(drawAreaTop, widths, headers)

	for _, loc := range view.Locations {
		for _, w := range loc.Items {
			y = r.nextRow(y, title, widths, headers)
			y = r.tableRow(y, widths, []string{loc.Key, w.Designation, r.money(takeoff.Cost(w))}, false, false)
		}
		y = r.nextRow(y, title, widths, headers)
		y = r.tableRow(y, widths, []string{"Sous-total " + loc.Key, "", r.money(loc.Subtotal)}, true, true)
	}
	y = r.nextRow(y, title, widths, headers)
	r.tableRow(y, widths, []string{"Total HT", "", r.money(view.Total)}, true, true)
}

func (r *report) surfacePages(view takeoff.SurfaceView) {
	if len(view.Surfaces) == 0 {
		return
	}
	const title = "Récapitulatif par surface"
	r.pdf.AddPage()
	r.title(title)

	groups := append([]takeoff.SurfaceGroup(nil), view.Surfaces...)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Subtotal > groups[j].Subtotal })

	widths := []float64{80, 40, 80, 67}
	headers := []string{"Surface", "Superficie", "Désignation", "Total"}
	y := r.tableHeader(drawAreaTop, widths, headers)

	for _, g := range groups {
		area := fmt.Sprintf("%.2f m²", g.Surface.Superficie)
		if g.Surface.Overridden {
			area += " *"
		}
		y = r.nextRow(y, title, widths, headers)
		y = r.tableRow(y, widths, []string{g.Surface.Name, area, "", r.money(g.Subtotal)}, true, true)
		for _, w := range g.Items {
			y = r.nextRow(y, title, widths, headers)
			y = r.tableRow(y, widths, []string{"", "", w.Designation, r.money(takeoff.Cost(w))}, false, false)
		}
	}
	y = r.nextRow(y, title, widths, headers)
	r.tableRow(y, widths, []string{"Total HT (ouvrages liés)", "", "", r.money(view.Total)}, true, true)
}
