package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/metre/internal/model"
	"github.com/piwi3910/metre/internal/takeoff"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each surface label's QR code.
type LabelInfo struct {
	SurfaceID  string   `json:"id"`
	Name       string   `json:"name"`
	Superficie float64  `json:"superficie_m2"`
	Overridden bool     `json:"overridden,omitempty"`
	Ouvrages   []string `json:"ouvrages"`
	Total      float64  `json:"total"`
}

// Label layout constants for Avery L7163-compatible labels (2 columns, 7 rows on A4).
const (
	labelPageWidth  = 210.0
	labelPageHeight = 297.0
	labelMarginTop  = 15.1
	labelMarginLeft = 4.7
	labelWidth      = 99.1
	labelHeight     = 38.1
	labelCols       = 2
	labelRows       = 7
	labelsPerPage   = labelCols * labelRows
	qrSize          = 32.0
	labelPadding    = 3.0
	maxLabelLines   = 4
)

// CollectLabelInfos builds one label per surface with the designations of
// its linked work items. Unknown item ids are skipped.
func CollectLabelInfos(surfaces []model.Surface, items []model.WorkItem) []LabelInfo {
	view := takeoff.BySurface(surfaces, items)
	labels := make([]LabelInfo, 0, len(view.Surfaces))
	for _, g := range view.Surfaces {
		info := LabelInfo{
			SurfaceID:  g.Surface.ID,
			Name:       g.Surface.Name,
			Superficie: g.Surface.Superficie,
			Overridden: g.Surface.Overridden,
			Ouvrages:   []string{},
			Total:      g.Subtotal,
		}
		for _, w := range g.Items {
			info.Ouvrages = append(info.Ouvrages, w.Designation)
		}
		labels = append(labels, info)
	}
	return labels
}

// ExportLabels generates a PDF sheet of QR-coded labels, one per surface,
// to stick on site. The QR code carries the label data as JSON.
func ExportLabels(path string, surfaces []model.Surface, items []model.WorkItem, currency string) error {
	labels := CollectLabelInfos(surfaces, items)
	if len(labels) == 0 {
		return fmt.Errorf("no surfaces to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		x := labelMarginLeft + float64(posOnPage%labelCols)*labelWidth
		y := labelMarginTop + float64(posOnPage/labelCols)*labelHeight

		if err := renderLabel(pdf, tr, x, y, label, currency); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.Name, err)
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write labels: %w", err)
	}
	return nil
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, tr func(string) string, x, y float64, info LabelInfo, currency string) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := "qr_" + info.SurfaceID
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, x+labelWidth-qrSize-labelPadding, y+(labelHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 5, tr(truncate(pdf, tr, info.Name, textW)), "", 1, "L", false, 0, "")

	area := fmt.Sprintf("%.2f m²", info.Superficie)
	if info.Overridden {
		area += " (saisie)"
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(textX, y+labelPadding+6)
	pdf.CellFormat(textW, 4, tr(area), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(80, 80, 80)
	for i, o := range info.Ouvrages {
		line := "- " + o
		if i == maxLabelLines-1 && len(info.Ouvrages) > maxLabelLines {
			line = fmt.Sprintf("+ %d autres", len(info.Ouvrages)-i)
		}
		pdf.SetXY(textX, y+labelPadding+11+float64(i)*3.5)
		pdf.CellFormat(textW, 3.5, tr(truncate(pdf, tr, line, textW)), "", 1, "L", false, 0, "")
		if i == maxLabelLines-1 {
			break
		}
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelHeight-labelPadding-4)
	pdf.CellFormat(textW, 4, tr(fmt.Sprintf("%.2f %s", info.Total, currency)), "", 0, "L", false, 0, "")

	return nil
}

// truncate shortens s with an ellipsis until it fits width.
func truncate(pdf *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	if pdf.GetStringWidth(tr(s)) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(tr(string(runes)+"...")) > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
