package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/piwi3910/metre/internal/model"
	"github.com/piwi3910/metre/internal/takeoff"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the takeoff workbook.
const (
	SheetItems     = "Ouvrages"
	SheetByLot     = "Par lot"
	SheetLocations = "Par localisation"
	SheetSurfaces  = "Par surface"
)

var rowHeaders = []string{
	"Désignation", "Lot", "Sous-catégorie", "Localisation",
	"Quantité", "Unité", "Prix unitaire", "Coefficient", "Total",
}

// ExportExcel writes the takeoff workbook to path.
func ExportExcel(path string, items []model.WorkItem, surfaces []model.Surface) error {
	f, err := buildWorkbook(items, surfaces)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// WriteExcel streams the takeoff workbook to w.
func WriteExcel(w io.Writer, items []model.WorkItem, surfaces []model.Surface) error {
	f, err := buildWorkbook(items, surfaces)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// buildWorkbook lays out the flat item rows on the first sheet and one sheet
// per rollup view.
func buildWorkbook(items []model.WorkItem, surfaces []model.Surface) (*excelize.File, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no work items to export")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetItems); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	for _, name := range []string{SheetByLot, SheetLocations, SheetSurfaces} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to add sheet %q: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	w := sheetWriter{f: f, bold: bold}
	w.itemsSheet(takeoff.Rows(items))
	summary := takeoff.Summarize(items, surfaces)
	w.lotSheet(summary.ByLot)
	w.locationSheet(summary.ByLocation)
	w.surfaceSheet(summary.BySurface)
	if w.err != nil {
		f.Close()
		return nil, w.err
	}
	return f, nil
}

// sheetWriter keeps the first cell error so the layout code reads linearly.
type sheetWriter struct {
	f    *excelize.File
	bold int
	err  error
}

func (w *sheetWriter) set(sheet string, col, row int, value any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellValue(sheet, cell, value); err != nil {
		w.err = fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
	}
}

func (w *sheetWriter) boldRow(sheet string, row, lastCol int) {
	if w.err != nil {
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(lastCol, row)
	if err := w.f.SetCellStyle(sheet, first, last, w.bold); err != nil {
		w.err = fmt.Errorf("failed to style %s: %w", sheet, err)
	}
}

func (w *sheetWriter) widths(sheet string, first string, width float64) {
	if w.err != nil {
		return
	}
	if err := w.f.SetColWidth(sheet, first, first, width); err != nil {
		w.err = err
	}
}

func (w *sheetWriter) itemsSheet(rows []takeoff.Row) {
	for i, h := range rowHeaders {
		w.set(SheetItems, i+1, 1, h)
	}
	w.boldRow(SheetItems, 1, len(rowHeaders))
	w.widths(SheetItems, "A", 40)

	var total float64
	for i, row := range rows {
		r := i + 2
		w.set(SheetItems, 1, r, row.Designation)
		w.set(SheetItems, 2, r, row.Lot)
		w.set(SheetItems, 3, r, row.SubCategory)
		w.set(SheetItems, 4, r, row.Location)
		w.set(SheetItems, 5, r, row.Quantity)
		w.set(SheetItems, 6, r, row.Unit)
		w.set(SheetItems, 7, r, row.UnitPrice)
		w.set(SheetItems, 8, r, row.Coefficient)
		w.set(SheetItems, 9, r, row.Total)
		total += row.Total
	}

	r := len(rows) + 2
	w.set(SheetItems, 8, r, "Total")
	w.set(SheetItems, 9, r, total)
	w.boldRow(SheetItems, r, 9)
}

func (w *sheetWriter) lotSheet(view takeoff.LotView) {
	for i, h := range []string{"Lot", "Sous-catégorie", "Désignation", "Total"} {
		w.set(SheetByLot, i+1, 1, h)
	}
	w.boldRow(SheetByLot, 1, 4)
	w.widths(SheetByLot, "C", 40)

	r := 2
	for _, lot := range view.Lots {
		for _, sub := range lot.SubCategories {
			for _, item := range sub.Items {
				w.set(SheetByLot, 1, r, lot.Name)
				w.set(SheetByLot, 2, r, sub.Name)
				w.set(SheetByLot, 3, r, item.Designation)
				w.set(SheetByLot, 4, r, takeoff.Cost(item))
				r++
			}
		}
		w.set(SheetByLot, 1, r, "Sous-total "+lot.Name)
		w.set(SheetByLot, 4, r, lot.Subtotal)
		w.boldRow(SheetByLot, r, 4)
		r++
	}
	w.set(SheetByLot, 1, r, "Total")
	w.set(SheetByLot, 4, r, view.Total)
	w.boldRow(SheetByLot, r, 4)
}

func (w *sheetWriter) locationSheet(view takeoff.LocationView) {
	for i, h := range []string{"Localisation", "Désignation", "Total"} {
		w.set(SheetLocations, i+1, 1, h)
	}
	w.boldRow(SheetLocations, 1, 3)
	w.widths(SheetLocations, "B", 40)

	r := 2
	for _, loc := range view.Locations {
		for _, item := range loc.Items {
			w.set(SheetLocations, 1, r, loc.Key)
			w.set(SheetLocations, 2, r, item.Designation)
			w.set(SheetLocations, 3, r, takeoff.Cost(item))
			r++
		}
		w.set(SheetLocations, 1, r, "Sous-total "+loc.Key)
		w.set(SheetLocations, 3, r, loc.Subtotal)
		w.boldRow(SheetLocations, r, 3)
		r++
	}
	w.set(SheetLocations, 1, r, "Total")
	w.set(SheetLocations, 3, r, view.Total)
	w.boldRow(SheetLocations, r, 3)
}

func (w *sheetWriter) surfaceSheet(view takeoff.SurfaceView) {
	for i, h := range []string{"Surface", "Superficie (m²)", "Désignation", "Total"} {
		w.set(SheetSurfaces, i+1, 1, h)
	}
	w.boldRow(SheetSurfaces, 1, 4)
	w.widths(SheetSurfaces, "C", 40)

	r := 2
	for _, g := range view.Surfaces {
		w.set(SheetSurfaces, 1, r, g.Surface.Name)
		w.set(SheetSurfaces, 2, r, g.Surface.Superficie)
		w.set(SheetSurfaces, 4, r, g.Subtotal)
		w.boldRow(SheetSurfaces, r, 4)
		r++
		for _, item := range g.Items {
			w.set(SheetSurfaces, 3, r, item.Designation)
			w.set(SheetSurfaces, 4, r, takeoff.Cost(item))
			r++
		}
	}
	w.set(SheetSurfaces, 1, r, "Total")
	w.set(SheetSurfaces, 4, r, view.Total)
	w.boldRow(SheetSurfaces, r, 4)
}
