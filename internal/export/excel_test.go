package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/piwi3910/metre/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportExcel_Sheets(t *testing.T) {
	p := buildTestProject()
	path := filepath.Join(t.TempDir(), "export", "metre.xlsx")

	require.NoError(t, ExportExcel(path, p.WorkItems, p.Surfaces))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetItems, SheetByLot, SheetLocations, SheetSurfaces}, f.GetSheetList())

	rows, err := f.GetRows(SheetItems)
	require.NoError(t, err)
	require.Len(t, rows, 1+len(p.WorkItems)+1, "header, items, total")
	assert.Equal(t, "Désignation", rows[0][0])
	assert.Equal(t, "Porte intérieure", rows[1][0])
	assert.Equal(t, "Portes", rows[1][2])
	assert.Equal(t, "RDC - Séjour", rows[1][3])
	assert.Equal(t, "unclassified", rows[2][2])
	assert.Equal(t, "Total", rows[len(rows)-1][7])

	total, err := f.GetCellValue(SheetItems, "I5")
	require.NoError(t, err)
	assert.Equal(t, "3225", total, "555 + 1950 + 720")
}

func TestExportExcel_Rollups(t *testing.T) {
	p := buildTestProject()
	path := filepath.Join(t.TempDir(), "metre.xlsx")
	require.NoError(t, ExportExcel(path, p.WorkItems, p.Surfaces))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	lots, err := f.GetRows(SheetByLot)
	require.NoError(t, err)
	// header + (item + subtotal) per lot + total
	assert.Len(t, lots, 1+2*3+1)
	assert.Equal(t, "Sous-total Menuiseries intérieures", lots[2][0])

	locs, err := f.GetRows(SheetLocations)
	require.NoError(t, err)
	assert.Equal(t, "RDC - Séjour", locs[1][0])
	assert.Equal(t, "Sous-total RDC - Séjour", locs[3][0])

	surfaces, err := f.GetRows(SheetSurfaces)
	require.NoError(t, err)
	assert.Equal(t, "Séjour", surfaces[1][0])
	assert.Equal(t, "Carrelage grès cérame", surfaces[2][2])
}

func TestWriteExcel(t *testing.T) {
	p := buildTestProject()
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, p.WorkItems, p.Surfaces))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 4)
}

func TestExportExcel_NoItems(t *testing.T) {
	err := ExportExcel(filepath.Join(t.TempDir(), "x.xlsx"), nil, []model.Surface{})
	assert.Error(t, err)
}
