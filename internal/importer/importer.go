// Package importer reads floor plans (DXF, SVG, JSON) into plan elements and
// price libraries (CSV, Excel) into catalogue items. Importers never fail
// hard: unusable rows or entities are skipped and reported.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/metre/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of a catalogue import.
type ImportResult struct {
	Items    []model.CatalogueItem
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Designation int
	Lot         int
	SubCategory int
	Unit        int
	UnitPrice   int
	Kind        int
}

// headerAliases maps canonical column names to their accepted aliases
// (lowercase, accents stripped).
var headerAliases = map[string][]string{
	"designation":  {"designation", "libelle", "description", "ouvrage", "article", "name", "item"},
	"lot":          {"lot", "corps d'etat", "trade", "category"},
	"sub_category": {"sous-categorie", "sous categorie", "sous-lot", "sub-category", "subcategory", "sub category"},
	"unit":         {"unite", "unit", "uom"},
	"unit_price":   {"prix unitaire", "prix", "pu", "p.u.", "unit price", "price", "prix ht"},
	"kind":         {"type", "kind", "element", "type d'element"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping (designation, lot, sub-category, unit, unit price, kind) and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Designation: -1, Lot: -1, SubCategory: -1, Unit: -1, UnitPrice: -1, Kind: -1}
	slots := map[string]*int{
		"designation":  &mapping.Designation,
		"lot":          &mapping.Lot,
		"sub_category": &mapping.SubCategory,
		"unit":         &mapping.Unit,
		"unit_price":   &mapping.UnitPrice,
		"kind":         &mapping.Kind,
	}

	isHeader := false
	for i, cell := range row {
		normalized := foldName(cell)
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if *slots[role] == -1 {
						*slots[role] = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Designation: 0, Lot: 1, SubCategory: 2, Unit: 3, UnitPrice: 4, Kind: 5}, false
	}
	return mapping, true
}

// ParsePrice reads a price written either way round ("1 234,50 €", "45.5").
func ParsePrice(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '€', '$':
			return -1
		}
		return r
	}, s)
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}
	return strconv.ParseFloat(cleaned, 64)
}

// normalizeUnit maps spelled-out units to the short forms used on work items.
func normalizeUnit(s string) (string, bool) {
	switch foldName(s) {
	case "u", "unite", "ens", "pce", "each", "ea":
		return model.UnitEach, true
	case "m2", "m²", "m^2", "sqm":
		return model.UnitSquareMeter, true
	case "m":
		return model.UnitMeter, true
	case "ml", "m.l.", "lm":
		return model.UnitLinearMeter, true
	case "":
		return "", false
	default:
		return strings.TrimSpace(s), true
	}
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a catalogue item from a row using the given column mapping.
// Returns the item, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.CatalogueItem, string, string) {
	designation := getCell(row, mapping.Designation)
	if designation == "" {
		return model.CatalogueItem{}, fmt.Sprintf("%s: Missing designation", rowLabel), ""
	}

	unit, ok := normalizeUnit(getCell(row, mapping.Unit))
	if !ok {
		return model.CatalogueItem{}, fmt.Sprintf("%s: Missing unit", rowLabel), ""
	}

	priceStr := getCell(row, mapping.UnitPrice)
	if priceStr == "" {
		return model.CatalogueItem{}, fmt.Sprintf("%s: Missing unit price", rowLabel), ""
	}
	price, err := ParsePrice(priceStr)
	if err != nil {
		return model.CatalogueItem{}, fmt.Sprintf("%s: Invalid unit price '%s'", rowLabel, priceStr), ""
	}
	if price < 0 {
		return model.CatalogueItem{}, fmt.Sprintf("%s: Unit price must not be negative", rowLabel), ""
	}

	item := model.NewCatalogueItem(designation, getCell(row, mapping.Lot), getCell(row, mapping.SubCategory), unit, price)

	var warning string
	if kindStr := getCell(row, mapping.Kind); kindStr != "" {
		if kind, ok := InferKind(kindStr); ok {
			item.Kind = kind
		} else {
			warning = fmt.Sprintf("%s: Unknown element type '%s', ignored", rowLabel, kindStr)
		}
	}
	return item, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports catalogue items from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports catalogue items from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importFromRows(records, "Line", nil)
}

// ImportExcel imports catalogue items from the first sheet of an Excel workbook.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		if mapping.Designation == -1 {
			missing = append(missing, "Designation")
		}
		if mapping.Unit == -1 {
			missing = append(missing, "Unit")
		}
		if mapping.UnitPrice == -1 {
			missing = append(missing, "Unit price")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) > mapping.UnitPrice {
		if _, err := ParsePrice(getCell(rows[0], mapping.UnitPrice)); err != nil {
			// Unrecognised header: skip it but keep the positional mapping
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	seen := make(map[string]bool)
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		item, errMsg, warning := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		key := strings.ToLower(item.Designation)
		if seen[key] {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: Duplicate designation '%s'", rowLabel, item.Designation))
		}
		seen[key] = true
		result.Items = append(result.Items, item)
	}

	if len(result.Items) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
	}
	return result
}
