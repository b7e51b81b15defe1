// Package importer reads measurement rows from CSV and Excel files. Columns
// are matched to the sheet fields of a measurement kind by header name, with
// automatic delimiter detection and a positional fallback for files without
// a header row.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"

	"github.com/innovadoor/sitemeasure/internal/model"
	"github.com/innovadoor/sitemeasure/internal/units"
)

// Cell is one imported value.
type Cell struct {
	Field model.Field
	Value string
}

// Line is one imported data row, cells in field order.
type Line struct {
	Number int // 1-based line or row number in the source file
	Cells  []Cell
}

// Value returns the imported value of f.
func (l Line) Value(f model.Field) string {
	for _, c := range l.Cells {
		if c.Field == f {
			return c.Value
		}
	}
	return ""
}

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Kind     model.Kind
	Lines    []Line
	Errors   []string
	Warnings []string
}

// ColumnMapping maps column indices to the fields they fill. Ignored holds
// columns recognized as calculated fields, which are never imported.
type ColumnMapping struct {
	Inputs  map[int]model.Field
	Ignored map[int]model.Field
}

// extraAliases are accepted header spellings beyond each field's label and
// wire name. Keys are normalized with headerKey.
var extraAliases = map[model.Field][]string{
	model.FieldSrNo:              {"srno", "serial", "serialno", "serialnumber"},
	model.FieldBldg:              {"bldg", "building", "wing", "wings"},
	model.FieldFlatNo:            {"flat", "flatnumber", "unit"},
	model.FieldArea:              {"areacode", "room"},
	model.FieldWidth:             {"w", "widthmm", "rawwidth"},
	model.FieldHeight:            {"h", "heightmm", "rawheight"},
	model.FieldWall:              {"wallthickness"},
	model.FieldSubframeSide:      {"subframe"},
	model.FieldRemark:            {"remarks", "note", "notes", "comment", "comments"},
	model.FieldLocation:          {"location"},
	model.FieldActSqFt:           {"sqft", "actsqft", "squarefeet"},
	model.FieldLocationOfFitting: {"fittinglocation"},
}

// frameSizeAliases let frame files use plain width/height headers for the
// measured sizes.
var frameSizeAliases = map[model.Field][]string{
	model.FieldActWidth:  {"width", "w", "actualwidth"},
	model.FieldActHeight: {"height", "h", "actualheight"},
}

// headerKey folds a header cell to lowercase letters and digits, so
// "Flat No.", "flat_no" and "FLAT NO" compare equal.
func headerKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// aliasesFor returns every accepted header key for the fields of kind k.
func aliasesFor(k model.Kind) map[string]model.Field {
	out := make(map[string]model.Field)
	add := func(key string, f model.Field) {
		if key == "" {
			return
		}
		if _, taken := out[key]; !taken {
			out[key] = f
		}
	}
	fields := append(model.FieldsForKind(k), model.FieldCustomArea)
	// labels and wire names first so they win over looser aliases
	for _, f := range fields {
		add(headerKey(model.Label(k, f)), f)
		add(headerKey(string(f)), f)
	}
	for _, f := range fields {
		for _, a := range extraAliases[f] {
			add(a, f)
		}
		if k.Family() == model.FamilyFrame {
			for _, a := range frameSizeAliases[f] {
				add(a, f)
			}
		}
	}
	return out
}

// inputFields returns the fields of k that an import may fill, in column
// order.
func inputFields(k model.Kind) []model.Field {
	var out []model.Field
	for _, f := range model.FieldsForKind(k) {
		if s, ok := model.Spec(k, f); ok && s.Role == model.RoleInput {
			out = append(out, f)
		}
	}
	return out
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := newCSVReader(bytes.NewReader(data), delim)
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

		// consistency first, then column count
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

func newCSVReader(r io.Reader, delim rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

// DetectColumns examines a header row for kind k. It returns the mapping and
// true when at least one cell names a known field; otherwise the input
// fields of k are mapped by position and false is returned.
func DetectColumns(row []string, k model.Kind) (ColumnMapping, bool) {
	aliases := aliasesFor(k)
	mapping := ColumnMapping{
		Inputs:  make(map[int]model.Field),
		Ignored: make(map[int]model.Field),
	}
	seen := make(map[model.Field]bool)

	for i, cell := range row {
		f, ok := aliases[headerKey(cell)]
		if !ok || seen[f] {
			continue
		}
		seen[f] = true
		if s, _ := model.Spec(k, f); s.Role == model.RoleInput {
			mapping.Inputs[i] = f
		} else {
			mapping.Ignored[i] = f
		}
	}
	if len(seen) > 0 {
		return mapping, true
	}

	for i, f := range inputFields(k) {
		mapping.Inputs[i] = f
	}
	return mapping, false
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
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

// numericFields must hold a number when present.
var numericFields = map[model.Field]bool{
	model.FieldWidth:     true,
	model.FieldHeight:    true,
	model.FieldActWidth:  true,
	model.FieldActHeight: true,
}

// parseRow builds a Line from a data row. It returns the line, whether it
// holds any value, an error message and warnings.
func parseRow(row []string, mapping ColumnMapping, k model.Kind, rowLabel string, number int) (Line, bool, string, []string) {
	line := Line{Number: number}
	var warnings []string

	for _, f := range append(model.FieldsForKind(k), model.FieldCustomArea) {
		idx := -1
		for i, mf := range mapping.Inputs {
			if mf == f {
				idx = i
				break
			}
		}
		v := getCell(row, idx)
		if v == "" {
			continue
		}
		if numericFields[f] {
			if _, ok := units.ParseNumber(v); !ok {
				return Line{}, false, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, model.Label(k, f), v), nil
			}
		}
		line.Cells = append(line.Cells, Cell{Field: f, Value: v})
	}

	// a non-standard area becomes a custom area unless one is given
	if area := line.Value(model.FieldArea); area != "" && !model.IsAreaOption(area) {
		if line.Value(model.FieldCustomArea) == "" {
			for i := range line.Cells {
				if line.Cells[i].Field == model.FieldArea {
					line.Cells[i].Value = model.CustomAreaCode
				}
			}
			line.Cells = append(line.Cells, Cell{Field: model.FieldCustomArea, Value: area})
			warnings = append(warnings, fmt.Sprintf("%s: Area '%s' is not a standard code, imported as custom area", rowLabel, area))
		}
	}

	return line, len(line.Cells) > 0, "", warnings
}

// ImportFile imports rows for kind k from a CSV or Excel file, chosen by
// extension.
func ImportFile(path string, k model.Kind) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return ImportExcel(path, k)
	default:
		return ImportCSV(path, k)
	}
}

// ImportCSV imports rows from a CSV file, detecting the delimiter and
// mapping columns by header names.
func ImportCSV(path string, k model.Kind) ImportResult {
	result := ImportResult{Kind: k}

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
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := newCSVReader(bytes.NewReader(data), delimiter).ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	return importFromRows(records, k, "Line", warnings)
}

// ImportCSVFromReader imports rows from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune, k model.Kind) ImportResult {
	records, err := newCSVReader(reader, delimiter).ReadAll()
	if err != nil {
		return ImportResult{Kind: k, Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importFromRows(records, k, "Line", nil)
}

// ImportExcel imports rows from the first sheet of an Excel file.
func ImportExcel(path string, k model.Kind) ImportResult {
	result := ImportResult{Kind: k}

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
	return importFromRows(rows, k, "Row", nil)
}

// importFromRows is the shared import logic for CSV and Excel data.
func importFromRows(rows [][]string, k model.Kind, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Kind: k, Warnings: initialWarnings}
	if !k.Valid() {
		result.Errors = append(result.Errors, fmt.Sprintf("Unknown measurement type '%s'", k))
		return result
	}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0], k)
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
		for i := range rows[0] {
			if f, ok := mapping.Ignored[i]; ok {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Column '%s' (%s) is computed by the system and will be ignored", getCell(rows[0], i), model.Label(k, f)))
				continue
			}
			if _, ok := mapping.Inputs[i]; !ok && getCell(rows[0], i) != "" {
				result.Warnings = append(result.Warnings, fmt.Sprintf("Column '%s' not recognized, ignoring", getCell(rows[0], i)))
			}
		}
		if len(mapping.Inputs) == 0 {
			result.Errors = append(result.Errors, "No importable columns found in header")
			return result
		}
	} else {
		names := make([]string, 0, len(mapping.Inputs))
		for _, f := range inputFields(k) {
			names = append(names, model.Label(k, f))
		}
		result.Warnings = append(result.Warnings, "No header row, using column order: "+strings.Join(names, ", "))
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		lineNum := i + 1
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		line, ok, errMsg, warnings := parseRow(row, mapping, k, rowLabel, lineNum)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: No input values, skipping", rowLabel))
			continue
		}
		result.Warnings = append(result.Warnings, warnings...)
		result.Lines = append(result.Lines, line)
	}

	if len(result.Lines) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
	}
	return result
}
