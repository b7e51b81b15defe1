package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/innovadoor/sitemeasure/internal/model"
	"github.com/innovadoor/sitemeasure/internal/units"
)

// numericFields are written as numbers so spreadsheet formulas work on them.
// Identifiers such as flat numbers stay text.
var numericFields = map[model.Field]bool{
	model.FieldWidth:       true,
	model.FieldHeight:      true,
	model.FieldMinusWidth:  true,
	model.FieldMinusHeight: true,
	model.FieldActWidth:    true,
	model.FieldActHeight:   true,
	model.FieldROWidth:     true,
	model.FieldROHeight:    true,
	model.FieldActSqFt:     true,
}

// ExportExcel writes the measurement to a single-sheet workbook whose first
// row holds the column labels of its kind.
func ExportExcel(path string, m model.Measurement) error {
	rows, err := filledRows(m)
	if err != nil {
		return err
	}
	fields := model.FieldsForKind(m.Type)

	f := excelize.NewFile()
	defer f.Close()

	sheet := m.Type.String()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for c, field := range fields {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, model.Label(m.Type, field)); err != nil {
			return fmt.Errorf("write header %s: %w", cell, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(fields), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for r, row := range rows {
		for c, field := range fields {
			v := cellText(row, field)
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			var value interface{} = v
			if numericFields[field] {
				if d, ok := units.ParseNumber(v); ok {
					value = d.InexactFloat64()
				}
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(fields))
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return fmt.Errorf("size columns: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	return f.SaveAs(path)
}
