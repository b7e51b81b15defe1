package importer

import (
	"fmt"

	"github.com/innovadoor/sitemeasure/internal/model"
	"github.com/innovadoor/sitemeasure/internal/sheet"
)

// Editor is the part of a session an import writes through.
type Editor interface {
	Rows() []model.Row
	AddRow() int
	EditCell(i int, field model.Field, value string) (sheet.Advisory, error)
}

// Apply enters lines into e cell by cell, so every derived field is
// computed exactly as if typed. The first line fills the sheet's last row
// when that row is empty; every other line gets a new row. It returns the
// number of rows written.
func Apply(e Editor, lines []Line) (int, error) {
	rows := e.Rows()
	reuse := len(rows) > 0 && rows[len(rows)-1].IsEmpty()

	for n, line := range lines {
		i := len(rows) - 1
		if n > 0 || !reuse {
			i = e.AddRow()
		}
		for _, c := range line.Cells {
			if _, err := e.EditCell(i, c.Field, c.Value); err != nil {
				return n, fmt.Errorf("line %d, %s: %w", line.Number, c.Field, err)
			}
		}
	}
	return len(lines), nil
}
