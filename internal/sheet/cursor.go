package sheet

import "github.com/innovadoor/sitemeasure/internal/model"

// Cursor addresses one cell.
type Cursor struct {
	Row   int
	Field model.Field
}

// Advance returns the cell after (i, field) for Enter-to-advance: the next
// editable field of the same row, or the first editable field of the next
// row. The bool is true when that next row does not exist yet and must be
// appended first.
func (s *Sheet) Advance(i int, field model.Field) (Cursor, bool) {
	if next, ok := model.NextEditableField(s.kind, field); ok && !model.IsLastEditableField(s.kind, field) {
		return Cursor{Row: i, Field: next}, false
	}
	first, _ := model.FirstEditableField(s.kind)
	return Cursor{Row: i + 1, Field: first}, i+1 >= len(s.rows)
}
