// Package sheet owns the ordered rows of one measurement sheet and applies
// row-level operations to them: add, remove, edit, serial merge and
// area recalculation.
package sheet

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/innovadoor/sitemeasure/internal/engine"
	"github.com/innovadoor/sitemeasure/internal/model"
)

var (
	// ErrLastRow is returned when removing the only remaining row.
	ErrLastRow = errors.New("sheet: cannot remove the last row")
	// ErrRowIndex is returned for an index outside the sheet.
	ErrRowIndex = errors.New("sheet: row index out of range")
	// ErrNotEditable is returned for edits to system-computed or foreign fields.
	ErrNotEditable = errors.New("sheet: field is not editable")
)

// Advisory is an informational result of an edit. It never blocks the edit.
type Advisory int

const (
	AdvisoryNone Advisory = iota
	// AdvisoryAreaNotSet: a width or height was typed on a shutter row with
	// no area, so no deductions can be applied yet.
	AdvisoryAreaNotSet
)

func (a Advisory) String() string {
	if a == AdvisoryAreaNotSet {
		return "Area value is not set for this row. Configure Area Minus Values for accurate calculations."
	}
	return ""
}

// Sheet is not safe for concurrent use; the session serializes access.
type Sheet struct {
	kind  model.Kind
	rows  []model.Row
	areas model.AreaMinusConfig

	// serials remembers every serial ever assigned, by row ID, so a row
	// restored from history keeps its identifier.
	serials map[string]string
	// inFlight holds row IDs with an outstanding serial request.
	inFlight map[string]bool

	logger *zap.Logger
}

// New returns a sheet of kind k holding one empty row whose serial is
// pending. areas is read on every recompute and never copied.
func New(k model.Kind, areas model.AreaMinusConfig, logger *zap.Logger) *Sheet {
	if logger == nil {
		logger = zap.NewNop()
	}
	if areas == nil {
		areas = model.AreaMinusConfig{}
	}
	s := &Sheet{
		areas:    areas,
		serials:  make(map[string]string),
		inFlight: make(map[string]bool),
		logger:   logger,
	}
	s.ChangeKind(k)
	return s
}

// Kind returns the sheet's measurement kind.
func (s *Sheet) Kind() model.Kind { return s.kind }

// Len returns the number of rows.
func (s *Sheet) Len() int { return len(s.rows) }

// Row returns the row at index i.
func (s *Sheet) Row(i int) (model.Row, bool) {
	if i < 0 || i >= len(s.rows) {
		return model.Row{}, false
	}
	return s.rows[i], true
}

// Rows returns a copy of the rows.
func (s *Sheet) Rows() []model.Row {
	return append([]model.Row(nil), s.rows...)
}

// IndexOf returns the index of the row with the given ID, or -1.
func (s *Sheet) IndexOf(rowID string) int {
	for i, r := range s.rows {
		if r.ID == rowID {
			return i
		}
	}
	return -1
}

func (s *Sheet) newRow(seedSerial string) (model.Row, bool) {
	r := model.NewRow(s.kind)
	if seedSerial != "" {
		r.Serial = model.Serial{Number: seedSerial, Status: model.SerialAssigned}
		s.serials[r.ID] = seedSerial
		return r, false
	}
	r.Serial.Status = model.SerialPending
	s.inFlight[r.ID] = true
	return r, true
}

// AddRow appends an empty row. With a seed serial the row is assigned at
// once; otherwise it is marked pending and the bool reports that the caller
// must request a serial for it.
func (s *Sheet) AddRow(seedSerial string) (model.Row, bool) {
	r, need := s.newRow(seedSerial)
	s.rows = append(s.rows, r)
	s.logger.Debug("row added", zap.String("row", r.ID), zap.Int("rows", len(s.rows)))
	return r, need
}

// AssignSerial records an issued serial for a row. It reports false when the
// row no longer exists or already has a serial.
func (s *Sheet) AssignSerial(rowID, serial string) bool {
	delete(s.inFlight, rowID)
	i := s.IndexOf(rowID)
	if i < 0 || serial == "" {
		return false
	}
	if s.rows[i].Serial.Assigned() {
		return false
	}
	s.rows[i].Serial = model.Serial{Number: serial, Status: model.SerialAssigned}
	s.serials[rowID] = serial
	return true
}

// FailSerial records a failed serial request. Assigned rows are unaffected.
func (s *Sheet) FailSerial(rowID string, err error) bool {
	delete(s.inFlight, rowID)
	i := s.IndexOf(rowID)
	if i < 0 || s.rows[i].Serial.Assigned() {
		return false
	}
	s.rows[i].Serial = model.Serial{Status: model.SerialFailed}
	if err != nil {
		s.rows[i].Serial.Err = err.Error()
	}
	return true
}

// MarkPending flags a row without a serial as having a request in flight.
func (s *Sheet) MarkPending(rowID string) bool {
	i := s.IndexOf(rowID)
	if i < 0 || s.rows[i].Serial.Assigned() {
		return false
	}
	s.rows[i].Serial = model.Serial{Status: model.SerialPending}
	s.inFlight[rowID] = true
	return true
}

// RemoveRow deletes the row at index i. The last row can never be removed.
func (s *Sheet) RemoveRow(i int) error {
	if i < 0 || i >= len(s.rows) {
		return fmt.Errorf("remove row %d: %w", i, ErrRowIndex)
	}
	if len(s.rows) == 1 {
		return ErrLastRow
	}
	id := s.rows[i].ID
	s.rows = append(s.rows[:i:i], s.rows[i+1:]...)
	delete(s.inFlight, id)
	s.logger.Debug("row removed", zap.String("row", id), zap.Int("rows", len(s.rows)))
	return nil
}

// EditCell applies an edit to row i and recomputes its derived cells.
func (s *Sheet) EditCell(i int, field model.Field, value string) (Advisory, error) {
	if i < 0 || i >= len(s.rows) {
		return AdvisoryNone, fmt.Errorf("edit row %d: %w", i, ErrRowIndex)
	}
	before := s.rows[i]
	after, ok := engine.ApplyEdit(before, field, value, s.areas)
	if !ok {
		return AdvisoryNone, fmt.Errorf("edit %s: %w", field, ErrNotEditable)
	}
	s.rows[i] = after
	s.logger.Debug("cell edited",
		zap.String("row", after.ID),
		zap.String("field", string(field)),
		zap.String("value", value))

	if s.kind.Family() == model.FamilyShutter &&
		(field == model.FieldWidth || field == model.FieldHeight) &&
		strings.TrimSpace(value) != "" && after.EffectiveArea() == "" {
		return AdvisoryAreaNotSet, nil
	}
	return AdvisoryNone, nil
}

// ChangeKind switches the sheet to kind k and resets it to one empty row
// with a pending serial. Serials of discarded rows stay remembered so undo
// can bring them back.
func (s *Sheet) ChangeKind(k model.Kind) model.Row {
	s.kind = k
	for id := range s.inFlight {
		delete(s.inFlight, id)
	}
	r, _ := s.newRow("")
	s.rows = []model.Row{r}
	return r
}

// Replace swaps in rows wholesale, as when restoring history. Serials issued
// for a row ID are re-applied so identifiers never change; a restored row
// that claims a pending serial without a request in flight drops to none.
func (s *Sheet) Replace(k model.Kind, rows []model.Row) {
	s.kind = k
	s.rows = make([]model.Row, len(rows))
	for i, r := range rows {
		if serial, ok := s.serials[r.ID]; ok {
			r.Serial = model.Serial{Number: serial, Status: model.SerialAssigned}
		} else if r.Serial.Status == model.SerialPending && !s.inFlight[r.ID] {
			r.Serial = model.Serial{}
		}
		s.rows[i] = r
	}
	if len(s.rows) == 0 {
		r, _ := s.newRow("")
		s.rows = []model.Row{r}
	}
}

// Load replaces the sheet with previously saved rows, e.g. from an import.
// Their serials are trusted and remembered.
func (s *Sheet) Load(k model.Kind, rows []model.Row) {
	for _, r := range rows {
		if r.Serial.Assigned() {
			s.serials[r.ID] = r.Serial.Number
		}
	}
	s.Replace(k, rows)
}

// RecalculateAll applies the current area deductions to every row and
// returns how many rows changed.
func (s *Sheet) RecalculateAll() int {
	changed := 0
	for i, r := range s.rows {
		out := engine.ApplyAreaConfig(r, s.areas)
		if out != r {
			s.rows[i] = out
			changed++
		}
	}
	s.logger.Debug("area config applied", zap.Int("changed", changed))
	return changed
}

// WithoutSerial returns the IDs of rows holding data but no serial yet, in
// sheet order. Rows with a request still in flight are included; whichever
// serial arrives first is kept.
func (s *Sheet) WithoutSerial() []string {
	var ids []string
	for _, r := range s.rows {
		if r.IsEmpty() || r.Serial.Assigned() {
			continue
		}
		ids = append(ids, r.ID)
	}
	return ids
}

// Items returns the wire form of every row that holds data.
func (s *Sheet) Items() []model.Item {
	var items []model.Item
	for _, r := range s.rows {
		if r.IsEmpty() {
			continue
		}
		items = append(items, r.Item())
	}
	return items
}
