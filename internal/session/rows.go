package session

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/innovadoor/sitemeasure/internal/model"
	"github.com/innovadoor/sitemeasure/internal/sheet"
	"github.com/innovadoor/sitemeasure/internal/units"
)

// AddRow appends an empty row, requests its serial and returns its index.
func (s *Session) AddRow() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addRowLocked()
}

func (s *Session) addRowLocked() int {
	r, need := s.sheet.AddRow("")
	if need && s.state != StateLoading {
		s.requestSerialLocked(r.ID)
	}
	s.changedLocked()
	return s.sheet.Len() - 1
}

// EditCell sets one cell and recomputes the row. The returned advisory is
// informational and never blocks the edit.
func (s *Session) EditCell(i int, field model.Field, value string) (sheet.Advisory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	adv, err := s.sheet.EditCell(i, field, value)
	if err != nil {
		return sheet.AdvisoryNone, err
	}
	s.advisory = adv
	s.changedLocked()
	return adv, nil
}

// RequestRemoveRow asks to remove row i. The removal waits for
// ConfirmRemoveRow; the last row can never be removed.
func (s *Session) RequestRemoveRow(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sheet.Row(i); !ok {
		return fmt.Errorf("remove row %d: %w", i, sheet.ErrRowIndex)
	}
	if s.sheet.Len() == 1 {
		return sheet.ErrLastRow
	}
	s.pendingRemoval = i
	return nil
}

// PendingRemoval returns the row awaiting confirmation.
func (s *Session) PendingRemoval() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingRemoval, s.pendingRemoval >= 0
}

// ConfirmRemoveRow removes the row named by RequestRemoveRow.
func (s *Session) ConfirmRemoveRow() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingRemoval < 0 {
		return ErrNoRemoval
	}
	i := s.pendingRemoval
	s.pendingRemoval = -1
	if err := s.sheet.RemoveRow(i); err != nil {
		return err
	}
	s.changedLocked()
	return nil
}

// CancelRemoveRow drops a pending removal.
func (s *Session) CancelRemoveRow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingRemoval = -1
}

// Advance moves past (i, field) like the Enter key: to the next editable
// cell, appending a row after the last editable cell of the last row.
func (s *Session) Advance(i int, field model.Field) sheet.Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, needRow := s.sheet.Advance(i, field)
	if needRow {
		s.addRowLocked()
	}
	return c
}

// RetrySerial requests a serial again for a row whose request failed.
func (s *Session) RetrySerial(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.sheet.Row(i)
	if !ok || r.Serial.Status != model.SerialFailed && r.Serial.Status != model.SerialNone {
		return false
	}
	if !s.sheet.MarkPending(r.ID) {
		return false
	}
	s.requestSerialLocked(r.ID)
	return true
}

// AreaMinus returns a copy of the area deductions.
func (s *Session) AreaMinus() model.AreaMinusConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.areas.Clone()
}

// SetAreaMinus configures the deductions of an area code. Blank values are
// allowed and disable that side; anything else must be numeric. Existing rows
// change only through ApplyAreaConfig.
func (s *Session) SetAreaMinus(code, width, height string) error {
	code = strings.TrimSpace(code)
	if code == "" || code == model.CustomAreaCode {
		return fmt.Errorf("invalid area code %q", code)
	}
	for _, v := range []string{width, height} {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := units.ParseNumber(v); !ok {
			return fmt.Errorf("area %s: minus value %q is not a number", code, v)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.areas[code] = model.AreaMinus{Width: strings.TrimSpace(width), Height: strings.TrimSpace(height)}
	return nil
}

// DeleteAreaMinus removes an area code's deductions.
func (s *Session) DeleteAreaMinus(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.areas, strings.TrimSpace(code))
}

// ApplyAreaConfig recalculates every row against the current deductions
// ("Save & Apply") and returns how many rows changed.
func (s *Session) ApplyAreaConfig() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.sheet.RecalculateAll()
	s.logger.Info("area deductions applied", zap.Int("rows_changed", n))
	if n > 0 {
		s.changedLocked()
	}
	return n
}
