package session

import "github.com/innovadoor/sitemeasure/internal/model"

// Snapshot is an immutable copy of the form state kept in history.
type Snapshot struct {
	Header  model.Header
	Kind    model.Kind
	PartyID int64
	Rows    []model.Row
}

// Clone returns a deep copy. Rows hold only strings, so copying the slice
// is enough.
func (s Snapshot) Clone() Snapshot {
	s.Rows = append([]model.Row(nil), s.Rows...)
	return s
}

// SameContent reports whether two snapshots show the same form to the user.
// Row revisions and serial assignment state are ignored.
func (s Snapshot) SameContent(o Snapshot) bool {
	if s.Kind != o.Kind || s.PartyID != o.PartyID || len(s.Rows) != len(o.Rows) {
		return false
	}
	if s.Header.MeasurementNumber != o.Header.MeasurementNumber ||
		s.Header.SiteLocation != o.Header.SiteLocation ||
		s.Header.Notes != o.Header.Notes ||
		!s.Header.MeasurementDate.Equal(o.Header.MeasurementDate) {
		return false
	}
	for i := range s.Rows {
		a, b := s.Rows[i], o.Rows[i]
		a.Revision, b.Revision = 0, 0
		a.Serial, b.Serial = model.Serial{}, model.Serial{}
		if a != b {
			return false
		}
	}
	return true
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Header:  s.header,
		Kind:    s.sheet.Kind(),
		PartyID: s.partyID,
		Rows:    s.sheet.Rows(),
	}
}

// Snapshot returns the current form state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}
