package session

import (
	"go.uber.org/zap"

	"github.com/innovadoor/sitemeasure/internal/events"
	"github.com/innovadoor/sitemeasure/internal/keymap"
)

// save is the debounced history push.
func (s *Session) save() {
	s.mu.Lock()
	snap, pushed := s.pushLocked()
	s.mu.Unlock()
	if pushed {
		s.bus.Publish(events.NewEvent(events.SavedEvent, snap))
	}
}

// pushLocked records the current state unless it matches the snapshot under
// the history cursor.
func (s *Session) pushLocked() (Snapshot, bool) {
	if s.state == StateLoading {
		return Snapshot{}, false
	}
	snap := s.snapshotLocked()
	if cur, ok := s.history.Current(); ok && cur.SameContent(snap) {
		return Snapshot{}, false
	}
	s.history.Push(snap)
	s.logger.Debug("history saved", zap.Int("depth", s.history.Len()))
	return snap.Clone(), true
}

// flushLocked runs a pending debounced save now.
func (s *Session) flushLocked() {
	if s.debounce.Pending() {
		s.debounce.Cancel()
		s.pushLocked()
	}
}

func (s *Session) restoreLocked(snap Snapshot) {
	s.header = snap.Header
	s.partyID = snap.PartyID
	s.sheet.Replace(snap.Kind, snap.Rows)
	s.pendingRemoval = -1
	s.refreshStateLocked()
}

// Undo restores the previous snapshot. A pending save is flushed first so
// the latest edits are not lost; the restore itself schedules no save.
func (s *Session) Undo() bool {
	s.mu.Lock()
	s.flushLocked()
	snap, ok := s.history.Undo()
	if ok {
		s.restoreLocked(snap)
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	if ok {
		s.bus.Publish(events.NewEvent(events.UndoneEvent, snap))
	}
	return ok
}

// Redo restores the next snapshot.
func (s *Session) Redo() bool {
	s.mu.Lock()
	s.flushLocked()
	snap, ok := s.history.Redo()
	if ok {
		s.restoreLocked(snap)
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	if ok {
		s.bus.Publish(events.NewEvent(events.RedoneEvent, snap))
	}
	return ok
}

// CanUndo reports whether Undo would do anything, counting a pending save.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo() || s.debounce.Pending()
}

// CanRedo reports whether Redo would do anything. A pending save discards
// the redo branch once it runs.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo() && !s.debounce.Pending()
}

// HandleKey runs the history shortcut bound to ev, even when a text input
// has focus, and reports whether the key was consumed.
func (s *Session) HandleKey(ev keymap.Event) bool {
	switch keymap.Lookup(ev) {
	case keymap.ActionUndo:
		s.Undo()
		return true
	case keymap.ActionRedo:
		s.Redo()
		return true
	default:
		return false
	}
}

func (s *Session) handleEvent(e events.Event) {
	switch e.Type() {
	case events.UndoRequestedEvent:
		s.Undo()
	case events.RedoRequestedEvent:
		s.Redo()
	}
}
