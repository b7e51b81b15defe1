// Package history provides a capped undo/redo timeline of state snapshots and
// a debouncer that decides when a snapshot is taken.
package history

const defaultMaxDepth = 50

// History is a linear timeline of snapshots with a cursor on the current
// one. Pushing after an undo discards the redo branch. It is agnostic to the
// snapshot contents; clone isolates stored values from the caller's.
type History[T any] struct {
	entries  []T
	cursor   int // index of the current snapshot, -1 when empty
	maxDepth int
	clone    func(T) T
}

// New creates a History holding at most maxDepth snapshots (50 when
// maxDepth <= 0). clone may be nil for value types with no shared state.
func New[T any](maxDepth int, clone func(T) T) *History[T] {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &History[T]{cursor: -1, maxDepth: maxDepth, clone: clone}
}

// Push records v as the newest snapshot. Everything after the cursor is
// dropped and the oldest snapshots are evicted beyond the cap.
func (h *History[T]) Push(v T) {
	h.entries = append(h.entries[:h.cursor+1], h.clone(v))
	if len(h.entries) > h.maxDepth {
		drop := len(h.entries) - h.maxDepth
		var zero T
		for i := 0; i < drop; i++ {
			h.entries[i] = zero
		}
		h.entries = h.entries[drop:]
	}
	h.cursor = len(h.entries) - 1
}

// Undo moves the cursor back one step and returns the snapshot there.
// It returns false without side effects at the start of the timeline.
func (h *History[T]) Undo() (T, bool) {
	if !h.CanUndo() {
		var zero T
		return zero, false
	}
	h.cursor--
	return h.clone(h.entries[h.cursor]), true
}

// Redo moves the cursor forward one step and returns the snapshot there.
func (h *History[T]) Redo() (T, bool) {
	if !h.CanRedo() {
		var zero T
		return zero, false
	}
	h.cursor++
	return h.clone(h.entries[h.cursor]), true
}

// Current returns the snapshot under the cursor.
func (h *History[T]) Current() (T, bool) {
	if h.cursor < 0 {
		var zero T
		return zero, false
	}
	return h.clone(h.entries[h.cursor]), true
}

// CanUndo returns true if there is an earlier snapshot.
func (h *History[T]) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo returns true if there is a later snapshot.
func (h *History[T]) CanRedo() bool {
	return h.cursor >= 0 && h.cursor < len(h.entries)-1
}

// Clear removes every snapshot.
func (h *History[T]) Clear() {
	h.entries = nil
	h.cursor = -1
}

// Len returns the number of stored snapshots.
func (h *History[T]) Len() int {
	return len(h.entries)
}

// Cursor returns the index of the current snapshot, or -1.
func (h *History[T]) Cursor() int {
	return h.cursor
}
