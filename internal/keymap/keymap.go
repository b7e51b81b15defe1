// Package keymap maps key presses to history actions. Front ends translate
// their native key events into an Event and let the session decide.
package keymap

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Action is what a key press asks the session to do.
type Action int

const (
	ActionNone Action = iota
	ActionUndo
	ActionRedo
)

func (a Action) String() string {
	switch a {
	case ActionUndo:
		return "undo"
	case ActionRedo:
		return "redo"
	default:
		return "none"
	}
}

// Event is a key press. InTextInput is informational: history shortcuts are
// intercepted even while a text field has focus.
type Event struct {
	Key         fyne.KeyName
	Modifier    fyne.KeyModifier
	InTextInput bool
}

// Lookup returns the action bound to e. Ctrl (or Cmd) + Z undoes;
// Ctrl+Y and Ctrl+Shift+Z redo. Alt combinations are left alone.
func Lookup(e Event) Action {
	primary := e.Modifier&(fyne.KeyModifierControl|fyne.KeyModifierSuper) != 0
	if !primary || e.Modifier&fyne.KeyModifierAlt != 0 {
		return ActionNone
	}
	shift := e.Modifier&fyne.KeyModifierShift != 0

	switch fyne.KeyName(strings.ToUpper(string(e.Key))) {
	case fyne.KeyZ:
		if shift {
			return ActionRedo
		}
		return ActionUndo
	case fyne.KeyY:
		if shift {
			return ActionNone
		}
		return ActionRedo
	}
	return ActionNone
}

// FromShortcut converts a Fyne desktop shortcut to an Event.
func FromShortcut(s *desktop.CustomShortcut) Event {
	return Event{Key: s.KeyName, Modifier: s.Modifier}
}

// Shortcuts returns the bindings as Fyne shortcuts so a window canvas can
// register them with AddShortcut.
func Shortcuts() []*desktop.CustomShortcut {
	mod := fyne.KeyModifierShortcutDefault
	return []*desktop.CustomShortcut{
		{KeyName: fyne.KeyZ, Modifier: mod},
		{KeyName: fyne.KeyY, Modifier: mod},
		{KeyName: fyne.KeyZ, Modifier: mod | fyne.KeyModifierShift},
	}
}
