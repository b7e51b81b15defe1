package keymap

import (
	"testing"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	cases := []struct {
		name string
		ev   Event
		want Action
	}{
		{"ctrl z", Event{Key: fyne.KeyZ, Modifier: fyne.KeyModifierControl}, ActionUndo},
		{"cmd z", Event{Key: fyne.KeyZ, Modifier: fyne.KeyModifierSuper}, ActionUndo},
		{"lower z", Event{Key: "z", Modifier: fyne.KeyModifierControl}, ActionUndo},
		{"ctrl y", Event{Key: fyne.KeyY, Modifier: fyne.KeyModifierControl}, ActionRedo},
		{"ctrl shift z", Event{Key: fyne.KeyZ, Modifier: fyne.KeyModifierControl | fyne.KeyModifierShift}, ActionRedo},
		{"in text input", Event{Key: fyne.KeyZ, Modifier: fyne.KeyModifierControl, InTextInput: true}, ActionUndo},
		{"plain z", Event{Key: fyne.KeyZ}, ActionNone},
		{"shift z", Event{Key: fyne.KeyZ, Modifier: fyne.KeyModifierShift}, ActionNone},
		{"ctrl alt z", Event{Key: fyne.KeyZ, Modifier: fyne.KeyModifierControl | fyne.KeyModifierAlt}, ActionNone},
		{"ctrl shift y", Event{Key: fyne.KeyY, Modifier: fyne.KeyModifierControl | fyne.KeyModifierShift}, ActionNone},
		{"ctrl c", Event{Key: fyne.KeyC, Modifier: fyne.KeyModifierControl}, ActionNone},
		{"enter", Event{Key: fyne.KeyReturn}, ActionNone},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Lookup(c.ev))
		})
	}
}

func TestShortcutsRoundTrip(t *testing.T) {
	var actions []Action
	for _, s := range Shortcuts() {
		actions = append(actions, Lookup(FromShortcut(s)))
	}
	assert.Equal(t, []Action{ActionUndo, ActionRedo, ActionRedo}, actions)
}
