// Package keymap holds the chat screen's key bindings and their help text.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap is the set of bindings the chat screen reacts to. Up and Down
// move through the plan list, ScrollUp and ScrollDown through the
// conversation.
type KeyMap struct {
	Quit        key.Binding
	Help        key.Binding
	Send        key.Binding
	SwitchFocus key.Binding
	Up          key.Binding
	Down        key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
}

func bind(helpKey, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:        bind("ctrl+c", "quit", "ctrl+c", "ctrl+d"),
		Help:        bind("f1", "help", "f1"),
		Send:        bind("enter", "send", "enter"),
		SwitchFocus: bind("tab", "plans", "tab"),
		Up:          bind("↑/k", "up", "up", "k"),
		Down:        bind("↓/j", "down", "down", "j"),
		ScrollUp:    bind("pgup", "scroll up", "pgup"),
		ScrollDown:  bind("pgdn", "scroll down", "pgdown"),
	}
}

// ShortHelp is shown in the status bar while typing.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.SwitchFocus, k.Quit}
}

// PlansHelp is shown in the status bar while the plan list has focus,
// where Send opens the plan and SwitchFocus returns to the input.
func (k *KeyMap) PlansHelp() []key.Binding {
	return []key.Binding{
		k.Up,
		k.Down,
		bind("enter", "open", k.Send.Keys()...),
		bind("tab", "message", k.SwitchFocus.Keys()...),
	}
}

// FullHelp groups every binding in columns for the F1 view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.SwitchFocus},
		{k.Up, k.Down, k.ScrollUp, k.ScrollDown},
		{k.Help, k.Quit},
	}
}

// Matches reports whether keyStr is one of binding's keys, disabled or not.
func Matches(keyStr string, binding key.Binding) bool {
	return slices.Contains(binding.Keys(), keyStr)
}
