package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the counter TUI.
type KeyMap struct {
	Increment key.Binding
	Decrement key.Binding
	Reset     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Increment: key.NewBinding(
		key.WithKeys("+", "=", "up", "k", " "),
		key.WithHelp("+/space", "click"),
	),
	Decrement: key.NewBinding(
		key.WithKeys("-", "down", "j"),
		key.WithHelp("-", "undo"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Increment, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Increment, k.Decrement, k.Reset},
		{k.Help, k.Quit},
	}
}
