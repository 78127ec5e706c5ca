package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the terminal counter.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Increment key.Binding
	Decrement key.Binding

	Toggle key.Binding
	Add    key.Binding
	Remove key.Binding
	Save   key.Binding
	Export key.Binding

	// Timer settings, editable only while idle.
	RecordTime key.Binding
	RestTime   key.Binding

	Dismiss key.Binding
	Submit  key.Binding
	Cancel  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Increment: key.NewBinding(
		key.WithKeys("+", "=", "l", "right"),
		key.WithHelp("+", "count"),
	),
	Decrement: key.NewBinding(
		key.WithKeys("-", "h", "left"),
		key.WithHelp("-", "uncount"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "t"),
		key.WithHelp("space", "start/stop"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add counter"),
	),
	Remove: key.NewBinding(
		key.WithKeys("x", "delete"),
		key.WithHelp("x", "remove"),
	),
	Save: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save session"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export csv"),
	),
	RecordTime: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "record time"),
	),
	RestTime: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "rest time"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "dismiss"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp returns the bindings shown in the help line.
func (keys KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Toggle, keys.Increment, keys.Decrement, keys.Add, keys.Save, keys.Export, keys.Quit}
}

// FullHelp returns every binding, grouped by purpose.
func (keys KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{keys.Up, keys.Down, keys.Increment, keys.Decrement},
		{keys.Toggle, keys.RecordTime, keys.RestTime},
		{keys.Add, keys.Remove, keys.Save, keys.Export},
		{keys.Dismiss, keys.Quit},
	}
}
