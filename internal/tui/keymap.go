package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the dashboard shortcuts.
type KeyMap struct {
	Up               key.Binding
	Down             key.Binding
	Tab              key.Binding
	Dismiss          key.Binding
	ToggleMonitoring key.Binding
	Quit             key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "trips/alerts"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss"),
		),
		ToggleMonitoring: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "monitor"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// helpLine renders the bindings as "key:desc" pairs for the header.
func (k KeyMap) helpLine() string {
	var s string
	for _, b := range []key.Binding{k.Tab, k.Dismiss, k.ToggleMonitoring, k.Quit} {
		h := b.Help()
		s += h.Key + ":" + h.Desc + "  "
	}
	return s
}
