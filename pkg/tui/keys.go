package tui

import "github.com/charmbracelet/bubbles/v2/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Close   key.Binding
	Delete  key.Binding
	Refresh key.Binding
	Water   key.Binding
	Command key.Binding
	Theme   key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "reveal delete"),
		),
		Close: key.NewBinding(
			key.WithKeys("right", "l", "esc"),
			key.WithHelp("→", "close"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete", "backspace"),
			key.WithHelp("d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "refresh"),
		),
		Water: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "+8oz water"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) short() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Delete, k.Water, k.Refresh, k.Command, k.Quit}
}
