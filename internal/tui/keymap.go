package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	Tab4    key.Binding
	Tab5    key.Binding

	// Actions
	Apply    key.Binding
	Order    key.Binding
	Ignore   key.Binding
	Forecast key.Binding
	Optimize key.Binding
	Refresh  key.Binding

	// Application
	Help        key.Binding
	Quit        key.Binding
	ClearScreen key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "l", "right"),
			key.WithHelp("Tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "h", "left"),
			key.WithHelp("S-Tab", "previous tab"),
		),
		Tab1: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "overview")),
		Tab2: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "inventory")),
		Tab3: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "pricing")),
		Tab4: key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "orders")),
		Tab5: key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "forecast")),

		Apply: key.NewBinding(
			key.WithKeys("a", "enter"),
			key.WithHelp("a", "apply price"),
		),
		Order: key.NewBinding(
			key.WithKeys("o", "enter"),
			key.WithHelp("o", "place order"),
		),
		Ignore: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "ignore"),
		),
		Forecast: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "forecast"),
		),
		Optimize: key.NewBinding(
			key.WithKeys("O", "ctrl+o"),
			key.WithHelp("O", "run optimization"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "refresh"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ClearScreen: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("Ctrl+L", "clear screen"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Refresh, k.Optimize, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab},
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4, k.Tab5},
		{k.Apply, k.Order, k.Ignore, k.Forecast},
		{k.Optimize, k.Refresh, k.Help, k.Quit},
	}
}
