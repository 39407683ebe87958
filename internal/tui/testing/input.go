// Package testing drives Bubble Tea models in tests without a terminal.
package testing

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// namedKeys maps key names to their message types.
var namedKeys = map[string]tea.KeyType{
	"tab":       tea.KeyTab,
	"shift+tab": tea.KeyShiftTab,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"enter":     tea.KeyEnter,
	"esc":       tea.KeyEsc,
	"delete":    tea.KeyDelete,
	"ctrl+c":    tea.KeyCtrlC,
	"ctrl+l":    tea.KeyCtrlL,
	"ctrl+o":    tea.KeyCtrlO,
	"ctrl+r":    tea.KeyCtrlR,
}

// KeyPress builds the message for a key as the keymap names it: "tab",
// "ctrl+r" or a literal rune such as "a" or "O".
func KeyPress(key string) tea.KeyMsg {
	if t, ok := namedKeys[strings.ToLower(key)]; ok {
		return tea.KeyMsg{Type: t}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// WindowSize creates a window size message.
func WindowSize(width, height int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: width, Height: height}
}
