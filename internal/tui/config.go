package tui

import (
	"time"

	"github.com/Veraticus/stockroom/internal/dashboard"
	"github.com/Veraticus/stockroom/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme           themes.Theme
	Dispatcher      *dashboard.Dispatcher
	RefreshInterval time.Duration
	FlashDuration   time.Duration
	InitialTab      dashboard.Tab
	Width           int
	Height          int
	AltScreen       bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:         themes.Default,
		FlashDuration: 5 * time.Second,
		InitialTab:    dashboard.TabOverview,
		Width:         100,
		Height:        30,
		AltScreen:     true,
	}
}

// WithDispatcher sets the dispatcher that talks to the backend.
func WithDispatcher(d *dashboard.Dispatcher) Option {
	return func(c *Config) {
		c.Dispatcher = d
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithRefreshInterval reloads the dashboard periodically. Zero disables it.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Config) {
		c.RefreshInterval = d
	}
}

// WithFlashDuration sets how long one-shot messages stay on screen.
func WithFlashDuration(d time.Duration) Option {
	return func(c *Config) {
		c.FlashDuration = d
	}
}

// WithInitialTab selects the tab shown at startup.
func WithInitialTab(tab dashboard.Tab) Option {
	return func(c *Config) {
		c.InitialTab = tab
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}
