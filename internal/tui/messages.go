package tui

import "github.com/Veraticus/stockroom/internal/model"

// Dashboard events from internal/dashboard are delivered to Update as-is.
// The messages below are the TUI's own.

// refreshMsg asks for an aggregate reload. Scheduled refreshes skip silently
// when the dashboard is busy instead of flashing an error.
type refreshMsg struct {
	scheduled bool
}

// flashExpiredMsg clears the flash with the matching id.
type flashExpiredMsg struct {
	id int
}

// flash is a one-shot message shown under the tab body. Action failures use
// it; load failures go to the persistent banner instead.
type flash struct {
	text string
	kind model.NotificationKind
	id   int
}
