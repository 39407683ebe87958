package themes

import (
	"github.com/Veraticus/stockroom/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Faint         lipgloss.Style
	Selected      lipgloss.Style
	TabActive     lipgloss.Style
	TabInactive   lipgloss.Style
	Banner        lipgloss.Style
	BorderedBox   lipgloss.Style
	RoundedBox    lipgloss.Style
	StatusBar     lipgloss.Style
	StatusPending lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSuccess lipgloss.Style
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Foreground    lipgloss.Color
	Background    lipgloss.Color
	Info          lipgloss.Color
	Error         lipgloss.Color
	Warning       lipgloss.Color
	Success       lipgloss.Color
}

// palette holds the colors a theme is built from.
type palette struct {
	primary, secondary, success, warning, errc, info lipgloss.Color
	background, foreground, border, muted, subtle    lipgloss.Color
}

func build(p palette) Theme {
	status := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}

	return Theme{
		Primary:    p.primary,
		Secondary:  p.secondary,
		Success:    p.success,
		Warning:    p.warning,
		Error:      p.errc,
		Info:       p.info,
		Background: p.background,
		Foreground: p.foreground,
		Border:     p.border,
		Muted:      p.muted,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.primary),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.subtle).
			MarginBottom(1),
		Normal: lipgloss.NewStyle().
			Foreground(p.foreground),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.foreground),
		Faint: lipgloss.NewStyle().
			Foreground(p.muted),
		Selected: lipgloss.NewStyle().
			Background(p.primary).
			Foreground(p.background).
			Bold(true),
		TabActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.background).
			Background(p.primary).
			Padding(0, 1),
		TabInactive: lipgloss.NewStyle().
			Foreground(p.muted).
			Padding(0, 1),
		Banner: lipgloss.NewStyle().
			Foreground(p.foreground).
			Background(p.errc).
			Bold(true).
			Padding(0, 1),
		BorderedBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(p.border).
			Padding(0, 1),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(p.foreground).
			Background(p.border),

		StatusSuccess: status(p.success),
		StatusWarning: status(p.warning),
		StatusError:   status(p.errc),
		StatusInfo:    status(p.info),
		StatusPending: lipgloss.NewStyle().
			Foreground(p.muted).
			Italic(true),
	}
}

// Default is the default theme.
var Default = build(palette{
	primary:    lipgloss.Color("#7c3aed"),
	secondary:  lipgloss.Color("#a78bfa"),
	success:    lipgloss.Color("#10b981"),
	warning:    lipgloss.Color("#f59e0b"),
	errc:       lipgloss.Color("#ef4444"),
	info:       lipgloss.Color("#3b82f6"),
	background: lipgloss.Color("#1a1a1a"),
	foreground: lipgloss.Color("#fafafa"),
	border:     lipgloss.Color("#404040"),
	muted:      lipgloss.Color("#737373"),
	subtle:     lipgloss.Color("#a3a3a3"),
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(palette{
	primary:    lipgloss.Color("#cba6f7"),
	secondary:  lipgloss.Color("#f5c2e7"),
	success:    lipgloss.Color("#a6e3a1"),
	warning:    lipgloss.Color("#f9e2af"),
	errc:       lipgloss.Color("#f38ba8"),
	info:       lipgloss.Color("#89dceb"),
	background: lipgloss.Color("#1e1e2e"),
	foreground: lipgloss.Color("#cdd6f4"),
	border:     lipgloss.Color("#45475a"),
	muted:      lipgloss.Color("#6c7086"),
	subtle:     lipgloss.Color("#a6adc8"),
})

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}

// Notification returns the style for a notification kind.
func (t Theme) Notification(kind model.NotificationKind) lipgloss.Style {
	switch kind {
	case model.NotificationAlert:
		return t.StatusError
	case model.NotificationWarning:
		return t.StatusWarning
	case model.NotificationSuccess:
		return t.StatusSuccess
	default:
		return t.StatusInfo
	}
}

// Urgency returns the style for a reorder urgency.
func (t Theme) Urgency(u model.Urgency) lipgloss.Style {
	switch u {
	case model.UrgencyCritical:
		return t.StatusError
	case model.UrgencyHigh:
		return t.StatusWarning
	case model.UrgencyMedium:
		return t.StatusInfo
	default:
		return t.Faint
	}
}

// NotificationIcons maps notification kinds to icons.
var NotificationIcons = map[model.NotificationKind]string{
	model.NotificationAlert:   "🚨",
	model.NotificationWarning: "⚠️",
	model.NotificationInfo:    "ℹ️",
	model.NotificationSuccess: "✅",
}

// GetNotificationIcon returns an icon for a notification kind.
func GetNotificationIcon(kind model.NotificationKind) string {
	if icon, ok := NotificationIcons[kind]; ok {
		return icon
	}
	return "•"
}
