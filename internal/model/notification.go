package model

// NotificationKind classifies a derived notification.
type NotificationKind string

// Notification kinds in decreasing severity.
const (
	NotificationAlert   NotificationKind = "alert"
	NotificationWarning NotificationKind = "warning"
	NotificationInfo    NotificationKind = "info"
	NotificationSuccess NotificationKind = "success"
)

// Notification is derived from dashboard state on every render and never stored.
type Notification struct {
	Kind    NotificationKind
	Message string
}
