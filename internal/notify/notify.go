package notify

import (
	"github.com/gen2brain/beeep"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyNormal Urgency = iota
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
}

// Notifier handles sending desktop notifications
type Notifier struct {
	enabled bool
	notify  func(title, body string) error
	alert   func(title, body string) error
}

// NewNotifier creates a disabled notifier backed by beeep
func NewNotifier() *Notifier {
	return &Notifier{
		notify: func(title, body string) error {
			return beeep.Notify(title, body, "")
		},
		alert: func(title, body string) error {
			return beeep.Alert(title, body, "")
		},
	}
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// Send sends a desktop notification. Critical ones also sound an alert.
func (n *Notifier) Send(notification Notification) error {
	if !n.enabled {
		return nil
	}

	if notification.Urgency == UrgencyCritical {
		return n.alert(notification.Title, notification.Body)
	}
	return n.notify(notification.Title, notification.Body)
}

// SendSaveFailed warns that tasks could not be written
func (n *Notifier) SendSaveFailed(location string) error {
	return n.Send(Notification{
		Title:   "Save Error",
		Body:    "Failed to save tasks to " + location + ". Changes may be lost.",
		Urgency: UrgencyCritical,
	})
}

// SendLoadFailed warns that saved tasks could not be read
func (n *Notifier) SendLoadFailed(corrupt bool) error {
	body := "Failed to load saved tasks."
	if corrupt {
		body = "Task file is corrupted. Starting with empty list."
	}
	return n.Send(Notification{
		Title:   "Load Error",
		Body:    body,
		Urgency: UrgencyNormal,
	})
}
