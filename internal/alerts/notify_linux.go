//go:build linux

package alerts

import (
	"log/slog"
	"os/exec"
)

// NotifySendNotifier sends Linux desktop notifications via notify-send.
// Notifications are sent in a background goroutine so a slow notification
// daemon never stalls the store listeners.
type NotifySendNotifier struct {
	// enabled controls whether notifications are actually sent.
	// When false, Notify is a no-op.
	enabled bool
}

// NewNotifySendNotifier creates a new Linux notification sender.
// If enabled is false, notifications are silently dropped.
func NewNotifySendNotifier(enabled bool) *NotifySendNotifier {
	return &NotifySendNotifier{enabled: enabled}
}

// NewPlatformNotifier creates the platform-appropriate notifier for Linux.
func NewPlatformNotifier(enabled bool) Notifier {
	return NewNotifySendNotifier(enabled)
}

// Notify sends a Linux desktop notification for the given change.
func (n *NotifySendNotifier) Notify(change StatusChange) {
	if !n.enabled {
		return
	}

	title, body := notificationText(change)

	urgency := "normal"
	switch change.To {
	case StatusHighRisk:
		urgency = "critical"
	case StatusSafe:
		urgency = "low"
	}

	go func() {
		if err := sendNotifySend(title, body, urgency); err != nil {
			slog.Warn("failed to send Linux notification", "trip", change.TripID, "error", err)
		}
	}()
}

// sendNotifySend executes notify-send to display a desktop notification.
func sendNotifySend(title, body, urgency string) error {
	cmd := exec.Command("notify-send", "--urgency", urgency, "--app-name", "tripwatch", title, body)
	return cmd.Run()
}
