//go:build darwin

package alerts

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// OSAScriptNotifier sends macOS system notifications via osascript.
// Notifications are sent in a background goroutine so a slow osascript
// never stalls the store listeners.
type OSAScriptNotifier struct {
	// enabled controls whether notifications are actually sent.
	// When false, Notify is a no-op.
	enabled bool
}

// NewOSAScriptNotifier creates a new macOS notification sender.
// If enabled is false, notifications are silently dropped.
func NewOSAScriptNotifier(enabled bool) *OSAScriptNotifier {
	return &OSAScriptNotifier{enabled: enabled}
}

// NewPlatformNotifier creates the platform-appropriate notifier for macOS.
func NewPlatformNotifier(enabled bool) Notifier {
	return NewOSAScriptNotifier(enabled)
}

// Notify sends a macOS notification for the given change.
func (n *OSAScriptNotifier) Notify(change StatusChange) {
	if !n.enabled {
		return
	}

	title, body := notificationText(change)
	subtitle := ""
	if change.To == StatusHighRisk {
		subtitle = "Check on this trip now"
	}

	go func() {
		if err := sendOSANotification(title, subtitle, body); err != nil {
			slog.Warn("failed to send macOS notification", "trip", change.TripID, "error", err)
		}
	}()
}

// sendOSANotification executes osascript to display a macOS notification.
func sendOSANotification(title, subtitle, message string) error {
	title = escapeAppleScript(title)
	subtitle = escapeAppleScript(subtitle)
	message = escapeAppleScript(message)

	script := fmt.Sprintf(
		`display notification "%s" with title "%s"`,
		message, title,
	)
	if subtitle != "" {
		script = fmt.Sprintf(
			`display notification "%s" with title "%s" subtitle "%s"`,
			message, title, subtitle,
		)
	}

	cmd := exec.Command("osascript", "-e", script)
	return cmd.Run()
}

// escapeAppleScript escapes characters that could break AppleScript strings.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
