//go:build darwin

package alerts

import (
	"testing"
	"time"
)

func TestStatusNotification_OSAScript(t *testing.T) {
	// Disabled notifier: no osascript popups during tests.
	notifier := NewOSAScriptNotifier(false)

	notifier.Notify(StatusChange{
		TripID: `trip-"quoted"-1234567890`,
		From:   StatusSafe,
		To:     StatusHighRisk,
		At:     time.Now(),
	})

	escaped := escapeAppleScript(`He said "hello" and \n stuff`)
	expected := `He said \"hello\" and \\n stuff`
	if escaped != expected {
		t.Errorf("escapeAppleScript: expected %q, got %q", expected, escaped)
	}

	if !NewOSAScriptNotifier(true).enabled {
		t.Error("expected notifier to be enabled")
	}
	if NewOSAScriptNotifier(false).enabled {
		t.Error("expected notifier to be disabled")
	}
}
