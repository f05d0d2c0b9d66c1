// Package events formats trip activity into display-ready feed entries and
// keeps the most recent ones in a ring buffer.
package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/nixlim/tripwatch/internal/alerts"
)

const maxMessageLen = 60

// FormatChange renders a status transition:
//
//	"[trip-001] status deviation -> high-risk"
func FormatChange(c alerts.StatusChange) FormattedEvent {
	return FormattedEvent{
		TripID:    c.TripID,
		Kind:      KindStatusChange,
		Text:      fmt.Sprintf("[%s] status %s -> %s", shortID(c.TripID), c.From, c.To),
		Timestamp: orNow(c.At),
	}
}

// FormatAlert renders a newly reported alert:
//
//	"[trip-001] HIGH-RISK sudden stop (a1b2c3d4)"
func FormatAlert(a alerts.Alert) FormattedEvent {
	text := fmt.Sprintf("[%s] %s", shortID(a.TripID), strings.ToUpper(string(a.Type)))
	if msg := truncate(a.Message, maxMessageLen); msg != "" {
		text += " " + msg
	}
	text += fmt.Sprintf(" (%s)", shortAlertID(a.ID))
	return FormattedEvent{
		TripID:    a.TripID,
		Kind:      KindAlert,
		Text:      text,
		Timestamp: orNow(a.RaisedAt),
	}
}

// FormatDismiss renders an alert dismissal.
func FormatDismiss(tripID, alertID string, at time.Time) FormattedEvent {
	return FormattedEvent{
		TripID:    tripID,
		Kind:      KindDismiss,
		Text:      fmt.Sprintf("[%s] dismissed %s", shortID(tripID), shortAlertID(alertID)),
		Timestamp: orNow(at),
	}
}

// FormatMonitoring renders monitoring being switched on or off.
func FormatMonitoring(tripID string, on bool, at time.Time) FormattedEvent {
	fe := FormattedEvent{
		TripID:    tripID,
		Kind:      KindMonitoringStart,
		Text:      fmt.Sprintf("[%s] monitoring started", shortID(tripID)),
		Timestamp: orNow(at),
	}
	if !on {
		fe.Kind = KindMonitoringStop
		fe.Text = fmt.Sprintf("[%s] monitoring stopped", shortID(tripID))
	}
	return fe
}

// FormatRejected renders a record the receiver could not apply.
func FormatRejected(tripID, reason string, at time.Time) FormattedEvent {
	label := tripID
	if label == "" {
		label = "?"
	}
	return FormattedEvent{
		TripID:    tripID,
		Kind:      KindRejected,
		Text:      fmt.Sprintf("[%s] rejected: %s", shortID(label), truncate(reason, maxMessageLen)),
		Timestamp: orNow(at),
	}
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}

// shortAlertID keeps the first UUID group so generated ids stay readable.
func shortAlertID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
