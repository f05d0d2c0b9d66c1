package events

import "time"

// Kind identifies what produced a feed entry.
type Kind string

const (
	KindMonitoringStart Kind = "monitoring_start"
	KindMonitoringStop  Kind = "monitoring_stop"
	KindAlert           Kind = "alert"
	KindDismiss         Kind = "dismiss"
	KindStatusChange    Kind = "status_change"
	KindRejected        Kind = "rejected"
)

// FormattedEvent holds a display-ready activity entry.
type FormattedEvent struct {
	TripID    string
	Kind      Kind
	Text      string
	Timestamp time.Time
}

// Sink accepts feed entries. RingBuffer is the usual implementation.
type Sink interface {
	Add(e FormattedEvent)
}
