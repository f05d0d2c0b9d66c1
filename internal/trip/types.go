package trip

import (
	"time"

	"github.com/nixlim/tripwatch/internal/alerts"
)

// Trip is a monitored journey and the alerts reported against it.
type Trip struct {
	ID         string
	Name       string
	Monitoring bool
	Alerts     []alerts.Alert
	StartedAt  time.Time
	UpdatedAt  time.Time
}

// Status returns the trip's aggregate status, derived from its alerts on
// every call.
func (t *Trip) Status() alerts.Status {
	return alerts.Classify(t.Alerts)
}

// ActiveAlerts returns the alerts that have not been dismissed.
func (t *Trip) ActiveAlerts() []alerts.Alert {
	return alerts.Active(t.Alerts)
}

// DisplayName returns the trip name, or its ID when unnamed.
func (t *Trip) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

func (t *Trip) clone() Trip {
	c := *t
	c.Alerts = make([]alerts.Alert, len(t.Alerts))
	copy(c.Alerts, t.Alerts)
	return c
}
