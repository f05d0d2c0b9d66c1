package alerts

import (
	"fmt"
	"strings"
	"time"
)

// Type is the severity type reported with a trip alert.
type Type string

// Alert type constants.
const (
	TypeSafe      Type = "safe"
	TypeDeviation Type = "deviation"
	TypeHighRisk  Type = "high-risk"
)

// ParseType converts a wire value into a Type. Matching ignores case and
// treats '_' and ' ' as '-', so "HIGH_RISK" parses as TypeHighRisk.
func ParseType(s string) (Type, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	switch Type(norm) {
	case TypeSafe, TypeDeviation, TypeHighRisk:
		return Type(norm), nil
	}
	return "", fmt.Errorf("unknown alert type %q", s)
}

// Alert is a single reported condition tied to a trip.
type Alert struct {
	ID          string
	TripID      string
	Type        Type
	Message     string
	Dismissed   bool
	RaisedAt    time.Time
	DismissedAt time.Time
}

// Status is the aggregate severity of a trip's active alerts. Values are
// ordered by severity so that a larger value always dominates a smaller one.
type Status int

const (
	StatusSafe Status = iota
	StatusDeviation
	StatusHighRisk

	statusCount
)

// Statuses lists every status in ascending severity.
func Statuses() []Status {
	return []Status{StatusSafe, StatusDeviation, StatusHighRisk}
}

func (s Status) String() string {
	switch s {
	case StatusSafe:
		return "safe"
	case StatusDeviation:
		return "deviation"
	case StatusHighRisk:
		return "high-risk"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	return s >= StatusSafe && s < statusCount
}

// StatusChange records a transition of a trip's aggregate status.
type StatusChange struct {
	TripID string
	From   Status
	To     Status
	At     time.Time
}

// Notifier sends status-change notifications via some delivery mechanism.
type Notifier interface {
	// Notify delivers a status change. Implementations must be non-blocking.
	Notify(change StatusChange)
}
