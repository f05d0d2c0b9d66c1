package storage

import (
	"fmt"
	"log/slog"

	"github.com/nixlim/tripwatch/internal/alerts"
	"github.com/nixlim/tripwatch/internal/trip"
)

// recoverTrips loads every persisted trip and its alerts back into the
// memory store. Rows that fail to scan are logged and skipped.
func (s *SQLStore) recoverTrips() error {
	rows, err := s.db.Query(`
		SELECT trip_id, name, monitoring, started_at, updated_at
		FROM trips
	`)
	if err != nil {
		return fmt.Errorf("querying trips: %w", err)
	}
	defer func() { _ = rows.Close() }()

	trips := make(map[string]*trip.Trip)
	var order []string
	var failCount int
	for rows.Next() {
		var id, name, startedAt, updatedAt string
		var monitoring int64
		if err := rows.Scan(&id, &name, &monitoring, &startedAt, &updatedAt); err != nil {
			failCount++
			slog.Error("failed to scan trip row", "err", err)
			continue
		}
		trips[id] = &trip.Trip{
			ID:         id,
			Name:       name,
			Monitoring: monitoring == 1,
			StartedAt:  parseTime(startedAt),
			UpdatedAt:  parseTime(updatedAt),
		}
		order = append(order, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating trips: %w", err)
	}

	if err := s.recoverAlerts(trips); err != nil {
		return err
	}

	for _, id := range order {
		s.MemoryStore.Restore(*trips[id])
	}

	if failCount > 0 {
		slog.Warn("some trips could not be recovered", "failed", failCount)
	}
	if len(order) > 0 {
		slog.Info("recovered trips from storage", "count", len(order))
	}
	return nil
}

func (s *SQLStore) recoverAlerts(trips map[string]*trip.Trip) error {
	rows, err := s.db.Query(`
		SELECT trip_id, alert_id, type, message, dismissed, raised_at, dismissed_at
		FROM alerts
		ORDER BY raised_at, alert_id
	`)
	if err != nil {
		return fmt.Errorf("querying alerts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var tripID, alertID, typ, message, raisedAt, dismissedAt string
		var dismissed int64
		if err := rows.Scan(&tripID, &alertID, &typ, &message, &dismissed, &raisedAt, &dismissedAt); err != nil {
			slog.Error("failed to scan alert row", "err", err)
			continue
		}
		t, ok := trips[tripID]
		if !ok {
			continue
		}
		t.Alerts = append(t.Alerts, alerts.Alert{
			ID:          alertID,
			TripID:      tripID,
			Type:        alerts.Type(typ),
			Message:     message,
			Dismissed:   dismissed == 1,
			RaisedAt:    parseTime(raisedAt),
			DismissedAt: parseTime(dismissedAt),
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating alerts: %w", err)
	}
	return nil
}
