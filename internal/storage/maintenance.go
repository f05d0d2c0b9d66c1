package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	maintenanceInterval = 1 * time.Hour
	vacuumInterval      = 7 * 24 * time.Hour
)

func (s *SQLStore) startMaintenance(ctx context.Context) {
	go s.maintenanceLoop(ctx)
}

func (s *SQLStore) maintenanceLoop(ctx context.Context) {
	defer close(s.maintenanceDone)

	lastVacuum := time.Now()
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.runMaintenanceCycle(time.Now()); err != nil {
				slog.Error("maintenance cycle failed", "err", err)
			}

			if s.dialect.driver == "sqlite" && time.Since(lastVacuum) >= vacuumInterval {
				if _, err := s.db.Exec("VACUUM"); err != nil {
					slog.Error("VACUUM failed", "err", err)
				} else {
					lastVacuum = time.Now()
				}
			}
		}
	}
}

// runMaintenanceCycle deletes dismissed alerts and finished trips that are
// older than the retention window, both on disk and in memory.
func (s *SQLStore) runMaintenanceCycle(now time.Time) error {
	if s.retentionDays <= 0 {
		return nil
	}
	cutoff := now.AddDate(0, 0, -s.retentionDays)
	cutoffText := formatTime(cutoff)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(s.dialect.rebind(`
		DELETE FROM alerts
		WHERE dismissed = 1 AND dismissed_at <> '' AND dismissed_at < ?
	`), cutoffText)
	if err != nil {
		return fmt.Errorf("pruning dismissed alerts: %w", err)
	}
	alertRows, _ := res.RowsAffected()

	_, err = tx.Exec(s.dialect.rebind(`
		DELETE FROM alerts
		WHERE trip_id IN (SELECT trip_id FROM trips WHERE monitoring = 0 AND updated_at < ?)
	`), cutoffText)
	if err != nil {
		return fmt.Errorf("pruning alerts of finished trips: %w", err)
	}

	res, err = tx.Exec(s.dialect.rebind(`
		DELETE FROM trips WHERE monitoring = 0 AND updated_at < ?
	`), cutoffText)
	if err != nil {
		return fmt.Errorf("pruning finished trips: %w", err)
	}
	tripRows, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing maintenance: %w", err)
	}

	memAlerts, memTrips := s.MemoryStore.Prune(cutoff)
	slog.Debug("maintenance cycle complete",
		"alerts_deleted", alertRows, "trips_deleted", tripRows,
		"alerts_pruned", memAlerts, "trips_pruned", len(memTrips))
	return nil
}
