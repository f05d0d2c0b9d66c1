package storage

import (
	"fmt"
	"log/slog"

	"github.com/nixlim/tripwatch/internal/config"
	"github.com/nixlim/tripwatch/internal/trip"
)

// NewStore builds the store described by cfg. The bool result reports
// whether state is persisted. When the database cannot be opened the error
// is logged and an in-memory store is returned instead, so the dashboard
// still starts.
func NewStore(cfg config.StorageConfig) (trip.Store, bool, error) {
	switch cfg.Driver {
	case "", config.DriverSQLite:
		if cfg.DBPath == "" {
			return trip.NewMemoryStore(), false, nil
		}
		dbPath := config.ExpandTilde(cfg.DBPath)
		store, err := NewSQLiteStore(dbPath, cfg.RetentionDays)
		if err != nil {
			slog.Warn("SQLite storage unavailable, falling back to in-memory store", "path", dbPath, "err", err)
			return trip.NewMemoryStore(), false, nil
		}
		return store, true, nil

	case config.DriverPostgres:
		if cfg.DSN == "" {
			return trip.NewMemoryStore(), false, nil
		}
		store, err := NewPostgresStore(cfg.DSN, cfg.RetentionDays)
		if err != nil {
			slog.Warn("Postgres storage unavailable, falling back to in-memory store", "err", err)
			return trip.NewMemoryStore(), false, nil
		}
		return store, true, nil

	default:
		return nil, false, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
