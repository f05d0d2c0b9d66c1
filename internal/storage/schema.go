package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const currentSchemaVersion = 1

// OpenDB opens (creating if needed) the SQLite database at dbPath and brings
// its schema up to date.
func OpenDB(dbPath string) (*sql.DB, error) {
	parentDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		return nil, fmt.Errorf("creating parent directories: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrateSchema(db, sqliteDialect, dbPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// OpenPostgres connects to the Postgres database described by dsn and brings
// its schema up to date.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := migrateSchema(db, postgresDialect, "the tripwatch tables"); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func migrateSchema(db *sql.DB, d dialect, location string) error {
	var tableName string
	err := db.QueryRow(d.tableExistsQuery(), "schema_version").Scan(&tableName)

	var currentVersion int
	if errors.Is(err, sql.ErrNoRows) {
		currentVersion = 0
	} else if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	} else {
		err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&currentVersion)
		if errors.Is(err, sql.ErrNoRows) {
			currentVersion = 0
		} else if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	if currentVersion > currentSchemaVersion {
		return fmt.Errorf(
			"database schema version %d is newer than this tripwatch version supports (max: %d); upgrade tripwatch or delete %s to start fresh",
			currentVersion, currentSchemaVersion, location,
		)
	}

	if currentVersion < currentSchemaVersion {
		if err := applyMigrations(db, currentVersion); err != nil {
			return fmt.Errorf("applying migrations: %w", err)
		}
	}

	return nil
}

func applyMigrations(db *sql.DB, fromVersion int) error {
	if fromVersion == 0 {
		if err := migrateV0ToV1(db); err != nil {
			return fmt.Errorf("migration v0→v1: %w", err)
		}
	}

	return nil
}

// migrateV0ToV1 creates the trips and alerts tables. The statements are
// written in the subset of SQL shared by SQLite and Postgres.
func migrateV0ToV1(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (1)")
	if err != nil {
		return fmt.Errorf("inserting schema version: %w", err)
	}

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS trips (
			trip_id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			monitoring INTEGER NOT NULL DEFAULT 0,
			started_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating trips table: %w", err)
	}

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS alerts (
			trip_id TEXT NOT NULL REFERENCES trips(trip_id) ON DELETE CASCADE,
			alert_id TEXT NOT NULL,
			type TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			dismissed INTEGER NOT NULL DEFAULT 0,
			raised_at TEXT NOT NULL,
			dismissed_at TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (trip_id, alert_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("creating alerts table: %w", err)
	}

	_, err = tx.Exec("CREATE INDEX IF NOT EXISTS idx_trips_updated ON trips(updated_at)")
	if err != nil {
		return fmt.Errorf("creating idx_trips_updated: %w", err)
	}

	_, err = tx.Exec("CREATE INDEX IF NOT EXISTS idx_alerts_dismissed ON alerts(dismissed, dismissed_at)")
	if err != nil {
		return fmt.Errorf("creating idx_alerts_dismissed: %w", err)
	}

	return tx.Commit()
}
