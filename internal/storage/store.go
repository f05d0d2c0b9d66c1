package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nixlim/tripwatch/internal/alerts"
	"github.com/nixlim/tripwatch/internal/trip"
)

const (
	writeChannelSize = 1000
	batchSize        = 50
	flushInterval    = 100 * time.Millisecond
	drainTimeout     = 10 * time.Second
)

// writeOp is one mirrored mutation. Every mutation carries the full trip
// snapshot so replaying ops in order always converges on memory state.
type writeOp struct {
	opType string
	tripID string
	trip   *trip.Trip
}

// SQLStore keeps trip state in memory and mirrors every mutation to a SQL
// database through a batching writer goroutine. Reads are served from memory.
type SQLStore struct {
	*trip.MemoryStore
	db              *sql.DB
	dialect         dialect
	retentionDays   int
	writeChan       chan writeOp
	droppedWrites   atomic.Int64
	doneChan        chan struct{}
	closed          atomic.Bool
	cancelMaint     context.CancelFunc
	maintenanceDone chan struct{}
}

// NewSQLiteStore opens a SQLite-backed store at dbPath.
func NewSQLiteStore(dbPath string, retentionDays int) (*SQLStore, error) {
	return newSQLiteStoreWithChannelSize(dbPath, writeChannelSize, retentionDays)
}

func newSQLiteStoreWithChannelSize(dbPath string, chanSize int, retentionDays int) (*SQLStore, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return newSQLStore(db, sqliteDialect, chanSize, retentionDays)
}

// NewPostgresStore opens a Postgres-backed store using dsn.
func NewPostgresStore(dsn string, retentionDays int) (*SQLStore, error) {
	db, err := OpenPostgres(dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return newSQLStore(db, postgresDialect, writeChannelSize, retentionDays)
}

func newSQLStore(db *sql.DB, d dialect, chanSize int, retentionDays int) (*SQLStore, error) {
	ctx, cancel := context.WithCancel(context.Background())

	store := &SQLStore{
		MemoryStore:     trip.NewMemoryStore(),
		db:              db,
		dialect:         d,
		retentionDays:   retentionDays,
		writeChan:       make(chan writeOp, chanSize),
		doneChan:        make(chan struct{}),
		cancelMaint:     cancel,
		maintenanceDone: make(chan struct{}),
	}

	if err := store.recoverTrips(); err != nil {
		cancel()
		_ = db.Close()
		return nil, fmt.Errorf("recovering trips: %w", err)
	}

	store.MemoryStore.OnChange(store.mirror)

	go store.writerLoop()
	store.startMaintenance(ctx)

	return store, nil
}

// mirror is registered as the first change listener so that every mutation
// of the embedded memory store is queued for persistence.
func (s *SQLStore) mirror(t trip.Trip) {
	s.sendWrite(writeOp{
		opType: "trip",
		tripID: t.ID,
		trip:   &t,
	})
}

func (s *SQLStore) sendWrite(op writeOp) {
	if s.closed.Load() {
		return
	}
	defer func() { _ = recover() }()
	select {
	case s.writeChan <- op:
	default:
		s.droppedWrites.Add(1)
		slog.Warn("write channel full, dropped write", "trip", op.tripID, "type", op.opType)
	}
}

// DroppedWrites returns how many writes were dropped because the writer
// could not keep up.
func (s *SQLStore) DroppedWrites() int64 {
	return s.droppedWrites.Load()
}

// Close stops maintenance, drains pending writes and closes the database.
func (s *SQLStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.cancelMaint()
	select {
	case <-s.maintenanceDone:
	case <-time.After(30 * time.Second):
		slog.Warn("maintenance goroutine did not stop within 30s")
	}

	close(s.writeChan)

	select {
	case <-s.doneChan:
	case <-time.After(drainTimeout):
		slog.Error("failed to drain writes in time, data may be lost", "timeout", drainTimeout)
	}

	return s.db.Close()
}

func (s *SQLStore) writerLoop() {
	defer close(s.doneChan)

	batch := make([]writeOp, 0, batchSize)
	flushTimer := time.NewTimer(flushInterval)
	defer flushTimer.Stop()

	for {
		select {
		case op, ok := <-s.writeChan:
			if !ok {
				if len(batch) > 0 {
					s.flushBatch(batch)
				}
				return
			}

			batch = append(batch, op)

			if len(batch) >= batchSize {
				s.flushBatch(batch)
				batch = batch[:0]
				flushTimer.Reset(flushInterval)
			}

		case <-flushTimer.C:
			if len(batch) > 0 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
			flushTimer.Reset(flushInterval)
		}
	}
}

func (s *SQLStore) flushBatch(batch []writeOp) {
	tx, err := s.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "err", err)
		return
	}
	defer func() { _ = tx.Rollback() }()

	for i, op := range batch {
		if err := s.executeOpIsolated(tx, i, op); err != nil {
			slog.Error("failed to execute write op", "type", op.opType, "trip", op.tripID, "err", err)
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "err", err)
	}
}

// executeOpIsolated runs op inside its own savepoint. A failed op is rolled
// back alone, so the rest of the batch still commits even on Postgres,
// where any error otherwise aborts the whole transaction.
func (s *SQLStore) executeOpIsolated(tx *sql.Tx, i int, op writeOp) error {
	sp := fmt.Sprintf("write_op_%d", i)
	if _, err := tx.Exec("SAVEPOINT " + sp); err != nil {
		return fmt.Errorf("creating savepoint: %w", err)
	}

	opErr := s.executeOp(tx, op)
	if opErr != nil {
		if _, err := tx.Exec("ROLLBACK TO SAVEPOINT " + sp); err != nil {
			return fmt.Errorf("%w (rollback to savepoint failed: %v)", opErr, err)
		}
	}
	if _, err := tx.Exec("RELEASE SAVEPOINT " + sp); err != nil && opErr == nil {
		return fmt.Errorf("releasing savepoint: %w", err)
	}
	return opErr
}

func (s *SQLStore) executeOp(tx *sql.Tx, op writeOp) error {
	switch op.opType {
	case "trip":
		return s.writeTrip(tx, op.trip)
	default:
		return fmt.Errorf("unknown write op %q", op.opType)
	}
}

func (s *SQLStore) writeTrip(tx *sql.Tx, t *trip.Trip) error {
	_, err := tx.Exec(s.dialect.rebind(`
		INSERT INTO trips (trip_id, name, monitoring, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (trip_id) DO UPDATE SET
			name = excluded.name,
			monitoring = excluded.monitoring,
			updated_at = excluded.updated_at
	`), t.ID, t.Name, boolToInt(t.Monitoring), formatTime(t.StartedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upserting trip: %w", err)
	}

	for _, a := range t.Alerts {
		if err := s.writeAlert(tx, t.ID, a); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) writeAlert(tx *sql.Tx, tripID string, a alerts.Alert) error {
	_, err := tx.Exec(s.dialect.rebind(`
		INSERT INTO alerts (trip_id, alert_id, type, message, dismissed, raised_at, dismissed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (trip_id, alert_id) DO UPDATE SET
			type = excluded.type,
			message = excluded.message,
			dismissed = excluded.dismissed,
			raised_at = excluded.raised_at,
			dismissed_at = excluded.dismissed_at
	`), tripID, a.ID, string(a.Type), a.Message, boolToInt(a.Dismissed),
		formatTime(a.RaisedAt), formatTime(a.DismissedAt))
	if err != nil {
		return fmt.Errorf("upserting alert %s: %w", a.ID, err)
	}
	return nil
}
