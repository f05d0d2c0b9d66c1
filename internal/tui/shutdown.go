package tui

import (
	"context"
	"time"
)

// ShutdownManager coordinates graceful shutdown of tripwatch components:
// receivers stop first so no new alerts arrive, then the store and
// notifiers are released.
type ShutdownManager struct {
	// DrainTimeout bounds how long receivers may take to finish in-flight
	// requests.
	DrainTimeout time.Duration

	// StopReceivers stops the OTLP receivers from accepting new exports.
	StopReceivers func(ctx context.Context) error

	// Cleanup releases everything else (store, notifiers, log files).
	Cleanup func()
}

// NewShutdownManager creates a ShutdownManager with a 5-second drain timeout.
func NewShutdownManager() *ShutdownManager {
	return &ShutdownManager{
		DrainTimeout: 5 * time.Second,
	}
}

// Shutdown stops receivers, waiting up to DrainTimeout, and then runs
// Cleanup. The receiver error, if any, is returned after cleanup has run.
func (sm *ShutdownManager) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), sm.DrainTimeout)
	defer cancel()

	var err error
	if sm.StopReceivers != nil {
		err = sm.StopReceivers(ctx)
	}

	if sm.Cleanup != nil {
		sm.Cleanup()
	}

	return err
}
