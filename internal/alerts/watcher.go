package alerts

import (
	"sync"
	"time"
)

// StatusWatcher remembers the last status seen for each trip and reports
// transitions. A trip that has never been observed is treated as safe, so
// the first observation only counts as a change when it is not safe.
type StatusWatcher struct {
	mu   sync.Mutex
	last map[string]Status
	now  func() time.Time
}

// NewStatusWatcher returns an empty watcher.
func NewStatusWatcher() *StatusWatcher {
	return &StatusWatcher{
		last: make(map[string]Status),
		now:  time.Now,
	}
}

// Observe records status for tripID and returns the change, if any.
func (w *StatusWatcher) Observe(tripID string, status Status) (StatusChange, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev, seen := w.last[tripID]
	if !seen {
		prev = StatusSafe
	}
	w.last[tripID] = status
	if prev == status {
		return StatusChange{}, false
	}
	return StatusChange{TripID: tripID, From: prev, To: status, At: w.now()}, true
}

// Forget drops tracking for tripID.
func (w *StatusWatcher) Forget(tripID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.last, tripID)
}

// MultiNotifier fans a change out to several notifiers.
type MultiNotifier []Notifier

// Notify forwards change to every non-nil notifier.
func (m MultiNotifier) Notify(change StatusChange) {
	for _, n := range m {
		if n != nil {
			n.Notify(change)
		}
	}
}
