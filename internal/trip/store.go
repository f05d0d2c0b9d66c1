package trip

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nixlim/tripwatch/internal/alerts"
)

var (
	ErrTripNotFound  = errors.New("trip not found")
	ErrAlertNotFound = errors.New("alert not found")
)

// Store is the interface for trip state. All methods must be thread-safe.
type Store interface {
	// StartMonitoring turns monitoring on for the trip, creating it if
	// needed. A non-empty name replaces the stored one.
	StartMonitoring(tripID, name string)

	// StopMonitoring turns monitoring off for an existing trip.
	StopMonitoring(tripID string) error

	// AddAlert records an alert under a.TripID, creating the trip if
	// needed. An alert whose ID is already known replaces the stored one.
	AddAlert(a alerts.Alert)

	// DismissAlert marks an alert dismissed. Dismissing twice is a no-op.
	DismissAlert(tripID, alertID string) error

	// GetTrip returns a snapshot of the trip, or nil if it does not exist.
	GetTrip(tripID string) *Trip

	// ListTrips returns snapshots of all trips sorted by start time.
	ListTrips() []Trip

	// OnChange registers a listener called after every mutation.
	OnChange(fn ChangeListener)

	// OnRemove registers a listener called for every trip the store drops,
	// for example when retention pruning removes finished trips.
	OnRemove(fn RemoveListener)

	// DroppedWrites returns the number of persistence writes that were
	// dropped. Always 0 for stores without persistence.
	DroppedWrites() int64

	// Close releases resources held by the store.
	Close() error
}

// ChangeListener is invoked after a trip is mutated with a snapshot of the
// trip. Listeners run outside the store lock, on the mutating goroutine and
// in the order the mutations were applied. They must not block and must not
// mutate the store.
type ChangeListener func(t Trip)

// RemoveListener is invoked with the ID of a trip the store dropped. The
// same ordering and blocking rules as ChangeListener apply.
type RemoveListener func(tripID string)

// MemoryStore is a thread-safe in-memory implementation of Store.
type MemoryStore struct {
	mu              sync.RWMutex
	trips           map[string]*Trip
	listeners       []ChangeListener
	removeListeners []RemoveListener
	now             func() time.Time

	// Listener dispatch is serialized by ticket. A ticket is taken under mu
	// when a mutation is applied, so tickets follow mutation order, and
	// dispatch for ticket n waits until every earlier ticket is done.
	nextTicket   uint64
	dispatchMu   sync.Mutex
	dispatchCond *sync.Cond
	served       uint64
}

// NewMemoryStore creates a new empty MemoryStore ready for use.
func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		trips: make(map[string]*Trip),
		now:   time.Now,
	}
	ms.dispatchCond = sync.NewCond(&ms.dispatchMu)
	return ms
}

// OnChange registers a listener called after every mutation.
func (ms *MemoryStore) OnChange(fn ChangeListener) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.listeners = append(ms.listeners, fn)
}

// OnRemove registers a listener called for every trip dropped by Prune.
func (ms *MemoryStore) OnRemove(fn RemoveListener) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.removeListeners = append(ms.removeListeners, fn)
}

// takeTicket reserves the next dispatch slot. Caller must hold ms.mu
// (write lock).
func (ms *MemoryStore) takeTicket() uint64 {
	ticket := ms.nextTicket
	ms.nextTicket++
	return ticket
}

// dispatch waits for every earlier ticket to finish, runs fn and releases
// the next ticket. fn runs without ms.mu held.
func (ms *MemoryStore) dispatch(ticket uint64, fn func()) {
	ms.dispatchMu.Lock()
	for ms.served != ticket {
		ms.dispatchCond.Wait()
	}
	ms.dispatchMu.Unlock()

	defer func() {
		ms.dispatchMu.Lock()
		ms.served++
		ms.dispatchCond.Broadcast()
		ms.dispatchMu.Unlock()
	}()
	fn()
}

// getOrCreateTrip returns the existing trip or creates a new one.
// Caller must hold ms.mu (write lock).
func (ms *MemoryStore) getOrCreateTrip(tripID string, at time.Time) *Trip {
	t, ok := ms.trips[tripID]
	if !ok {
		t = &Trip{ID: tripID, StartedAt: at, UpdatedAt: at}
		ms.trips[tripID] = t
	}
	return t
}

// mutate applies fn to the trip under the write lock and then notifies
// listeners with the resulting snapshot.
func (ms *MemoryStore) mutate(tripID string, create bool, fn func(t *Trip) error) error {
	ms.mu.Lock()
	now := ms.now()
	var t *Trip
	if create {
		t = ms.getOrCreateTrip(tripID, now)
	} else {
		var ok bool
		if t, ok = ms.trips[tripID]; !ok {
			ms.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrTripNotFound, tripID)
		}
	}
	if err := fn(t); err != nil {
		ms.mu.Unlock()
		return err
	}
	t.UpdatedAt = now
	snap := t.clone()
	listeners := ms.listeners
	ticket := ms.takeTicket()
	ms.mu.Unlock()

	ms.dispatch(ticket, func() {
		for _, fn := range listeners {
			fn(snap)
		}
	})
	return nil
}

// StartMonitoring turns monitoring on for tripID.
func (ms *MemoryStore) StartMonitoring(tripID, name string) {
	_ = ms.mutate(tripID, true, func(t *Trip) error {
		t.Monitoring = true
		if name != "" {
			t.Name = name
		}
		return nil
	})
}

// StopMonitoring turns monitoring off for tripID.
func (ms *MemoryStore) StopMonitoring(tripID string) error {
	return ms.mutate(tripID, false, func(t *Trip) error {
		t.Monitoring = false
		return nil
	})
}

// AddAlert records a under its trip. A zero RaisedAt is set to now.
func (ms *MemoryStore) AddAlert(a alerts.Alert) {
	_ = ms.mutate(a.TripID, true, func(t *Trip) error {
		if a.RaisedAt.IsZero() {
			a.RaisedAt = ms.now()
		}
		for i := range t.Alerts {
			if t.Alerts[i].ID == a.ID {
				t.Alerts[i] = a
				return nil
			}
		}
		t.Alerts = append(t.Alerts, a)
		return nil
	})
}

// DismissAlert marks the alert dismissed so it no longer affects status.
func (ms *MemoryStore) DismissAlert(tripID, alertID string) error {
	return ms.mutate(tripID, false, func(t *Trip) error {
		for i := range t.Alerts {
			if t.Alerts[i].ID != alertID {
				continue
			}
			if !t.Alerts[i].Dismissed {
				t.Alerts[i].Dismissed = true
				t.Alerts[i].DismissedAt = ms.now()
			}
			return nil
		}
		return fmt.Errorf("%w: %s/%s", ErrAlertNotFound, tripID, alertID)
	})
}

// GetTrip returns a snapshot of the trip, or nil.
func (ms *MemoryStore) GetTrip(tripID string) *Trip {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	t, ok := ms.trips[tripID]
	if !ok {
		return nil
	}
	snap := t.clone()
	return &snap
}

// ListTrips returns snapshots of all trips, oldest first, ties broken by ID.
func (ms *MemoryStore) ListTrips() []Trip {
	ms.mu.RLock()
	result := make([]Trip, 0, len(ms.trips))
	for _, t := range ms.trips {
		result = append(result, t.clone())
	}
	ms.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].StartedAt.Before(result[j].StartedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// DroppedWrites always returns 0; MemoryStore does not persist.
func (ms *MemoryStore) DroppedWrites() int64 { return 0 }

// Close is a no-op for MemoryStore.
func (ms *MemoryStore) Close() error { return nil }

// Restore inserts a fully-formed trip without notifying listeners. It is
// used when loading persisted state.
func (ms *MemoryStore) Restore(t Trip) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	c := t.clone()
	ms.trips[t.ID] = &c
}

// Prune drops dismissed alerts dismissed before cutoff and non-monitoring
// trips last updated before cutoff. Change listeners are not notified;
// remove listeners are called once per dropped trip. It returns the number
// of alerts removed and the IDs of the trips removed, sorted.
func (ms *MemoryStore) Prune(cutoff time.Time) (alertsRemoved int, removedTrips []string) {
	ms.mu.Lock()
	for id, t := range ms.trips {
		if !t.Monitoring && t.UpdatedAt.Before(cutoff) {
			delete(ms.trips, id)
			removedTrips = append(removedTrips, id)
			continue
		}
		kept := t.Alerts[:0]
		for _, a := range t.Alerts {
			if a.Dismissed && a.DismissedAt.Before(cutoff) {
				alertsRemoved++
				continue
			}
			kept = append(kept, a)
		}
		t.Alerts = kept
	}
	listeners := ms.removeListeners
	ticket := ms.takeTicket()
	ms.mu.Unlock()

	sort.Strings(removedTrips)
	ms.dispatch(ticket, func() {
		for _, id := range removedTrips {
			for _, fn := range listeners {
				fn(id)
			}
		}
	})
	return alertsRemoved, removedTrips
}
