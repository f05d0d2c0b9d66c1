package events

import "sync"

// RingBuffer keeps the most recent feed entries up to a fixed capacity.
// Adding to a full buffer evicts the oldest entry. Safe for concurrent use.
type RingBuffer struct {
	mu    sync.RWMutex
	items []FormattedEvent
	head  int // oldest entry
	count int
}

// NewRingBuffer creates a buffer holding at most capacity entries. Values
// below 1 are clamped to 1.
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{items: make([]FormattedEvent, max(capacity, 1))}
}

// Add appends e, evicting the oldest entry when full.
func (rb *RingBuffer) Add(e FormattedEvent) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	size := len(rb.items)
	if rb.count < size {
		rb.items[(rb.head+rb.count)%size] = e
		rb.count++
		return
	}
	rb.items[rb.head] = e
	rb.head = (rb.head + 1) % size
}

// ListAll returns every entry, oldest first.
func (rb *RingBuffer) ListAll() []FormattedEvent {
	return rb.filter(func(FormattedEvent) bool { return true })
}

// ListByTrip returns the entries for tripID, oldest first.
func (rb *RingBuffer) ListByTrip(tripID string) []FormattedEvent {
	return rb.filter(func(e FormattedEvent) bool { return e.TripID == tripID })
}

// ListByKind returns the entries of the given kind, oldest first.
func (rb *RingBuffer) ListByKind(kind Kind) []FormattedEvent {
	return rb.filter(func(e FormattedEvent) bool { return e.Kind == kind })
}

// Latest returns up to n of the most recent entries, newest first.
func (rb *RingBuffer) Latest(n int) []FormattedEvent {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	n = min(n, rb.count)
	if n <= 0 {
		return nil
	}
	size := len(rb.items)
	result := make([]FormattedEvent, n)
	for i := range n {
		result[i] = rb.items[(rb.head+rb.count-1-i)%size]
	}
	return result
}

// Len returns the number of stored entries.
func (rb *RingBuffer) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}

// Cap returns the buffer capacity.
func (rb *RingBuffer) Cap() int {
	return len(rb.items)
}

func (rb *RingBuffer) filter(keep func(FormattedEvent) bool) []FormattedEvent {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	var result []FormattedEvent
	size := len(rb.items)
	for i := range rb.count {
		e := rb.items[(rb.head+i)%size]
		if keep(e) {
			result = append(result, e)
		}
	}
	return result
}
