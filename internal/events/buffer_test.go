package events

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func makeEvent(tripID string, kind Kind, text string) FormattedEvent {
	return FormattedEvent{
		TripID:    tripID,
		Kind:      kind,
		Text:      text,
		Timestamp: time.Now(),
	}
}

func TestEventBuffer_Eviction(t *testing.T) {
	buf := NewRingBuffer(3)

	// Fill the buffer.
	buf.Add(makeEvent("trip-1", KindAlert, "event-1"))
	buf.Add(makeEvent("trip-1", KindAlert, "event-2"))
	buf.Add(makeEvent("trip-1", KindAlert, "event-3"))

	if buf.Len() != 3 {
		t.Fatalf("expected len=3, got %d", buf.Len())
	}

	// Add one more; oldest (event-1) should be evicted.
	buf.Add(makeEvent("trip-1", KindAlert, "event-4"))

	if buf.Len() != 3 {
		t.Fatalf("expected len=3 after eviction, got %d", buf.Len())
	}

	all := buf.ListAll()
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}

	// Verify chronological order: event-2, event-3, event-4.
	expectedOrder := []string{"event-2", "event-3", "event-4"}
	for i, expected := range expectedOrder {
		if all[i].Text != expected {
			t.Errorf("position %d: expected %q, got %q", i, expected, all[i].Text)
		}
	}

	// Add two more; event-2 and event-3 should be evicted.
	buf.Add(makeEvent("trip-1", KindAlert, "event-5"))
	buf.Add(makeEvent("trip-1", KindAlert, "event-6"))

	all = buf.ListAll()
	expectedOrder = []string{"event-4", "event-5", "event-6"}
	for i, expected := range expectedOrder {
		if all[i].Text != expected {
			t.Errorf("position %d: expected %q, got %q", i, expected, all[i].Text)
		}
	}
}

func TestEventBuffer_CapacityOne(t *testing.T) {
	buf := NewRingBuffer(1)

	buf.Add(makeEvent("trip-1", KindAlert, "first"))
	if buf.Len() != 1 {
		t.Fatalf("expected len=1, got %d", buf.Len())
	}

	all := buf.ListAll()
	if all[0].Text != "first" {
		t.Errorf("expected 'first', got %q", all[0].Text)
	}

	// Adding another evicts the first.
	buf.Add(makeEvent("trip-1", KindAlert, "second"))
	if buf.Len() != 1 {
		t.Fatalf("expected len=1, got %d", buf.Len())
	}

	all = buf.ListAll()
	if all[0].Text != "second" {
		t.Errorf("expected 'second', got %q", all[0].Text)
	}
}

func TestEventBuffer_Empty(t *testing.T) {
	buf := NewRingBuffer(10)

	all := buf.ListAll()
	if all != nil {
		t.Errorf("expected nil for empty buffer, got %v", all)
	}
	if buf.Len() != 0 {
		t.Errorf("expected len=0, got %d", buf.Len())
	}
}

func TestEventBuffer_ListByTrip(t *testing.T) {
	buf := NewRingBuffer(10)

	buf.Add(makeEvent("trip-1", KindAlert, "trip1-event-1"))
	buf.Add(makeEvent("trip-2", KindAlert, "trip2-event-1"))
	buf.Add(makeEvent("trip-1", KindMonitoringStart, "trip1-event-2"))
	buf.Add(makeEvent("trip-3", KindStatusChange, "trip3-event-1"))
	buf.Add(makeEvent("trip-2", KindAlert, "trip2-event-2"))

	trip1Events := buf.ListByTrip("trip-1")
	if len(trip1Events) != 2 {
		t.Fatalf("expected 2 events for trip-1, got %d", len(trip1Events))
	}
	if trip1Events[0].Text != "trip1-event-1" {
		t.Errorf("expected 'trip1-event-1', got %q", trip1Events[0].Text)
	}
	if trip1Events[1].Text != "trip1-event-2" {
		t.Errorf("expected 'trip1-event-2', got %q", trip1Events[1].Text)
	}

	trip2Events := buf.ListByTrip("trip-2")
	if len(trip2Events) != 2 {
		t.Fatalf("expected 2 events for trip-2, got %d", len(trip2Events))
	}

	// Unknown trip.
	trip4Events := buf.ListByTrip("trip-4")
	if len(trip4Events) != 0 {
		t.Errorf("expected 0 events for trip-4, got %d", len(trip4Events))
	}
}

func TestEventBuffer_ListByKind(t *testing.T) {
	buf := NewRingBuffer(10)

	buf.Add(makeEvent("trip-1", KindAlert, "alert-1"))
	buf.Add(makeEvent("trip-1", KindMonitoringStart, "start-1"))
	buf.Add(makeEvent("trip-2", KindAlert, "alert-2"))
	buf.Add(makeEvent("trip-2", KindStatusChange, "change-1"))

	alertEvents := buf.ListByKind(KindAlert)
	if len(alertEvents) != 2 {
		t.Fatalf("expected 2 alert events, got %d", len(alertEvents))
	}

	starts := buf.ListByKind(KindMonitoringStart)
	if len(starts) != 1 {
		t.Fatalf("expected 1 monitoring_start event, got %d", len(starts))
	}

	stops := buf.ListByKind(KindMonitoringStop)
	if len(stops) != 0 {
		t.Errorf("expected 0 monitoring_stop events, got %d", len(stops))
	}
}

func TestEventBuffer_PartialFill(t *testing.T) {
	buf := NewRingBuffer(5)

	buf.Add(makeEvent("trip-1", KindAlert, "event-1"))
	buf.Add(makeEvent("trip-1", KindAlert, "event-2"))

	if buf.Len() != 2 {
		t.Errorf("expected len=2, got %d", buf.Len())
	}
	if buf.Cap() != 5 {
		t.Errorf("expected cap=5, got %d", buf.Cap())
	}

	all := buf.ListAll()
	if len(all) != 2 {
		t.Fatalf("expected 2 events, got %d", len(all))
	}
	if all[0].Text != "event-1" || all[1].Text != "event-2" {
		t.Error("events not in expected order")
	}
}

func TestEventBuffer_WrapAround(t *testing.T) {
	buf := NewRingBuffer(3)

	// Fill and wrap around multiple times.
	for i := 0; i < 10; i++ {
		buf.Add(makeEvent("trip-1", KindAlert, fmt.Sprintf("event-%d", i)))
	}

	all := buf.ListAll()
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}

	// Should contain events 7, 8, 9.
	for i, expected := range []string{"event-7", "event-8", "event-9"} {
		if all[i].Text != expected {
			t.Errorf("position %d: expected %q, got %q", i, expected, all[i].Text)
		}
	}
}

func TestEventBuffer_ConcurrentAccess(t *testing.T) {
	buf := NewRingBuffer(100)
	var wg sync.WaitGroup

	// Concurrent writers.
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			buf.Add(makeEvent(
				fmt.Sprintf("trip-%d", n%5),
				KindAlert,
				fmt.Sprintf("event-%d", n),
			))
		}(i)
	}

	// Concurrent readers.
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf.ListAll()
			buf.ListByTrip("trip-0")
			buf.ListByKind(KindAlert)
			buf.Len()
		}()
	}

	wg.Wait()

	if buf.Len() != 50 {
		t.Errorf("expected len=50, got %d", buf.Len())
	}
}

func TestEventBuffer_LargeEviction(t *testing.T) {
	buf := NewRingBuffer(1000)

	// Add 1001 events; first should be evicted.
	for i := 0; i < 1001; i++ {
		buf.Add(makeEvent("trip-1", KindAlert, fmt.Sprintf("event-%d", i)))
	}

	if buf.Len() != 1000 {
		t.Fatalf("expected len=1000, got %d", buf.Len())
	}

	all := buf.ListAll()
	// First event should be event-1 (event-0 was evicted).
	if all[0].Text != "event-1" {
		t.Errorf("expected first event to be 'event-1', got %q", all[0].Text)
	}
	// Last event should be event-1000.
	if all[999].Text != "event-1000" {
		t.Errorf("expected last event to be 'event-1000', got %q", all[999].Text)
	}
}

func TestEventBuffer_ZeroCapacity(t *testing.T) {
	// Zero capacity should be clamped to 1.
	buf := NewRingBuffer(0)
	if buf.Cap() != 1 {
		t.Errorf("expected cap=1 for zero capacity input, got %d", buf.Cap())
	}

	buf.Add(makeEvent("trip-1", KindAlert, "test"))
	if buf.Len() != 1 {
		t.Errorf("expected len=1, got %d", buf.Len())
	}
}

func TestEventBuffer_Latest(t *testing.T) {
	buf := NewRingBuffer(3)
	for i := 0; i < 5; i++ {
		buf.Add(makeEvent("trip-1", KindAlert, fmt.Sprintf("event-%d", i)))
	}

	latest := buf.Latest(2)
	if len(latest) != 2 {
		t.Fatalf("expected 2 events, got %d", len(latest))
	}
	if latest[0].Text != "event-4" || latest[1].Text != "event-3" {
		t.Errorf("expected newest first, got %q, %q", latest[0].Text, latest[1].Text)
	}

	if got := buf.Latest(10); len(got) != 3 {
		t.Errorf("Latest beyond Len should clamp, got %d", len(got))
	}
	if got := NewRingBuffer(4).Latest(3); got != nil {
		t.Errorf("Latest on empty buffer should be nil, got %v", got)
	}
}
