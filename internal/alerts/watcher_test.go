package alerts

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusWatcher_Observe(t *testing.T) {
	w := NewStatusWatcher()

	_, changed := w.Observe("trip-1", StatusSafe)
	assert.False(t, changed, "first safe observation is not a change")

	change, changed := w.Observe("trip-1", StatusDeviation)
	require.True(t, changed)
	assert.Equal(t, StatusSafe, change.From)
	assert.Equal(t, StatusDeviation, change.To)
	assert.Equal(t, "trip-1", change.TripID)

	_, changed = w.Observe("trip-1", StatusDeviation)
	assert.False(t, changed, "repeated status is not a change")

	change, changed = w.Observe("trip-2", StatusHighRisk)
	require.True(t, changed, "first non-safe observation is a change")
	assert.Equal(t, StatusSafe, change.From)

	w.Forget("trip-1")
	change, changed = w.Observe("trip-1", StatusDeviation)
	require.True(t, changed)
	assert.Equal(t, StatusSafe, change.From)
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []StatusChange
}

func (r *recordingNotifier) Notify(c StatusChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func TestMultiNotifier(t *testing.T) {
	a, b := &recordingNotifier{}, &recordingNotifier{}
	m := MultiNotifier{a, nil, b}

	m.Notify(StatusChange{TripID: "t", To: StatusHighRisk})

	assert.Len(t, a.changes, 1)
	assert.Len(t, b.changes, 1)
}

type fakeChannel struct {
	mu        sync.Mutex
	published []amqp.Publishing
	keys      []string
	exchange  string
	closed    bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchange = exchange
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher_PublishesChanges(t *testing.T) {
	ch := &fakeChannel{}
	p := newAMQPPublisher("tripwatch.status", ch)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.Notify(StatusChange{TripID: "trip-9", From: StatusDeviation, To: StatusHighRisk, At: at})
	p.Notify(StatusChange{TripID: "trip-9", From: StatusHighRisk, To: StatusSafe, At: at})
	require.NoError(t, p.Close())

	assert.True(t, ch.closed)
	assert.Equal(t, "tripwatch.status", ch.exchange)
	require.Equal(t, []string{"trip.status.high-risk", "trip.status.safe"}, ch.keys)

	var msg statusMessage
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &msg))
	assert.Equal(t, "trip-9", msg.TripID)
	assert.Equal(t, "deviation", msg.From)
	assert.Equal(t, "high-risk", msg.To)
	assert.Equal(t, "application/json", ch.published[0].ContentType)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)

	// Notify after Close must not panic.
	p.Notify(StatusChange{TripID: "late"})
	assert.NoError(t, p.Close())
}
