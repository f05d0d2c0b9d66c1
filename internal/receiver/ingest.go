// Package receiver accepts OTLP log exports over gRPC and HTTP and turns
// trip log records into store operations.
package receiver

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"

	"github.com/nixlim/tripwatch/internal/alerts"
	"github.com/nixlim/tripwatch/internal/events"
	"github.com/nixlim/tripwatch/internal/trip"
)

// Event names carried in the event.name attribute (or the record body).
const (
	EventMonitoringStart = "trip.monitoring.start"
	EventMonitoringStop  = "trip.monitoring.stop"
	EventAlert           = "trip.alert"
	EventAlertDismiss    = "trip.alert.dismiss"
)

// Attribute keys understood by the receiver.
const (
	AttrTripID       = "trip.id"
	AttrTripName     = "trip.name"
	AttrEventName    = "event.name"
	AttrAlertID      = "alert.id"
	AttrAlertType    = "alert.type"
	AttrAlertMessage = "alert.message"
)

var (
	errMissingTripID  = errors.New("missing trip.id")
	errMissingEvent   = errors.New("missing event.name")
	errMissingAlertID = errors.New("missing alert.id")
)

// Record is a log record flattened to the fields the receiver cares about.
// Resource and record attributes are merged, record values winning.
type Record struct {
	TripID     string
	Event      string
	Attributes map[string]string
	Timestamp  time.Time
}

// Ingester applies decoded OTLP log exports to a trip store.
type Ingester struct {
	store  trip.Store
	sink   events.Sink
	logger Logger
	newID  func() string
	now    func() time.Time
}

// NewIngester creates an Ingester. sink and logger may be nil.
func NewIngester(store trip.Store, sink events.Sink, logger Logger) *Ingester {
	if logger == nil {
		logger = NopLogger{}
	}
	return &Ingester{
		store:  store,
		sink:   sink,
		logger: logger,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// Export applies every record in req and returns the number rejected with
// the first rejection reason.
func (ing *Ingester) Export(req *collogspb.ExportLogsServiceRequest) (rejected int64, firstErr string) {
	for _, rl := range req.GetResourceLogs() {
		resAttrs := attributesToMap(rl.GetResource().GetAttributes())
		for _, sl := range rl.GetScopeLogs() {
			for _, lr := range sl.GetLogRecords() {
				rec := flattenRecord(resAttrs, lr, ing.now)
				if err := ing.apply(rec); err != nil {
					rejected++
					if firstErr == "" {
						firstErr = err.Error()
					}
					ing.logger.LogRecord(rec, err.Error())
					ing.emit(events.FormatRejected(rec.TripID, err.Error(), rec.Timestamp))
					slog.Debug("rejected log record", "trip", rec.TripID, "event", rec.Event, "err", err)
					continue
				}
				ing.logger.LogRecord(rec, "accepted")
			}
		}
	}
	return rejected, firstErr
}

func (ing *Ingester) apply(rec Record) error {
	if rec.TripID == "" {
		return errMissingTripID
	}

	switch rec.Event {
	case "":
		return errMissingEvent

	case EventMonitoringStart:
		ing.store.StartMonitoring(rec.TripID, rec.Attributes[AttrTripName])
		ing.emit(events.FormatMonitoring(rec.TripID, true, rec.Timestamp))

	case EventMonitoringStop:
		if err := ing.store.StopMonitoring(rec.TripID); err != nil {
			return err
		}
		ing.emit(events.FormatMonitoring(rec.TripID, false, rec.Timestamp))

	case EventAlert:
		typ, err := alerts.ParseType(rec.Attributes[AttrAlertType])
		if err != nil {
			return err
		}
		id := rec.Attributes[AttrAlertID]
		if id == "" {
			id = ing.newID()
		}
		a := alerts.Alert{
			ID:       id,
			TripID:   rec.TripID,
			Type:     typ,
			Message:  rec.Attributes[AttrAlertMessage],
			RaisedAt: rec.Timestamp,
		}
		ing.store.AddAlert(a)
		ing.emit(events.FormatAlert(a))

	case EventAlertDismiss:
		id := rec.Attributes[AttrAlertID]
		if id == "" {
			return errMissingAlertID
		}
		if err := ing.store.DismissAlert(rec.TripID, id); err != nil {
			return err
		}
		ing.emit(events.FormatDismiss(rec.TripID, id, rec.Timestamp))

	default:
		return fmt.Errorf("unknown event %q", rec.Event)
	}
	return nil
}

func (ing *Ingester) emit(fe events.FormattedEvent) {
	if ing.sink != nil {
		ing.sink.Add(fe)
	}
}

// flattenRecord merges resource and record attributes and resolves the trip
// id, event name and timestamp.
func flattenRecord(resAttrs map[string]string, lr *logspb.LogRecord, now func() time.Time) Record {
	attrs := make(map[string]string, len(resAttrs)+len(lr.GetAttributes()))
	for k, v := range resAttrs {
		attrs[k] = v
	}
	for k, v := range attributesToMap(lr.GetAttributes()) {
		attrs[k] = v
	}

	rec := Record{
		TripID:     resAttrs[AttrTripID],
		Attributes: attrs,
		Timestamp:  recordTime(lr, now),
	}
	if rec.TripID == "" {
		rec.TripID = attrs[AttrTripID]
	}

	switch {
	case lr.GetEventName() != "":
		rec.Event = lr.GetEventName()
	case attrs[AttrEventName] != "":
		rec.Event = attrs[AttrEventName]
	default:
		rec.Event = lr.GetBody().GetStringValue()
	}
	return rec
}

func recordTime(lr *logspb.LogRecord, now func() time.Time) time.Time {
	if ts := lr.GetTimeUnixNano(); ts > 0 {
		return time.Unix(0, int64(ts))
	}
	if ts := lr.GetObservedTimeUnixNano(); ts > 0 {
		return time.Unix(0, int64(ts))
	}
	return now()
}

// attributesToMap converts OTLP key/value pairs into a string map. Values
// that are not scalars are skipped.
func attributesToMap(kvs []*commonpb.KeyValue) map[string]string {
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		if s, ok := anyValueString(kv.GetValue()); ok {
			m[kv.GetKey()] = s
		}
	}
	return m
}

func anyValueString(v *commonpb.AnyValue) (string, bool) {
	switch val := v.GetValue().(type) {
	case *commonpb.AnyValue_StringValue:
		return val.StringValue, true
	case *commonpb.AnyValue_IntValue:
		return strconv.FormatInt(val.IntValue, 10), true
	case *commonpb.AnyValue_DoubleValue:
		return strconv.FormatFloat(val.DoubleValue, 'f', -1, 64), true
	case *commonpb.AnyValue_BoolValue:
		return strconv.FormatBool(val.BoolValue), true
	}
	return "", false
}
