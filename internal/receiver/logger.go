package receiver

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// Logger records every log record the receiver decodes. Implementations
// must be safe for concurrent use.
type Logger interface {
	// LogRecord logs one decoded record. outcome is "accepted" or the
	// reason the record was rejected.
	LogRecord(r Record, outcome string)
}

// NopLogger discards all records. It is the default when debug logging is
// not enabled.
type NopLogger struct{}

// LogRecord is a no-op.
func (NopLogger) LogRecord(Record, string) {}

// logEntry is one JSONL line written by FileLogger.
type logEntry struct {
	Timestamp  string            `json:"ts"`
	TripID     string            `json:"trip,omitempty"`
	Event      string            `json:"event"`
	Outcome    string            `json:"outcome"`
	Attributes map[string]string `json:"attrs,omitempty"`
}

// FileLogger writes one JSON object per line to an io.Writer.
type FileLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewFileLogger creates a FileLogger that writes to w.
func NewFileLogger(w io.Writer) *FileLogger {
	return &FileLogger{w: w}
}

// LogRecord writes r as a JSON line.
func (l *FileLogger) LogRecord(r Record, outcome string) {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	entry := logEntry{
		Timestamp:  ts.UTC().Format(time.RFC3339Nano),
		TripID:     r.TripID,
		Event:      r.Event,
		Outcome:    outcome,
		Attributes: r.Attributes,
	}

	// Marshal errors are dropped so that debug logging never disrupts ingest.
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s\n", data)
}
