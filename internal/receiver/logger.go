package receiver

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// Logger provides structured debug logging for the receiver.
// Implementations must be safe for concurrent use.
type Logger interface {
	// LogCommandEvent logs one extracted lifecycle event. kind is
	// "started" or "completed".
	LogCommandEvent(kind, correlationID, command string, ts time.Time)
}

// NopLogger discards all log output. This is the default when debug logging
// is not enabled, and has zero allocation overhead.
type NopLogger struct{}

// LogCommandEvent is a no-op.
func (NopLogger) LogCommandEvent(string, string, string, time.Time) {}

// logEntry is the JSON structure written by FileLogger.
type logEntry struct {
	Timestamp     string `json:"ts"`
	Kind          string `json:"kind"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Command       string `json:"command,omitempty"`
}

// FileLogger writes structured JSON debug output to an io.Writer.
// Each line is a complete JSON object (JSONL format).
type FileLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewFileLogger creates a FileLogger that writes to the given writer.
func NewFileLogger(w io.Writer) *FileLogger {
	return &FileLogger{w: w}
}

// LogCommandEvent writes a JSON line for one extracted lifecycle event.
// Serialisation errors are silently dropped to avoid disrupting ingest.
func (l *FileLogger) LogCommandEvent(kind, correlationID, command string, ts time.Time) {
	if ts.IsZero() {
		ts = time.Now()
	}

	entry := logEntry{
		Timestamp:     ts.UTC().Format(time.RFC3339Nano),
		Kind:          kind,
		CorrelationID: correlationID,
		Command:       command,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s\n", data)
}
