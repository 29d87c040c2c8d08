package record

import "sync"

// Listener is a callback invoked after a record is appended. Listeners are
// called outside the log lock and must not call back into the log in a way
// that acquires the write lock.
type Listener func(r Record)

// Log is the append-only ordered record sequence. Appends are expected from
// a single writer (events are delivered one at a time), but all methods are
// safe for concurrent use so read-only reporting can run alongside ingest.
// Order is arrival order; records are never edited or reordered in place.
type Log struct {
	mu        sync.RWMutex
	records   []Record
	listeners []Listener
}

// NewLog creates an empty Log.
func NewLog() *Log {
	return &Log{}
}

// OnAppend registers a listener that is called after every Append,
// synchronously, outside the lock.
func (l *Log) OnAppend(fn Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Append adds one record to the end of the sequence.
func (l *Log) Append(r Record) {
	l.mu.Lock()
	l.records = append(l.records, r)
	listeners := l.listeners
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(r)
	}
}

// Snapshot returns a copy of the full sequence in arrival order. Callers may
// aggregate over the copy without holding up appends.
func (l *Log) Snapshot() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.records) == 0 {
		return nil
	}
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Replace swaps in a previously saved sequence, e.g. on session restore.
func (l *Log) Replace(records []Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = make([]Record, len(records))
	copy(l.records, records)
}

// Clear empties the entire sequence atomically with respect to readers.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
}

// Len returns the number of records currently in the sequence.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
