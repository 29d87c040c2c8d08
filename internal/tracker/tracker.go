// Package tracker pairs command lifecycle events into records. A "started"
// event carries a correlation ID and the raw command text; the matching
// "completed" event carries the output size and outcome flags. Pairing never
// fails: an orphaned completion degrades to whatever command text it carries,
// or the unknown-command sentinel.
package tracker

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nixlim/cc-cmd/internal/record"
)

// pendingHorizon is how long a started command waits for its completion
// before being pruned. Commands genuinely running longer than this lose
// their pairing and fall back to the completion's own command text.
const pendingHorizon = 30 * time.Minute

type pendingCall struct {
	command   string
	startedAt time.Time
}

// Tracker correlates started/completed command events and appends one record
// per completed execution to the log.
type Tracker struct {
	mu      sync.Mutex
	log     *record.Log
	pending map[string]pendingCall
	now     func() time.Time
}

// New creates a Tracker appending to the given log.
func New(log *record.Log) *Tracker {
	return &Tracker{
		log:     log,
		pending: make(map[string]pendingCall),
		now:     time.Now,
	}
}

// CommandStarted registers a pending call under the given correlation ID.
// An empty ID gets a generated one so the call can still be pruned; it will
// never be matched by a completion, which is the degraded-but-defined path.
func (t *Tracker) CommandStarted(correlationID, command string) {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending[correlationID] = pendingCall{
		command:   command,
		startedAt: t.now(),
	}
	t.pruneLocked()
}

// CommandCompleted resolves the pending call for the given correlation ID
// and appends the finished record. When no pending call matches, the
// fallback command text (typically carried by the completion event itself)
// is used; when that is empty too, the record carries the unknown sentinel.
func (t *Tracker) CommandCompleted(correlationID, fallbackCommand string, outputChars int, truncated, isError bool) {
	t.mu.Lock()
	command := fallbackCommand
	if call, ok := t.pending[correlationID]; ok {
		command = call.command
		delete(t.pending, correlationID)
	}
	ts := t.now()
	t.mu.Unlock()

	t.log.Append(record.New(ts, command, outputChars, truncated, isError))
}

// PendingCount returns the number of started commands awaiting completion.
func (t *Tracker) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// pruneLocked drops pending calls older than the horizon.
// Caller must hold t.mu.
func (t *Tracker) pruneLocked() {
	cutoff := t.now().Add(-pendingHorizon)
	for id, call := range t.pending {
		if call.startedAt.Before(cutoff) {
			delete(t.pending, id)
		}
	}
}
