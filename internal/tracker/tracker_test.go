package tracker

import (
	"testing"
	"time"

	"github.com/nixlim/cc-cmd/internal/record"
)

func TestTracker_PairsByCorrelationID(t *testing.T) {
	log := record.NewLog()
	tr := New(log)

	tr.CommandStarted("call-1", "git status")
	tr.CommandStarted("call-2", "pytest -v")
	tr.CommandCompleted("call-2", "", 2000, false, false)
	tr.CommandCompleted("call-1", "", 40, false, false)

	snap := log.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 records, got %d", len(snap))
	}
	if snap[0].Command != "pytest -v" || snap[0].EstimatedTokens != 500 {
		t.Errorf("first record: %+v", snap[0])
	}
	if snap[1].Command != "git status" || snap[1].EstimatedTokens != 10 {
		t.Errorf("second record: %+v", snap[1])
	}
	if tr.PendingCount() != 0 {
		t.Errorf("pending = %d, want 0", tr.PendingCount())
	}
}

func TestTracker_OrphanCompletionUsesFallback(t *testing.T) {
	log := record.NewLog()
	tr := New(log)

	tr.CommandCompleted("never-started", "make build", 100, false, true)

	snap := log.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 record, got %d", len(snap))
	}
	if snap[0].Command != "make build" {
		t.Errorf("command = %q, want fallback text", snap[0].Command)
	}
	if !snap[0].IsError {
		t.Error("IsError flag lost")
	}
}

func TestTracker_OrphanCompletionWithoutFallbackUsesSentinel(t *testing.T) {
	log := record.NewLog()
	tr := New(log)

	tr.CommandCompleted("never-started", "", 8, true, false)

	snap := log.Snapshot()
	if snap[0].Command != record.UnknownCommand {
		t.Errorf("command = %q, want %q", snap[0].Command, record.UnknownCommand)
	}
	if !snap[0].Truncated {
		t.Error("Truncated flag lost")
	}
}

func TestTracker_EmptyCorrelationIDStillTracked(t *testing.T) {
	log := record.NewLog()
	tr := New(log)

	tr.CommandStarted("", "ls -la")
	if tr.PendingCount() != 1 {
		t.Errorf("pending = %d, want 1", tr.PendingCount())
	}
}

func TestTracker_PrunesStalePending(t *testing.T) {
	log := record.NewLog()
	tr := New(log)

	current := time.Now()
	tr.now = func() time.Time { return current }

	tr.CommandStarted("old", "sleep 9999")
	current = current.Add(pendingHorizon + time.Minute)
	tr.CommandStarted("fresh", "git status")

	if tr.PendingCount() != 1 {
		t.Errorf("pending = %d, want 1 (stale call pruned)", tr.PendingCount())
	}

	// The pruned call's completion now takes the orphan path.
	tr.CommandCompleted("old", "", 40, false, false)
	if log.Snapshot()[0].Command != record.UnknownCommand {
		t.Errorf("pruned completion command = %q, want sentinel", log.Snapshot()[0].Command)
	}
}
