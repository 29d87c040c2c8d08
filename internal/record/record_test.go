package record

import (
	"sync"
	"testing"
	"time"
)

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		chars int
		want  int
	}{
		{0, 0},
		{1, 1},
		{3, 1},
		{4, 1},
		{5, 2},
		{8, 2},
		{40, 10},
		{2000, 500},
		{-5, 0},
		{10_000_000, 2_500_000},
	}

	for _, tc := range cases {
		if got := EstimateTokens(tc.chars); got != tc.want {
			t.Errorf("EstimateTokens(%d) = %d, want %d", tc.chars, got, tc.want)
		}
	}
}

// ceil(chars/4) must hold across the full supported range, not just the
// handpicked cases above.
func TestEstimateTokens_CeilDivision(t *testing.T) {
	for chars := 0; chars <= 10_000; chars++ {
		want := chars / 4
		if chars%4 != 0 {
			want++
		}
		if got := EstimateTokens(chars); got != want {
			t.Fatalf("EstimateTokens(%d) = %d, want %d", chars, got, want)
		}
	}
}

func TestNew_DerivesAndClamps(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	r := New(ts, "git status", 40, false, false)
	if r.EstimatedTokens != 10 {
		t.Errorf("EstimatedTokens = %d, want 10", r.EstimatedTokens)
	}
	if r.Command != "git status" || !r.Timestamp.Equal(ts) {
		t.Errorf("unexpected record: %+v", r)
	}

	neg := New(ts, "x", -10, false, false)
	if neg.OutputChars != 0 || neg.EstimatedTokens != 0 {
		t.Errorf("negative chars not clamped: %+v", neg)
	}

	anon := New(ts, "", 8, true, true)
	if anon.Command != UnknownCommand {
		t.Errorf("empty command: got %q, want %q", anon.Command, UnknownCommand)
	}
	if !anon.Truncated || !anon.IsError {
		t.Errorf("flags not carried: %+v", anon)
	}
}

func TestLog_AppendSnapshotOrder(t *testing.T) {
	l := NewLog()
	ts := time.Now()

	l.Append(New(ts, "git status", 40, false, false))
	l.Append(New(ts, "pytest -v", 2000, false, false))
	l.Append(New(ts, "echo hi", 8, false, false))

	snap := l.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 records, got %d", len(snap))
	}
	if snap[0].Command != "git status" || snap[2].Command != "echo hi" {
		t.Errorf("arrival order not preserved: %+v", snap)
	}

	// The snapshot is a copy: mutating it must not reach the log.
	snap[0].Command = "mutated"
	if l.Snapshot()[0].Command != "git status" {
		t.Error("Snapshot returned a view into internal state")
	}
}

func TestLog_ReplaceAndClear(t *testing.T) {
	l := NewLog()
	l.Append(New(time.Now(), "make", 100, false, false))

	restored := []Record{
		New(time.Now(), "git log", 300, false, false),
		New(time.Now(), "go test ./...", 900, true, false),
	}
	l.Replace(restored)
	if l.Len() != 2 {
		t.Fatalf("after Replace: len = %d, want 2", l.Len())
	}
	if l.Snapshot()[1].Command != "go test ./..." {
		t.Errorf("Replace did not preserve order: %+v", l.Snapshot())
	}

	l.Clear()
	if l.Len() != 0 {
		t.Errorf("after Clear: len = %d, want 0", l.Len())
	}
	if l.Snapshot() != nil {
		t.Errorf("after Clear: snapshot = %+v, want nil", l.Snapshot())
	}
}

func TestLog_OnAppendListener(t *testing.T) {
	l := NewLog()

	var got []string
	l.OnAppend(func(r Record) {
		got = append(got, r.Command)
	})

	l.Append(New(time.Now(), "git status", 10, false, false))
	l.Append(New(time.Now(), "make", 20, false, false))

	if len(got) != 2 || got[0] != "git status" || got[1] != "make" {
		t.Errorf("listener calls = %v", got)
	}
}

// Reporting may run concurrently with appends; the race detector keeps this
// honest.
func TestLog_ConcurrentReadersDuringAppend(t *testing.T) {
	l := NewLog()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			l.Append(New(time.Now(), "git status", i, false, false))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = l.Snapshot()
			_ = l.Len()
		}
	}()

	wg.Wait()
	if l.Len() != 500 {
		t.Errorf("len = %d, want 500", l.Len())
	}
}
