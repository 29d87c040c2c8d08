package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/nixlim/cc-cmd/internal/classify"
	"github.com/nixlim/cc-cmd/internal/record"
)

func TestFormatRecord(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rules := classify.DefaultRules()

	ok := FormatRecord(record.New(ts, "git status", 40, false, false), rules)
	if ok.Category != "git" {
		t.Errorf("category = %q, want git", ok.Category)
	}
	if !strings.Contains(ok.Formatted, "[git] git status ✓ 10 tok") {
		t.Errorf("formatted = %q", ok.Formatted)
	}

	failed := FormatRecord(record.New(ts, "pytest -v", 2000, true, true), rules)
	if !strings.Contains(failed.Formatted, "✗") {
		t.Errorf("failure mark missing: %q", failed.Formatted)
	}
	if !strings.Contains(failed.Formatted, "⋯") {
		t.Errorf("truncation mark missing: %q", failed.Formatted)
	}
}

func TestFormatRecord_TruncatesLongCommands(t *testing.T) {
	long := strings.Repeat("x", 200)
	fc := FormatRecord(record.New(time.Now(), long, 4, false, false), classify.DefaultRules())
	if strings.Contains(fc.Formatted, long) {
		t.Error("long command not truncated for display")
	}
	if fc.Command != long {
		t.Error("full command text must be kept on the entry")
	}
}

func TestRingBuffer_EvictsOldest(t *testing.T) {
	rb := NewRingBuffer(3)
	for _, cmd := range []string{"a", "b", "c", "d"} {
		rb.Add(FormattedCommand{Command: cmd})
	}

	all := rb.ListAll()
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Command != "b" || all[2].Command != "d" {
		t.Errorf("eviction order wrong: %+v", all)
	}
}

func TestRingBuffer_Recent(t *testing.T) {
	rb := NewRingBuffer(10)
	for _, cmd := range []string{"a", "b", "c", "d"} {
		rb.Add(FormattedCommand{Command: cmd})
	}

	recent := rb.Recent(2)
	if len(recent) != 2 || recent[0].Command != "c" || recent[1].Command != "d" {
		t.Errorf("recent = %+v", recent)
	}
}

func TestRingBuffer_Reset(t *testing.T) {
	rb := NewRingBuffer(4)
	rb.Add(FormattedCommand{Command: "a"})
	rb.Reset()
	if rb.Len() != 0 || rb.ListAll() != nil {
		t.Errorf("reset did not empty buffer: len=%d", rb.Len())
	}
}

func TestRingBuffer_MinimumCapacity(t *testing.T) {
	rb := NewRingBuffer(0)
	if rb.Cap() != 1 {
		t.Errorf("cap = %d, want 1", rb.Cap())
	}
}
