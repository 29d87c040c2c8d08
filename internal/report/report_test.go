package report

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/nixlim/cc-cmd/internal/classify"
	"github.com/nixlim/cc-cmd/internal/record"
)

func rec(command string, chars int) record.Record {
	return record.New(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), command, chars, false, false)
}

func TestSummarize_EndToEndScenario(t *testing.T) {
	records := []record.Record{
		rec("git status", 40),
		rec("pytest -v", 2000),
		rec("echo hi", 8),
	}

	s, ok := Summarize(records, classify.DefaultRules())
	if !ok {
		t.Fatal("expected data, got no-data outcome")
	}

	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
	if s.TotalTokens != 512 {
		t.Errorf("TotalTokens = %d, want 512", s.TotalTokens)
	}

	wantOrder := []string{"pytest", "git", "other"}
	wantTokens := []int{500, 10, 2}
	wantPct := []float64{97.7, 2.0, 0.4}

	if len(s.Categories) != 3 {
		t.Fatalf("categories = %d, want 3", len(s.Categories))
	}
	for i, cat := range s.Categories {
		if cat.Name != wantOrder[i] {
			t.Errorf("category[%d] = %q, want %q", i, cat.Name, wantOrder[i])
		}
		if cat.TotalTokens != wantTokens[i] {
			t.Errorf("category[%d] tokens = %d, want %d", i, cat.TotalTokens, wantTokens[i])
		}
		gotPct := math.Round(s.Percent(cat.TotalTokens)*10) / 10
		if gotPct != wantPct[i] {
			t.Errorf("category[%d] share = %.1f, want %.1f", i, gotPct, wantPct[i])
		}
	}
}

// Conservation: the sum of per-category token totals always equals the sum
// of per-record estimates.
func TestSummarize_TokenConservation(t *testing.T) {
	records := []record.Record{
		rec("git status", 123),
		rec("git log", 4567),
		rec("pytest", 89),
		rec("npm install", 1000),
		rec("npm ci", 57),
		rec("weird command", 3),
	}

	var want int
	for _, r := range records {
		want += r.EstimatedTokens
	}

	s, ok := Summarize(records, classify.DefaultRules())
	if !ok {
		t.Fatal("expected data")
	}

	var got int
	for _, cat := range s.Categories {
		got += cat.TotalTokens
	}
	if got != want {
		t.Errorf("category token sum = %d, record token sum = %d", got, want)
	}
	if s.TotalTokens != want {
		t.Errorf("grand total = %d, want %d", s.TotalTokens, want)
	}
}

func TestSummarize_StableSortOnTies(t *testing.T) {
	// git and pytest end up with identical totals; git is encountered first
	// and must stay first.
	records := []record.Record{
		rec("git status", 400),
		rec("pytest -q", 400),
		rec("make", 4000),
	}

	s, ok := Summarize(records, classify.DefaultRules())
	if !ok {
		t.Fatal("expected data")
	}

	want := []string{"make", "git", "pytest"}
	for i, cat := range s.Categories {
		if cat.Name != want[i] {
			t.Fatalf("order = %v, want %v", categoryNames(s), want)
		}
	}
}

func TestSummarize_NoData(t *testing.T) {
	if _, ok := Summarize(nil, classify.DefaultRules()); ok {
		t.Error("empty sequence: expected no-data outcome")
	}

	// Records exist but the grand token total is zero.
	zero := []record.Record{rec("git status", 0), rec("make", 0)}
	if _, ok := Summarize(zero, classify.DefaultRules()); ok {
		t.Error("zero grand total: expected no-data outcome")
	}
}

func TestSummarize_ExamplesFirstSeenCapped(t *testing.T) {
	records := []record.Record{
		rec("git status", 4),
		rec("git log", 4),
		rec("git diff", 4),
		rec("git show HEAD", 4),
	}

	s, ok := Summarize(records, classify.DefaultRules())
	if !ok {
		t.Fatal("expected data")
	}
	ex := s.Categories[0].Examples
	if len(ex) != 3 {
		t.Fatalf("examples = %d, want 3", len(ex))
	}
	if ex[0] != "git status" || ex[2] != "git diff" {
		t.Errorf("examples not first-seen: %v", ex)
	}
}

func TestPercent_ZeroGrandTotal(t *testing.T) {
	var s Summary
	if got := s.Percent(100); got != 0 {
		t.Errorf("Percent on zero total = %v, want 0", got)
	}
}

func TestTop_CapAndOrdering(t *testing.T) {
	var records []record.Record
	for i := 1; i <= 15; i++ {
		records = append(records, rec("cmd", i*4))
	}

	top := Top(records)
	if len(top) != TopLimit {
		t.Fatalf("len = %d, want %d", len(top), TopLimit)
	}
	for i := 1; i < len(top); i++ {
		if top[i].EstimatedTokens > top[i-1].EstimatedTokens {
			t.Fatalf("not descending at %d: %d > %d", i, top[i].EstimatedTokens, top[i-1].EstimatedTokens)
		}
	}
	if top[0].EstimatedTokens != 15 {
		t.Errorf("top entry tokens = %d, want 15", top[0].EstimatedTokens)
	}
}

func TestTop_StableTieBreak(t *testing.T) {
	records := []record.Record{
		rec("first", 40),
		rec("second", 40),
		rec("third", 40),
	}

	top := Top(records)
	want := []string{"first", "second", "third"}
	for i, r := range top {
		if r.Command != want[i] {
			t.Fatalf("tie order broken: got %q at %d, want %q", r.Command, i, want[i])
		}
	}
}

func TestTop_DoesNotMutateInput(t *testing.T) {
	records := []record.Record{rec("small", 4), rec("big", 400)}
	_ = Top(records)
	if records[0].Command != "small" {
		t.Error("Top reordered the caller's slice")
	}
}

func TestChronological_PreservesArrivalOrder(t *testing.T) {
	records := []record.Record{rec("a", 4), rec("b", 8), rec("c", 12)}
	out := Chronological(records)
	for i, r := range out {
		if r.Command != records[i].Command {
			t.Fatalf("order changed at %d", i)
		}
	}
}

func TestRenderSummary_Block(t *testing.T) {
	records := []record.Record{
		rec("git status", 40),
		rec("pytest -v", 2000),
		rec("echo hi", 8),
	}

	s, _ := Summarize(records, classify.DefaultRules())
	block := RenderSummary(s, true)

	for _, want := range []string{"pytest", "git", "other", "97.7%", "$ git status"} {
		if !strings.Contains(block, want) {
			t.Errorf("summary block missing %q:\n%s", want, block)
		}
	}
}

func TestRenderLog_NoData(t *testing.T) {
	if got := RenderLog(nil); got != NoData {
		t.Errorf("RenderLog(nil) = %q, want NoData block", got)
	}
}

func categoryNames(s Summary) []string {
	names := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		names[i] = c.Name
	}
	return names
}
