// Package report provides the read-only aggregation views over the record
// log: a grouped per-category summary, a chronological listing, and a top-N
// ranking. All functions are pure computations over a snapshot; nothing here
// mutates or filters the underlying sequence.
package report

import (
	"sort"

	"github.com/nixlim/cc-cmd/internal/classify"
	"github.com/nixlim/cc-cmd/internal/record"
)

// TopLimit caps the top-ranking view.
const TopLimit = 10

// maxExamples caps the per-category example commands kept for display.
const maxExamples = 3

// exampleDisplayLen is the display truncation length for example commands.
// Truncation is cosmetic only; grouping always uses the full command text.
const exampleDisplayLen = 60

// CategorySummary aggregates all records classified into one category.
type CategorySummary struct {
	Name        string
	Count       int
	TotalTokens int
	TotalChars  int
	Examples    []string
}

// Summary is the grouped view: categories ranked by total estimated tokens
// descending, ties kept in first-encounter order.
type Summary struct {
	Categories  []CategorySummary
	Count       int
	TotalTokens int
	TotalChars  int
}

// Percent returns the share of the grand token total held by tokens, as a
// percentage. Defined as 0 (not NaN) when the grand total is zero.
func (s Summary) Percent(tokens int) float64 {
	if s.TotalTokens == 0 {
		return 0
	}
	return 100 * float64(tokens) / float64(s.TotalTokens)
}

// Summarize partitions records by category and computes per-category and
// grand totals. The second return value is false when there is nothing to
// report: an empty sequence, or a sequence whose grand token total is zero,
// short-circuits before aggregation.
func Summarize(records []record.Record, rules classify.Rules) (Summary, bool) {
	var grand int
	for i := range records {
		grand += records[i].EstimatedTokens
	}
	if len(records) == 0 || grand == 0 {
		return Summary{}, false
	}

	index := make(map[string]int)
	s := Summary{TotalTokens: grand}

	for i := range records {
		r := &records[i]
		name := classify.Classify(r.Command, rules)

		idx, seen := index[name]
		if !seen {
			idx = len(s.Categories)
			index[name] = idx
			s.Categories = append(s.Categories, CategorySummary{Name: name})
		}

		cat := &s.Categories[idx]
		cat.Count++
		cat.TotalTokens += r.EstimatedTokens
		cat.TotalChars += r.OutputChars
		if len(cat.Examples) < maxExamples {
			cat.Examples = append(cat.Examples, truncateDisplay(r.Command, exampleDisplayLen))
		}

		s.Count++
		s.TotalChars += r.OutputChars
	}

	// Stable: equal-token categories keep first-encounter order.
	sort.SliceStable(s.Categories, func(i, j int) bool {
		return s.Categories[i].TotalTokens > s.Categories[j].TotalTokens
	})

	return s, true
}

// Chronological returns the records in arrival order. The slice is a copy;
// callers may annotate or truncate it freely.
func Chronological(records []record.Record) []record.Record {
	out := make([]record.Record, len(records))
	copy(out, records)
	return out
}

// Top returns up to TopLimit records ranked by estimated tokens descending.
// Ties keep arrival order.
func Top(records []record.Record) []record.Record {
	out := make([]record.Record, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EstimatedTokens > out[j].EstimatedTokens
	})

	if len(out) > TopLimit {
		out = out[:TopLimit]
	}
	return out
}

func truncateDisplay(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
