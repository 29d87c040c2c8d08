package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nixlim/cc-cmd/internal/record"
)

// NoData is the block emitted when there is nothing to report. It is an
// outcome, not an error.
const NoData = "No command data recorded yet.\n"

// RenderSummary formats the grouped summary as one pre-formatted text block:
// ranked categories with counts, token totals, output volume, percentage of
// the grand total, and example commands when requested.
func RenderSummary(s Summary, withExamples bool) string {
	var sb strings.Builder

	sb.WriteString("Command usage by category\n")
	fmt.Fprintf(&sb, "%d commands, ~%s tokens, %s of output\n\n",
		s.Count,
		humanize.Comma(int64(s.TotalTokens)),
		humanize.Bytes(uint64(s.TotalChars)),
	)

	fmt.Fprintf(&sb, "%-24s %6s %12s %10s %7s\n", "Category", "Count", "Tokens", "Output", "Share")
	sb.WriteString(strings.Repeat("─", 64))
	sb.WriteByte('\n')

	for _, cat := range s.Categories {
		fmt.Fprintf(&sb, "%-24s %6d %12s %10s %6.1f%%\n",
			truncateDisplay(cat.Name, 24),
			cat.Count,
			humanize.Comma(int64(cat.TotalTokens)),
			humanize.Bytes(uint64(cat.TotalChars)),
			s.Percent(cat.TotalTokens),
		)
		if withExamples {
			for _, ex := range cat.Examples {
				fmt.Fprintf(&sb, "    $ %s\n", ex)
			}
		}
	}

	return sb.String()
}

// RenderLog formats the chronological listing, each record annotated with
// its per-record token and byte figures and flags.
func RenderLog(records []record.Record) string {
	if len(records) == 0 {
		return NoData
	}

	var sb strings.Builder
	sb.WriteString("Command log\n\n")

	for _, r := range records {
		fmt.Fprintf(&sb, "%s  %s tok  %s%s  %s\n",
			r.Timestamp.Format("15:04:05"),
			humanize.Comma(int64(r.EstimatedTokens)),
			flagMark(r),
			humanize.Bytes(uint64(r.OutputChars)),
			truncateDisplay(r.Command, 60),
		)
	}

	return sb.String()
}

// RenderTop formats the top-ranked records by estimated output tokens.
func RenderTop(records []record.Record) string {
	top := Top(records)
	if len(top) == 0 {
		return NoData
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Top %d commands by output tokens\n\n", len(top))

	for i, r := range top {
		fmt.Fprintf(&sb, "%2d. %8s tok  %s%s\n",
			i+1,
			humanize.Comma(int64(r.EstimatedTokens)),
			flagMark(r),
			truncateDisplay(r.Command, 60),
		)
	}

	return sb.String()
}

// flagMark renders the truncation/error flags as a short prefix.
func flagMark(r record.Record) string {
	var marks string
	if r.IsError {
		marks += "✗ "
	}
	if r.Truncated {
		marks += "⋯ "
	}
	return marks
}
