// Package feed formats and buffers recently completed commands for the live
// TUI view.
package feed

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nixlim/cc-cmd/internal/classify"
	"github.com/nixlim/cc-cmd/internal/record"
)

// FormattedCommand holds one display-ready feed entry.
type FormattedCommand struct {
	Category  string
	Command   string
	Tokens    int
	Timestamp time.Time
	IsError   bool
	Truncated bool
	Formatted string
}

// FormatRecord converts a record into a display-ready feed entry:
// "[category] command ✓ 1,234 tok" with ✗ for failures and a ⋯ marker for
// truncated output.
func FormatRecord(r record.Record, rules classify.Rules) FormattedCommand {
	fc := FormattedCommand{
		Category:  classify.Classify(r.Command, rules),
		Command:   r.Command,
		Tokens:    r.EstimatedTokens,
		Timestamp: r.Timestamp,
		IsError:   r.IsError,
		Truncated: r.Truncated,
	}

	mark := "✓"
	if r.IsError {
		mark = "✗"
	}
	suffix := ""
	if r.Truncated {
		suffix = " ⋯"
	}

	fc.Formatted = fmt.Sprintf("[%s] %s %s %s tok%s",
		fc.Category,
		truncateCommand(r.Command, 48),
		mark,
		humanize.Comma(int64(r.EstimatedTokens)),
		suffix,
	)
	return fc
}

func truncateCommand(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
