// Package record holds the observed command executions and the append-only
// log they live in. Records are immutable once created; every derived figure
// (the token estimate) is recomputable from the stored fields.
package record

import "time"

// UnknownCommand is the sentinel command text used when a completion event
// arrives with no matching pending call, e.g. after a monitor restart.
const UnknownCommand = "<unknown>"

// EstimateTokens converts a character count to an approximate token count
// using a fixed 4-chars-per-token ratio, rounding up. This is a coarse proxy,
// not a claim of tokenizer fidelity.
func EstimateTokens(chars int) int {
	if chars <= 0 {
		return 0
	}
	return (chars + 3) / 4
}

// Record is one observed command execution.
type Record struct {
	// Timestamp is when the command's output was observed. Arrival order is
	// non-decreasing but not necessarily strictly increasing.
	Timestamp time.Time `json:"timestamp"`

	// Command is the raw command text as submitted, prefixes and all.
	Command string `json:"command"`

	// OutputChars is the total character length of all output segments.
	OutputChars int `json:"output_chars"`

	// EstimatedTokens is always EstimateTokens(OutputChars). It is stored as
	// a cache and recomputed by New; it is never independent state.
	EstimatedTokens int `json:"estimated_tokens"`

	// Truncated is true when the output was cut short by an external limit.
	Truncated bool `json:"truncated"`

	// IsError is true when the command's exit signaled failure.
	IsError bool `json:"is_error"`
}

// New builds a Record for a completed command execution. OutputChars is
// clamped to zero and the token estimate is derived, keeping the record
// invariants regardless of caller input.
func New(ts time.Time, command string, outputChars int, truncated, isError bool) Record {
	if command == "" {
		command = UnknownCommand
	}
	if outputChars < 0 {
		outputChars = 0
	}
	return Record{
		Timestamp:       ts,
		Command:         command,
		OutputChars:     outputChars,
		EstimatedTokens: EstimateTokens(outputChars),
		Truncated:       truncated,
		IsError:         isError,
	}
}
