// Package export writes point-in-time snapshots of the record log as JSON
// for downstream analysis. Records are exported verbatim; the summary block
// is convenience totals only.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nixlim/cc-cmd/internal/record"
)

// Totals summarizes the exported sequence.
type Totals struct {
	CommandCount    int `json:"command_count"`
	EstimatedTokens int `json:"estimated_tokens"`
	OutputChars     int `json:"output_chars"`
}

// Snapshot is the serializable export shape.
type Snapshot struct {
	ExportedAt time.Time       `json:"exported_at"`
	Totals     Totals          `json:"totals"`
	Records    []record.Record `json:"records"`
}

// Build assembles a Snapshot from the given records.
func Build(records []record.Record, now time.Time) Snapshot {
	snap := Snapshot{
		ExportedAt: now,
		Records:    records,
	}
	if snap.Records == nil {
		snap.Records = []record.Record{}
	}
	for _, r := range records {
		snap.Totals.CommandCount++
		snap.Totals.EstimatedTokens += r.EstimatedTokens
		snap.Totals.OutputChars += r.OutputChars
	}
	return snap
}

// WriteFile marshals the snapshot and writes it to path.
func WriteFile(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling export snapshot: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}
	return nil
}
