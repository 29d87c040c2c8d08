// Package storage persists record-log snapshots to SQLite. The contract is
// deliberately coarse: save replaces the entire stored sequence, load returns
// the last-saved sequence. The monitor never writes incremental diffs.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/nixlim/cc-cmd/internal/record"
)

// SQLiteStore persists record snapshots in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB

	dirty    chan struct{}
	stopCh   chan struct{}
	done     chan struct{}
	watching atomic.Bool
	closed   atomic.Bool
}

// NewSQLiteStore opens (creating and migrating as needed) the database at
// dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dirty:  make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// SaveSnapshot replaces the entire stored sequence with records, atomically.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, records []record.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (timestamp, command, output_chars, truncated, is_error)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range records {
		r := &records[i]
		_, err := stmt.ExecContext(ctx,
			r.Timestamp.UTC().Format(time.RFC3339Nano),
			r.Command,
			r.OutputChars,
			boolToInt(r.Truncated),
			boolToInt(r.IsError),
		)
		if err != nil {
			return fmt.Errorf("inserting record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the last-saved sequence in its original order.
// Token estimates are recomputed from the stored character counts; they are
// never independent state on disk.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) ([]record.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, command, output_chars, truncated, is_error
		FROM records
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []record.Record
	for rows.Next() {
		var tsStr, command string
		var outputChars, truncated, isError int

		if err := rows.Scan(&tsStr, &command, &outputChars, &truncated, &isError); err != nil {
			return nil, fmt.Errorf("scanning record row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339Nano, tsStr)
		if err != nil {
			log.Printf("WARNING: skipping record with unparseable timestamp %q: %v", tsStr, err)
			continue
		}

		records = append(records, record.New(ts, command, outputChars, truncated != 0, isError != 0))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating record rows: %w", err)
	}

	return records, nil
}

// Watch starts a background goroutine that snapshots the log after appends
// and clears, debounced so command bursts produce one write. Call Close to
// stop it; the final state is flushed on shutdown.
func (s *SQLiteStore) Watch(l *record.Log, debounce time.Duration) {
	if !s.watching.CompareAndSwap(false, true) {
		return
	}

	l.OnAppend(func(record.Record) {
		s.MarkDirty()
	})

	go s.watchLoop(l, debounce)
}

// MarkDirty schedules a snapshot write. Coalesces with pending marks.
func (s *SQLiteStore) MarkDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func (s *SQLiteStore) watchLoop(l *record.Log, debounce time.Duration) {
	defer close(s.done)

	for {
		select {
		case <-s.stopCh:
			s.flush(l)
			return
		case <-s.dirty:
			timer := time.NewTimer(debounce)
			select {
			case <-timer.C:
			case <-s.stopCh:
				timer.Stop()
				s.flush(l)
				return
			}
			s.flush(l)
		}
	}
}

func (s *SQLiteStore) flush(l *record.Log) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.SaveSnapshot(ctx, l.Snapshot()); err != nil {
		log.Printf("WARNING: snapshot write failed: %v", err)
	}
}

// Close stops the watcher (flushing pending state) and closes the database.
func (s *SQLiteStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	if s.watching.Load() {
		close(s.stopCh)
		<-s.done
	}

	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
