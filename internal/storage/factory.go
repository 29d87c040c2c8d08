package storage

import (
	"log"

	"github.com/nixlim/cc-cmd/internal/config"
)

// NewStore opens the configured snapshot store. An empty db_path disables
// persistence; an open failure degrades to memory-only operation with a
// warning instead of refusing to start.
func NewStore(cfg config.StorageConfig) (*SQLiteStore, bool) {
	if cfg.DBPath == "" {
		return nil, false
	}

	store, err := NewSQLiteStore(config.ExpandTilde(cfg.DBPath))
	if err != nil {
		log.Printf("WARNING: SQLite storage unavailable (%v), running without persistence", err)
		return nil, false
	}

	return store, true
}
