package database

import (
	"fmt"
	"path/filepath"
	"time"

	"wizdiff/internal/config"
)

// NewStoreFromConfig creates a SQLiteStore based on the database config type.
func NewStoreFromConfig(cfg config.DatabaseConfig) (*SQLiteStore, error) {
	busyTimeout := time.Duration(cfg.BusyTimeoutMS) * time.Millisecond

	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		dbPath := filepath.Join(cfg.DataDir, "wizdiff.db")
		return NewSQLiteStore(dbPath, busyTimeout)
	case "memory":
		return NewSQLiteStore(":memory:", busyTimeout)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
