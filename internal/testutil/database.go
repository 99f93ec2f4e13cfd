package testutil

import (
	"testing"

	"wizdiff/internal/database"
	"wizdiff/internal/database/migrations"
)

// NewTestStore creates a new in-memory SQLite store with the schema
// migrated. The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) *database.SQLiteStore {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:", 0)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := migrations.MigrateUp(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to migrate schema: %v", err)
	}

	store := database.NewSQLiteStoreFromDB(sqlDB)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}
