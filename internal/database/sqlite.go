package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"wizdiff/internal/database/migrations"
	"wizdiff/internal/model"
	"wizdiff/internal/tracker"
)

// SQLiteStore implements the tracker.Store interface using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite-backed store.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStore(path string, busyTimeout time.Duration) (*SQLiteStore, error) {
	db, err := OpenConnection(path, busyTimeout)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// NewSQLiteStoreFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, path: ""}
}

// OpenConnection opens and configures a SQLite connection with the PRAGMAs
// the store relies on. Exported for tools and tests that need a properly
// configured connection. busyTimeout bounds how long a statement waits on a
// locked database before failing; past it the error surfaces as
// ErrStoreUnavailable rather than hanging.
func OpenConnection(path string, busyTimeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w: %v", tracker.ErrStoreUnavailable, err)
	}

	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds())); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w: %v", tracker.ErrStoreUnavailable, err)
	}

	return db, nil
}

// storeErr maps a database failure onto the tracker error taxonomy while
// keeping the driver's detail in the message.
func storeErr(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %v", tracker.ErrConstraintViolation, err)
	}
	return fmt.Errorf("%w: %v", tracker.ErrStoreUnavailable, err)
}

// Revision operations

func (s *SQLiteStore) RecordRevision(ctx context.Context, name string, date time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO RevisionInfo (name, date) VALUES (?, ?)`,
		name, model.Day(date).Format(model.DateFormat),
	)
	if err != nil {
		return fmt.Errorf("recording revision %q: %w", name, storeErr(err))
	}
	return nil
}

// InsertRevision inserts a RevisionInfo row without upsert semantics.
// Inserting an existing (name, date) pair fails with ErrConstraintViolation.
func (s *SQLiteStore) InsertRevision(ctx context.Context, name string, date time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO RevisionInfo (name, date) VALUES (?, ?)`,
		name, model.Day(date).Format(model.DateFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting revision %q: %w", name, storeErr(err))
	}
	return nil
}

func (s *SQLiteStore) HasRevision(ctx context.Context, name string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM RevisionInfo WHERE name = ? LIMIT 1`, name,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking revision %q: %w", name, storeErr(err))
	}
	return true, nil
}

func (s *SQLiteStore) ListRevisions(ctx context.Context) ([]model.Revision, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, date FROM RevisionInfo ORDER BY date ASC, name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing revisions: %w", storeErr(err))
	}
	defer rows.Close()

	var revs []model.Revision
	for rows.Next() {
		var name, date string
		if err := rows.Scan(&name, &date); err != nil {
			return nil, fmt.Errorf("scanning revision: %w", storeErr(err))
		}
		d, err := time.ParseInLocation(model.DateFormat, date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("revision %q has malformed date %q: %w", name, date, tracker.ErrStoreUnavailable)
		}
		revs = append(revs, model.Revision{Name: name, Date: d})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing revisions: %w", storeErr(err))
	}
	return revs, nil
}

// File operations

func (s *SQLiteStore) UpsertFile(ctx context.Context, revision, name string, crc uint32, size int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO VersionedFileInfo (crc, size, revision, name) VALUES (?, ?, ?, ?)
		 ON CONFLICT (revision, name) DO UPDATE SET crc = excluded.crc, size = excluded.size`,
		int64(crc), size, revision, name,
	)
	if err != nil {
		return fmt.Errorf("upserting file %q for revision %q: %w", name, revision, storeErr(err))
	}
	return nil
}

func (s *SQLiteStore) UpsertWadFile(ctx context.Context, revision, name, wadName string, crc uint32, size int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO WadFileInfo (crc, size, revision, name, wad_name) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (revision, name, wad_name) DO UPDATE SET crc = excluded.crc, size = excluded.size`,
		int64(crc), size, revision, name, wadName,
	)
	if err != nil {
		return fmt.Errorf("upserting wad file %q in %q for revision %q: %w", name, wadName, revision, storeErr(err))
	}
	return nil
}

func (s *SQLiteStore) ListFiles(ctx context.Context, revision string) ([]model.LooseFile, error) {
	files, err := listFiles(ctx, s.db, revision)
	if err != nil {
		return nil, fmt.Errorf("listing files for revision %q: %w", revision, err)
	}
	return files, nil
}

func (s *SQLiteStore) ListWadFiles(ctx context.Context, revision string) ([]model.WadMember, error) {
	members, err := listWadFiles(ctx, s.db, revision)
	if err != nil {
		return nil, fmt.Errorf("listing wad files for revision %q: %w", revision, err)
	}
	return members, nil
}

// RevisionSnapshot reads both listings inside one read-only transaction so
// a diff never mixes old and new records from an in-progress re-ingestion
// of the revision.
func (s *SQLiteStore) RevisionSnapshot(ctx context.Context, revision string) ([]model.LooseFile, []model.WadMember, error) {
	// The driver does not support TxOptions.ReadOnly; a deferred
	// transaction still reads a consistent snapshot in SQLite.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("starting snapshot read for revision %q: %w", revision, storeErr(err))
	}
	defer tx.Rollback()

	loose, err := listFiles(ctx, tx, revision)
	if err != nil {
		return nil, nil, fmt.Errorf("listing files for revision %q: %w", revision, err)
	}
	wads, err := listWadFiles(ctx, tx, revision)
	if err != nil {
		return nil, nil, fmt.Errorf("listing wad files for revision %q: %w", revision, err)
	}
	return loose, wads, nil
}

// querier is the common surface of *sql.DB and *sql.Tx the listing
// helpers need.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listFiles(ctx context.Context, q querier, revision string) ([]model.LooseFile, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT name, crc, size FROM VersionedFileInfo WHERE revision = ? ORDER BY name ASC`,
		revision,
	)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var files []model.LooseFile
	for rows.Next() {
		var f model.LooseFile
		var crc int64
		if err := rows.Scan(&f.Name, &crc, &f.Size); err != nil {
			return nil, storeErr(err)
		}
		f.CRC = uint32(crc)
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return files, nil
}

func listWadFiles(ctx context.Context, q querier, revision string) ([]model.WadMember, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT wad_name, name, crc, size FROM WadFileInfo WHERE revision = ? ORDER BY wad_name ASC, name ASC`,
		revision,
	)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var members []model.WadMember
	for rows.Next() {
		var m model.WadMember
		var crc int64
		if err := rows.Scan(&m.WadName, &m.Name, &crc, &m.Size); err != nil {
			return nil, storeErr(err)
		}
		m.CRC = uint32(crc)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return members, nil
}

// Bulk operations

// ReplaceRevision atomically records a revision capture and replaces its
// file set in a single transaction:
//  1. Records the RevisionInfo row (idempotent), so file rows never
//     reference a revision that was not captured.
//  2. Deletes the revision's prior loose-file and wad rows, so a re-scan
//     that dropped files leaves no stale records behind.
//  3. Inserts the new records.
//
// If anything fails the transaction rolls back and readers keep seeing the
// pre-ingestion state.
func (s *SQLiteStore) ReplaceRevision(ctx context.Context, rev model.Revision, loose []model.LooseFile, wads []model.WadMember) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", storeErr(err))
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO RevisionInfo (name, date) VALUES (?, ?)`,
		rev.Name, rev.Date.Format(model.DateFormat),
	)
	if err != nil {
		return fmt.Errorf("recording revision: %w", storeErr(err))
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM VersionedFileInfo WHERE revision = ?`, rev.Name); err != nil {
		return fmt.Errorf("clearing prior files: %w", storeErr(err))
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM WadFileInfo WHERE revision = ?`, rev.Name); err != nil {
		return fmt.Errorf("clearing prior wad files: %w", storeErr(err))
	}

	for _, f := range loose {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO VersionedFileInfo (crc, size, revision, name) VALUES (?, ?, ?, ?)`,
			int64(f.CRC), f.Size, rev.Name, f.Name,
		)
		if err != nil {
			return fmt.Errorf("inserting file %q: %w", f.Name, storeErr(err))
		}
	}

	for _, m := range wads {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO WadFileInfo (crc, size, revision, name, wad_name) VALUES (?, ?, ?, ?, ?)`,
			int64(m.CRC), m.Size, rev.Name, m.Name, m.WadName,
		)
		if err != nil {
			return fmt.Errorf("inserting wad file %q in %q: %w", m.Name, m.WadName, storeErr(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", storeErr(err))
	}
	return nil
}

// DeleteRevision removes every capture of a revision and its file rows in
// one transaction.
func (s *SQLiteStore) DeleteRevision(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", storeErr(err))
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM RevisionInfo WHERE name = ?`,
		`DELETE FROM VersionedFileInfo WHERE revision = ?`,
		`DELETE FROM WadFileInfo WHERE revision = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, name); err != nil {
			return fmt.Errorf("deleting revision %q: %w", name, storeErr(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", storeErr(err))
	}
	return nil
}

// Path returns the database file path (or ":memory:" for in-memory stores).
func (s *SQLiteStore) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// MigrateUp brings the database schema to the latest version.
func (s *SQLiteStore) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteStore implements tracker.Store
var _ tracker.Store = (*SQLiteStore)(nil)
