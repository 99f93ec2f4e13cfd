package tracker

import (
	"context"
	"time"

	"wizdiff/internal/model"
)

// Store provides an interface for revision metadata persistence.
// Implementations must report failures using the package error taxonomy:
// I/O failures wrap ErrStoreUnavailable, direct key violations wrap
// ErrConstraintViolation.
type Store interface {
	// Revision operations

	// RecordRevision inserts a RevisionInfo row if the (name, date) pair
	// does not exist. A no-op if it already does (idempotent capture).
	RecordRevision(ctx context.Context, name string, date time.Time) error

	// HasRevision reports whether any capture of the named revision exists.
	HasRevision(ctx context.Context, name string) (bool, error)

	// ListRevisions returns all revision captures ordered by date ascending.
	ListRevisions(ctx context.Context) ([]model.Revision, error)

	// File operations

	// UpsertFile inserts or replaces the loose-file row keyed by
	// (revision, name), overwriting any prior crc/size for that key.
	UpsertFile(ctx context.Context, revision, name string, crc uint32, size int64) error

	// UpsertWadFile inserts or replaces the archive-member row keyed by
	// (revision, name, wadName).
	UpsertWadFile(ctx context.Context, revision, name, wadName string, crc uint32, size int64) error

	// ListFiles returns all loose files for a revision, ordered by name.
	ListFiles(ctx context.Context, revision string) ([]model.LooseFile, error)

	// ListWadFiles returns all archive members for a revision, ordered by
	// (wad_name, name).
	ListWadFiles(ctx context.Context, revision string) ([]model.WadMember, error)

	// RevisionSnapshot returns the loose files and archive members of a
	// revision from a single read transaction, so a concurrent re-ingestion
	// of that revision can never produce a torn read.
	RevisionSnapshot(ctx context.Context, revision string) ([]model.LooseFile, []model.WadMember, error)

	// Bulk operations

	// ReplaceRevision atomically records the revision and replaces its
	// entire file set: either all records become visible to readers, or
	// none do. Prior rows for the revision are removed.
	ReplaceRevision(ctx context.Context, rev model.Revision, loose []model.LooseFile, wads []model.WadMember) error

	// DeleteRevision removes all captures of a revision together with its
	// loose-file and archive-member rows.
	DeleteRevision(ctx context.Context, name string) error

	// Close closes the underlying storage.
	Close() error
}
