package tracker

import "errors"

// Error taxonomy for the revision-tracking core. Callers match with
// errors.Is; wrapping adds the revision name or file key involved.
var (
	// ErrStoreUnavailable indicates the underlying storage could not be
	// opened, read, or written.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrDuplicateRecord indicates an ingestion input contained two records
	// with the same key. The store is left unchanged.
	ErrDuplicateRecord = errors.New("duplicate record")

	// ErrUnknownRevision indicates an operation referenced a revision that
	// has not been ingested.
	ErrUnknownRevision = errors.New("unknown revision")

	// ErrConstraintViolation indicates a direct key-uniqueness violation
	// outside the upsert path.
	ErrConstraintViolation = errors.New("constraint violation")
)
