package tracker

import (
	"sync"
)

// Service is the orchestration layer coordinating the metadata store to
// perform the high-level revision-tracking operations needed by the CLI.
type Service struct {
	store  Store
	logger Logger
	clock  Clock

	// revLocks serializes mutating operations per revision key, so
	// ingestion of unrelated revisions can proceed in parallel while two
	// ingests of the same revision never interleave.
	mu       sync.Mutex
	revLocks map[string]*sync.Mutex
}

// NewService creates a new Service with the provided dependencies.
func NewService(store Store, logger Logger, clock Clock) *Service {
	return &Service{
		store:    store,
		logger:   logger,
		clock:    clock,
		revLocks: make(map[string]*sync.Mutex),
	}
}

// lockRevision acquires the mutex for a revision key, creating it on
// demand. The returned function releases the lock.
func (s *Service) lockRevision(key string) func() {
	s.mu.Lock()
	l, ok := s.revLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.revLocks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
