package tracker

import (
	"context"
	"fmt"

	"wizdiff/internal/model"
)

// Revisions returns all recorded revision captures, oldest first.
func (s *Service) Revisions(ctx context.Context) ([]model.Revision, error) {
	revs, err := s.store.ListRevisions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing revisions: %w", err)
	}
	return revs, nil
}

// Latest returns the two most recent revision captures, previous first, so
// diffing previous against latest answers "what changed in the newest
// capture". Fails with ErrUnknownRevision when fewer than two distinct
// revisions exist.
func (s *Service) Latest(ctx context.Context) (previous, latest model.Revision, err error) {
	revs, err := s.store.ListRevisions(ctx)
	if err != nil {
		return model.Revision{}, model.Revision{}, fmt.Errorf("listing revisions: %w", err)
	}

	// Captures are date-ordered; collapse repeat captures of one label.
	var distinct []model.Revision
	for _, r := range revs {
		if len(distinct) > 0 && distinct[len(distinct)-1].Name == r.Name {
			distinct[len(distinct)-1] = r
			continue
		}
		distinct = append(distinct, r)
	}

	if len(distinct) < 2 {
		return model.Revision{}, model.Revision{}, fmt.Errorf("need two ingested revisions to compare: %w", ErrUnknownRevision)
	}
	return distinct[len(distinct)-2], distinct[len(distinct)-1], nil
}

// Prune removes a revision and all of its file records. Pruning a revision
// that does not exist fails with ErrUnknownRevision.
func (s *Service) Prune(ctx context.Context, name string) error {
	unlock := s.lockRevision(name)
	defer unlock()

	ok, err := s.store.HasRevision(ctx, name)
	if err != nil {
		return fmt.Errorf("checking revision %q: %w", name, err)
	}
	if !ok {
		return fmt.Errorf("revision %q: %w", name, ErrUnknownRevision)
	}

	if err := s.store.DeleteRevision(ctx, name); err != nil {
		return fmt.Errorf("pruning revision %q: %w", name, err)
	}

	s.logger.Info("revision pruned", "revision", name)
	return nil
}
