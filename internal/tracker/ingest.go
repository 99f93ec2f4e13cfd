package tracker

import (
	"context"
	"fmt"
	"time"

	"wizdiff/internal/model"
)

// Ingest records one revision capture together with its scanned loose files
// and archive members.
//
// The input must not contain two loose files with the same name, or two
// archive members with the same (wad, name) pair; that is a caller error
// and fails with ErrDuplicateRecord before anything is written.
//
// The whole ingestion is atomic: readers either see all of the revision's
// records or none of them. Re-ingesting an existing revision replaces its
// prior file set (supports re-scanning or correcting a capture). A zero
// date means "today".
func (s *Service) Ingest(ctx context.Context, name string, date time.Time, loose []model.LooseFile, wads []model.WadMember) error {
	if name == "" {
		return fmt.Errorf("revision name must not be empty")
	}
	if date.IsZero() {
		date = s.clock.Now()
	}
	date = model.Day(date)

	if err := validateScan(loose, wads); err != nil {
		return err
	}

	// Keyed by name rather than (name, date): file rows are keyed by
	// revision name alone, so two captures of the same label must not
	// interleave either.
	unlock := s.lockRevision(name)
	defer unlock()

	rev := model.Revision{Name: name, Date: date}

	if err := s.store.ReplaceRevision(ctx, rev, loose, wads); err != nil {
		return fmt.Errorf("ingesting revision %q: %w", name, err)
	}

	s.logger.Info("revision ingested",
		"revision", name,
		"date", date.Format(model.DateFormat),
		"files", len(loose),
		"wad_files", len(wads),
	)
	return nil
}

// validateScan rejects inputs that carry duplicate keys.
func validateScan(loose []model.LooseFile, wads []model.WadMember) error {
	seenLoose := make(map[string]struct{}, len(loose))
	for _, f := range loose {
		if _, ok := seenLoose[f.Name]; ok {
			return fmt.Errorf("loose file %q: %w", f.Name, ErrDuplicateRecord)
		}
		seenLoose[f.Name] = struct{}{}
	}

	type wadKey struct{ wad, name string }
	seenWad := make(map[wadKey]struct{}, len(wads))
	for _, m := range wads {
		k := wadKey{m.WadName, m.Name}
		if _, ok := seenWad[k]; ok {
			return fmt.Errorf("wad %q member %q: %w", m.WadName, m.Name, ErrDuplicateRecord)
		}
		seenWad[k] = struct{}{}
	}

	return nil
}
