package tracker

import (
	"context"
	"fmt"
	"sort"

	"wizdiff/internal/model"
)

// FileChange describes a file present in only one of the two revisions.
type FileChange struct {
	Name string
	CRC  uint32
	Size int64
}

// FileModification describes a file present in both revisions with a
// differing crc or size.
type FileModification struct {
	Name    string
	OldCRC  uint32
	NewCRC  uint32
	OldSize int64
	NewSize int64
}

// ScopeDiff holds the changes within one diff scope (the loose files, or
// the members of one wad). Unchanged files are not reported. All slices
// are sorted by file name.
type ScopeDiff struct {
	Added    []FileChange
	Removed  []FileChange
	Modified []FileModification
}

// Empty reports whether the scope has no changes at all.
func (d ScopeDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}

// WadDiff is the diff of one archive scope. When the wad exists in only
// one revision the per-member listing is collapsed into a whole-archive
// summary: AllAdded or AllRemoved is set, MemberCount holds the number of
// implicitly added/removed members, and Members is empty.
type WadDiff struct {
	WadName     string
	AllAdded    bool
	AllRemoved  bool
	MemberCount int
	Members     ScopeDiff
}

// DiffResult is the metadata difference between two revisions, grouped by
// scope and sorted for reproducible output.
type DiffResult struct {
	OldRevision string
	NewRevision string
	Loose       ScopeDiff
	Wads        []WadDiff // sorted by wad name; wads with no changes omitted
}

// Empty reports whether the two revisions are metadata-identical.
func (r *DiffResult) Empty() bool {
	return r.Loose.Empty() && len(r.Wads) == 0
}

// Diff computes the metadata difference between two ingested revisions.
// Both revisions must already exist; otherwise it fails with
// ErrUnknownRevision. The diff is read-only and never partial: any store
// failure aborts the whole computation. Cancellation is checked between
// archive scopes and surfaces the context error without partial results.
func (s *Service) Diff(ctx context.Context, oldRev, newRev string) (*DiffResult, error) {
	for _, name := range []string{oldRev, newRev} {
		ok, err := s.store.HasRevision(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("checking revision %q: %w", name, err)
		}
		if !ok {
			return nil, fmt.Errorf("revision %q: %w", name, ErrUnknownRevision)
		}
	}

	oldLoose, oldWads, err := s.store.RevisionSnapshot(ctx, oldRev)
	if err != nil {
		return nil, fmt.Errorf("reading revision %q: %w", oldRev, err)
	}
	newLoose, newWads, err := s.store.RevisionSnapshot(ctx, newRev)
	if err != nil {
		return nil, fmt.Errorf("reading revision %q: %w", newRev, err)
	}

	result := &DiffResult{OldRevision: oldRev, NewRevision: newRev}
	result.Loose = diffScope(indexLoose(oldLoose), indexLoose(newLoose))

	oldByWad := groupByWad(oldWads)
	newByWad := groupByWad(newWads)

	for _, wad := range wadNames(oldByWad, newByWad) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("diff of %q and %q cancelled: %w", oldRev, newRev, err)
		}

		old, inOld := oldByWad[wad]
		cur, inNew := newByWad[wad]

		var wd WadDiff
		switch {
		case !inOld:
			// Whole archive new in B: summary instead of per-member noise.
			wd = WadDiff{WadName: wad, AllAdded: true, MemberCount: len(cur)}
		case !inNew:
			wd = WadDiff{WadName: wad, AllRemoved: true, MemberCount: len(old)}
		default:
			members := diffScope(old, cur)
			if members.Empty() {
				continue
			}
			wd = WadDiff{WadName: wad, Members: members}
		}
		result.Wads = append(result.Wads, wd)
	}

	s.logger.Debug("diff computed",
		"old", oldRev, "new", newRev,
		"loose_added", len(result.Loose.Added),
		"loose_removed", len(result.Loose.Removed),
		"loose_modified", len(result.Loose.Modified),
		"wads", len(result.Wads),
	)
	return result, nil
}

// diffScope classifies one scope's key sets into added, removed, and
// modified, sorted by name.
func diffScope(old, cur map[string]model.LooseFile) ScopeDiff {
	var d ScopeDiff

	for name, of := range old {
		nf, ok := cur[name]
		if !ok {
			d.Removed = append(d.Removed, FileChange{Name: name, CRC: of.CRC, Size: of.Size})
			continue
		}
		if of.CRC != nf.CRC || of.Size != nf.Size {
			d.Modified = append(d.Modified, FileModification{
				Name:    name,
				OldCRC:  of.CRC,
				NewCRC:  nf.CRC,
				OldSize: of.Size,
				NewSize: nf.Size,
			})
		}
	}

	for name, nf := range cur {
		if _, ok := old[name]; !ok {
			d.Added = append(d.Added, FileChange{Name: name, CRC: nf.CRC, Size: nf.Size})
		}
	}

	sort.Slice(d.Added, func(i, j int) bool { return d.Added[i].Name < d.Added[j].Name })
	sort.Slice(d.Removed, func(i, j int) bool { return d.Removed[i].Name < d.Removed[j].Name })
	sort.Slice(d.Modified, func(i, j int) bool { return d.Modified[i].Name < d.Modified[j].Name })
	return d
}

func indexLoose(files []model.LooseFile) map[string]model.LooseFile {
	m := make(map[string]model.LooseFile, len(files))
	for _, f := range files {
		m[f.Name] = f
	}
	return m
}

// groupByWad indexes archive members per wad, reusing the loose-file shape
// since within one wad scope the member key is just the name.
func groupByWad(members []model.WadMember) map[string]map[string]model.LooseFile {
	out := make(map[string]map[string]model.LooseFile)
	for _, m := range members {
		scope, ok := out[m.WadName]
		if !ok {
			scope = make(map[string]model.LooseFile)
			out[m.WadName] = scope
		}
		scope[m.Name] = model.LooseFile{Name: m.Name, CRC: m.CRC, Size: m.Size}
	}
	return out
}

// wadNames returns the sorted union of wad names across both revisions.
func wadNames(a, b map[string]map[string]model.LooseFile) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for wad := range a {
		seen[wad] = struct{}{}
	}
	for wad := range b {
		seen[wad] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for wad := range seen {
		names = append(names, wad)
	}
	sort.Strings(names)
	return names
}
