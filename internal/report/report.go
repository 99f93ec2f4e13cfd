// Package report renders diff results as deterministic plain text for the
// CLI. The layout groups changes by scope (loose files first, then each wad
// alphabetically) with names sorted inside each scope.
package report

import (
	"fmt"
	"io"

	"wizdiff/internal/tracker"
)

// Render writes a human-readable report of the diff to w.
func Render(w io.Writer, r *tracker.DiffResult) error {
	if _, err := fmt.Fprintf(w, "diff %s -> %s\n", r.OldRevision, r.NewRevision); err != nil {
		return err
	}

	if r.Empty() {
		_, err := fmt.Fprintln(w, "no changes")
		return err
	}

	if !r.Loose.Empty() {
		if _, err := fmt.Fprintln(w, "\nloose files:"); err != nil {
			return err
		}
		if err := renderScope(w, r.Loose); err != nil {
			return err
		}
	}

	for _, wad := range r.Wads {
		switch {
		case wad.AllAdded:
			if _, err := fmt.Fprintf(w, "\nwad %s: added (%d members)\n", wad.WadName, wad.MemberCount); err != nil {
				return err
			}
		case wad.AllRemoved:
			if _, err := fmt.Fprintf(w, "\nwad %s: removed (%d members)\n", wad.WadName, wad.MemberCount); err != nil {
				return err
			}
		default:
			if _, err := fmt.Fprintf(w, "\nwad %s:\n", wad.WadName); err != nil {
				return err
			}
			if err := renderScope(w, wad.Members); err != nil {
				return err
			}
		}
	}

	return nil
}

func renderScope(w io.Writer, d tracker.ScopeDiff) error {
	for _, f := range d.Added {
		if _, err := fmt.Fprintf(w, "  A %s  crc=%d size=%d\n", f.Name, f.CRC, f.Size); err != nil {
			return err
		}
	}
	for _, f := range d.Removed {
		if _, err := fmt.Fprintf(w, "  D %s  crc=%d size=%d\n", f.Name, f.CRC, f.Size); err != nil {
			return err
		}
	}
	for _, f := range d.Modified {
		if _, err := fmt.Fprintf(w, "  M %s  crc=%d->%d size=%d->%d\n",
			f.Name, f.OldCRC, f.NewCRC, f.OldSize, f.NewSize); err != nil {
			return err
		}
	}
	return nil
}
