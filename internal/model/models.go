package model

import "time"

// DateFormat is how revision capture dates are rendered in the database.
// Dates are calendar dates only; no time component is stored.
const DateFormat = "2006-01-02"

// Revision identifies a labeled, dated snapshot of the tracked asset set.
type Revision struct {
	Name string    // Revision label, e.g. "V_r746756.Wizard_1_520"
	Date time.Time // Capture date, truncated to day (UTC)
}

// LooseFile is a file tracked outside of any archive at one revision.
type LooseFile struct {
	Name string // File path/identifier, unique per revision
	CRC  uint32 // Opaque 32-bit integrity checksum
	Size int64  // Byte length
}

// WadMember is a file observed inside a wad archive at one revision.
// The same member name may appear in multiple distinct wads.
type WadMember struct {
	WadName string // Owning archive identifier
	Name    string // Member path within the archive
	CRC     uint32
	Size    int64
}

// Day truncates t to a calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
