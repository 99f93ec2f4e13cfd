// Package manifest decodes scan manifests: the TOML files an asset scanner
// produces describing every loose file and wad member observed at one
// revision. This is the only input format the ingest command accepts.
package manifest

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"wizdiff/internal/model"
)

// Manifest is the decoded form of a scan manifest.
type Manifest struct {
	Revision string         `toml:"revision"`
	Date     string         `toml:"date"` // YYYY-MM-DD; empty means "today"
	Files    []FileEntry    `toml:"files"`
	WadFiles []WadFileEntry `toml:"wad_files"`
}

// FileEntry is one loose file observed by the scanner.
type FileEntry struct {
	Name string `toml:"name"`
	CRC  int64  `toml:"crc"`
	Size int64  `toml:"size"`
}

// WadFileEntry is one archive member observed by the scanner.
type WadFileEntry struct {
	Wad  string `toml:"wad"`
	Name string `toml:"name"`
	CRC  int64  `toml:"crc"`
	Size int64  `toml:"size"`
}

// Read decodes a manifest from the provided reader.
func Read(r io.Reader) (*Manifest, error) {
	var m Manifest
	if _, err := toml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}

// ReadFromFile reads a manifest from the specified file path.
func ReadFromFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading manifest from %s: %w", path, err)
	}
	return m, nil
}

// ParseDate returns the manifest's capture date, or today per clock when
// the manifest leaves it empty.
func (m *Manifest) ParseDate(now time.Time) (time.Time, error) {
	if m.Date == "" {
		return model.Day(now), nil
	}
	d, err := time.ParseInLocation(model.DateFormat, m.Date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("manifest date %q: expected %s", m.Date, model.DateFormat)
	}
	return d, nil
}

// Records validates the manifest entries and converts them to model records.
// CRC values must fit an unsigned 32-bit checksum and sizes must be
// non-negative; key-duplicate detection is the ingestor's job.
func (m *Manifest) Records() ([]model.LooseFile, []model.WadMember, error) {
	loose := make([]model.LooseFile, 0, len(m.Files))
	for _, e := range m.Files {
		if e.Name == "" {
			return nil, nil, fmt.Errorf("file entry with empty name")
		}
		if err := checkEntry(e.Name, e.CRC, e.Size); err != nil {
			return nil, nil, err
		}
		loose = append(loose, model.LooseFile{Name: e.Name, CRC: uint32(e.CRC), Size: e.Size})
	}

	wads := make([]model.WadMember, 0, len(m.WadFiles))
	for _, e := range m.WadFiles {
		if e.Wad == "" || e.Name == "" {
			return nil, nil, fmt.Errorf("wad file entry missing wad or name")
		}
		if err := checkEntry(e.Name, e.CRC, e.Size); err != nil {
			return nil, nil, err
		}
		wads = append(wads, model.WadMember{WadName: e.Wad, Name: e.Name, CRC: uint32(e.CRC), Size: e.Size})
	}

	return loose, wads, nil
}

func checkEntry(name string, crc, size int64) error {
	if crc < 0 || crc > math.MaxUint32 {
		return fmt.Errorf("file %q: crc %d out of 32-bit range", name, crc)
	}
	if size < 0 {
		return fmt.Errorf("file %q: negative size %d", name, size)
	}
	return nil
}
