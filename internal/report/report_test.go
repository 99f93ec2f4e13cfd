package report

import (
	"bytes"
	"strings"
	"testing"

	"wizdiff/internal/tracker"
)

func TestRender(t *testing.T) {
	t.Run("empty diff", func(t *testing.T) {
		var buf bytes.Buffer
		r := &tracker.DiffResult{OldRevision: "1.0", NewRevision: "1.1"}

		if err := Render(&buf, r); err != nil {
			t.Fatalf("Render() error = %v", err)
		}

		want := "diff 1.0 -> 1.1\nno changes\n"
		if buf.String() != want {
			t.Errorf("Render() = %q, want %q", buf.String(), want)
		}
	})

	t.Run("loose changes and wad summaries", func(t *testing.T) {
		var buf bytes.Buffer
		r := &tracker.DiffResult{
			OldRevision: "1.0",
			NewRevision: "1.1",
			Loose: tracker.ScopeDiff{
				Added:   []tracker.FileChange{{Name: "new.txt", CRC: 3, Size: 30}},
				Removed: []tracker.FileChange{{Name: "old.txt", CRC: 2, Size: 20}},
				Modified: []tracker.FileModification{
					{Name: "a.txt", OldCRC: 111, NewCRC: 222, OldSize: 10, NewSize: 10},
				},
			},
			Wads: []tracker.WadDiff{
				{WadName: "gone.wad", AllRemoved: true, MemberCount: 4},
				{WadName: "root.wad", Members: tracker.ScopeDiff{
					Modified: []tracker.FileModification{
						{Name: "x.img", OldCRC: 1, NewCRC: 9, OldSize: 5, NewSize: 7},
					},
				}},
			},
		}

		if err := Render(&buf, r); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		out := buf.String()

		for _, line := range []string{
			"diff 1.0 -> 1.1",
			"loose files:",
			"  A new.txt  crc=3 size=30",
			"  D old.txt  crc=2 size=20",
			"  M a.txt  crc=111->222 size=10->10",
			"wad gone.wad: removed (4 members)",
			"wad root.wad:",
			"  M x.img  crc=1->9 size=5->7",
		} {
			if !strings.Contains(out, line) {
				t.Errorf("output missing %q\ngot:\n%s", line, out)
			}
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		r := &tracker.DiffResult{
			OldRevision: "1.0",
			NewRevision: "1.1",
			Wads: []tracker.WadDiff{
				{WadName: "a.wad", AllAdded: true, MemberCount: 1},
				{WadName: "b.wad", AllRemoved: true, MemberCount: 2},
			},
		}

		var first, second bytes.Buffer
		if err := Render(&first, r); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if err := Render(&second, r); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if first.String() != second.String() {
			t.Error("two renders of the same diff differ")
		}
	})
}
