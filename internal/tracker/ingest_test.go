package tracker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wizdiff/internal/model"
	"wizdiff/internal/testutil"
	"wizdiff/internal/tracker"
)

func newService(t *testing.T) (*tracker.Service, tracker.Store) {
	t.Helper()
	store := testutil.NewTestStore(t)
	svc := tracker.NewService(store, tracker.NewNopLogger(), testutil.FixedClock{Time: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)})
	return svc, store
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestService_Ingest(t *testing.T) {
	ctx := context.Background()

	t.Run("stores loose files and wad members", func(t *testing.T) {
		svc, store := newService(t)

		loose := []model.LooseFile{
			{Name: "b.txt", CRC: 2, Size: 20},
			{Name: "a.txt", CRC: 1, Size: 10},
		}
		wads := []model.WadMember{
			{WadName: "root.wad", Name: "x.img", CRC: 3, Size: 5},
		}

		if err := svc.Ingest(ctx, "1.0", day(2024, 1, 1), loose, wads); err != nil {
			t.Fatalf("Ingest() error = %v", err)
		}

		files, err := store.ListFiles(ctx, "1.0")
		if err != nil {
			t.Fatalf("ListFiles() error = %v", err)
		}
		if len(files) != 2 {
			t.Fatalf("len(files) = %d, want 2", len(files))
		}
		// Listing is name-ordered regardless of input order.
		if files[0].Name != "a.txt" || files[1].Name != "b.txt" {
			t.Errorf("files = [%s, %s], want [a.txt, b.txt]", files[0].Name, files[1].Name)
		}

		members, err := store.ListWadFiles(ctx, "1.0")
		if err != nil {
			t.Fatalf("ListWadFiles() error = %v", err)
		}
		if len(members) != 1 {
			t.Errorf("len(members) = %d, want 1", len(members))
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		svc, store := newService(t)
		ctx := context.Background()

		loose := []model.LooseFile{{Name: "a.txt", CRC: 1, Size: 10}}

		if err := svc.Ingest(ctx, "1.0", day(2024, 1, 1), loose, nil); err != nil {
			t.Fatalf("first Ingest() error = %v", err)
		}
		if err := svc.Ingest(ctx, "1.0", day(2024, 1, 1), loose, nil); err != nil {
			t.Fatalf("second Ingest() error = %v", err)
		}

		revs, err := store.ListRevisions(ctx)
		if err != nil {
			t.Fatalf("ListRevisions() error = %v", err)
		}
		if len(revs) != 1 {
			t.Errorf("len(revisions) = %d, want 1", len(revs))
		}

		files, err := store.ListFiles(ctx, "1.0")
		if err != nil {
			t.Fatalf("ListFiles() error = %v", err)
		}
		if len(files) != 1 {
			t.Errorf("len(files) = %d, want 1", len(files))
		}
	})

	t.Run("re-ingest replaces the prior capture", func(t *testing.T) {
		svc, store := newService(t)

		first := []model.LooseFile{
			{Name: "a.txt", CRC: 1, Size: 10},
			{Name: "stale.txt", CRC: 9, Size: 9},
		}
		if err := svc.Ingest(ctx, "1.0", day(2024, 1, 1), first, nil); err != nil {
			t.Fatalf("first Ingest() error = %v", err)
		}

		second := []model.LooseFile{{Name: "a.txt", CRC: 2, Size: 10}}
		if err := svc.Ingest(ctx, "1.0", day(2024, 1, 1), second, nil); err != nil {
			t.Fatalf("second Ingest() error = %v", err)
		}

		files, err := store.ListFiles(ctx, "1.0")
		if err != nil {
			t.Fatalf("ListFiles() error = %v", err)
		}
		if len(files) != 1 {
			t.Fatalf("len(files) = %d, want 1 (stale record kept)", len(files))
		}
		if files[0].CRC != 2 {
			t.Errorf("CRC = %d, want 2", files[0].CRC)
		}
	})

	t.Run("rejects duplicate loose files and leaves store unchanged", func(t *testing.T) {
		svc, store := newService(t)

		loose := []model.LooseFile{
			{Name: "a.txt", CRC: 1, Size: 10},
			{Name: "a.txt", CRC: 2, Size: 20},
		}
		err := svc.Ingest(ctx, "1.0", day(2024, 1, 1), loose, nil)
		if !errors.Is(err, tracker.ErrDuplicateRecord) {
			t.Fatalf("Ingest() error = %v, want ErrDuplicateRecord", err)
		}

		ok, err := store.HasRevision(ctx, "1.0")
		if err != nil {
			t.Fatalf("HasRevision() error = %v", err)
		}
		if ok {
			t.Error("store changed by rejected ingestion")
		}
	})

	t.Run("rejects duplicate wad members", func(t *testing.T) {
		svc, _ := newService(t)

		wads := []model.WadMember{
			{WadName: "root.wad", Name: "x.img", CRC: 1, Size: 5},
			{WadName: "root.wad", Name: "x.img", CRC: 2, Size: 6},
		}
		err := svc.Ingest(ctx, "1.0", day(2024, 1, 1), nil, wads)
		if !errors.Is(err, tracker.ErrDuplicateRecord) {
			t.Errorf("Ingest() error = %v, want ErrDuplicateRecord", err)
		}
	})

	t.Run("allows the same member name in different wads", func(t *testing.T) {
		svc, store := newService(t)

		wads := []model.WadMember{
			{WadName: "root.wad", Name: "x.img", CRC: 1, Size: 5},
			{WadName: "patch.wad", Name: "x.img", CRC: 2, Size: 6},
		}
		if err := svc.Ingest(ctx, "1.0", day(2024, 1, 1), nil, wads); err != nil {
			t.Fatalf("Ingest() error = %v", err)
		}

		members, err := store.ListWadFiles(ctx, "1.0")
		if err != nil {
			t.Fatalf("ListWadFiles() error = %v", err)
		}
		if len(members) != 2 {
			t.Errorf("len(members) = %d, want 2", len(members))
		}
	})

	t.Run("zero date defaults to the clock's current day", func(t *testing.T) {
		svc, store := newService(t)

		if err := svc.Ingest(ctx, "1.0", time.Time{}, nil, nil); err != nil {
			t.Fatalf("Ingest() error = %v", err)
		}

		revs, err := store.ListRevisions(ctx)
		if err != nil {
			t.Fatalf("ListRevisions() error = %v", err)
		}
		if len(revs) != 1 {
			t.Fatalf("len(revisions) = %d, want 1", len(revs))
		}
		if got := revs[0].Date.Format(model.DateFormat); got != "2024-01-01" {
			t.Errorf("Date = %s, want 2024-01-01", got)
		}
	})

	t.Run("rejects empty revision name", func(t *testing.T) {
		svc, _ := newService(t)

		if err := svc.Ingest(ctx, "", day(2024, 1, 1), nil, nil); err == nil {
			t.Error("Ingest() expected error for empty revision name")
		}
	})

	t.Run("concurrent ingests of the same revision serialize cleanly", func(t *testing.T) {
		svc, store := newService(t)

		loose := []model.LooseFile{{Name: "a.txt", CRC: 1, Size: 10}}

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = svc.Ingest(ctx, "1.0", day(2024, 1, 1), loose, nil)
			}(i)
		}
		wg.Wait()

		for i, err := range errs {
			if err != nil {
				t.Errorf("Ingest[%d]() error = %v", i, err)
			}
		}

		files, err := store.ListFiles(ctx, "1.0")
		if err != nil {
			t.Fatalf("ListFiles() error = %v", err)
		}
		if len(files) != 1 {
			t.Errorf("len(files) = %d, want 1", len(files))
		}
	})
}
