package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shipcam/shipcam/internal/model"
)

func newTestStore(t *testing.T, opts ...Option) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"), opts...)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// steppingClock returns a clock advancing one second per call.
func steppingClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

func sampleRecord(customer, destination, date string) model.Record {
	return model.Record{
		Date:        date,
		Customer:    customer,
		Destination: destination,
		Notes:       "fragile",
		Photos: model.Slots{
			"conversion_frame": model.SkippedSlot(),
			"box": model.PhotoListSlot(model.Photo{
				Data:         "data:image/jpeg;base64,/9j/AAAA",
				Timestamp:    time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC),
				OriginalName: "IMG_0001.jpg",
			}),
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	in := sampleRecord("ACME Corp", "Tokyo", "2026-01-02")
	id, err := s.Save(ctx, in)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != id || got.Customer != "ACME Corp" || got.Notes != "fragile" {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected createdAt to be assigned")
	}
	if got.Photos["conversion_frame"].State != model.SlotSkipped {
		t.Errorf("expected skipped slot, got %s", got.Photos["conversion_frame"].State)
	}

	want, _ := json.Marshal(in.Photos)
	have, _ := json.Marshal(got.Photos)
	if string(want) != string(have) {
		t.Errorf("photos not preserved:\n got %s\nwant %s", have, want)
	}
}

func TestSaveKeepsExplicitCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := sampleRecord("a", "b", "2025-06-01")
	r.CreatedAt = created
	r.ID = 999

	id, _ := s.Save(ctx, r)
	if id == 999 {
		t.Error("store must assign its own id")
	}
	got, _ := s.Get(ctx, id)
	if !got.CreatedAt.Equal(created) {
		t.Errorf("expected createdAt %v, got %v", created, got.CreatedAt)
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), 42)
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAllNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, WithClock(steppingClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))))

	first, _ := s.Save(ctx, sampleRecord("a", "x", "2026-01-01"))
	second, _ := s.Save(ctx, sampleRecord("b", "y", "2026-01-01"))
	third, _ := s.Save(ctx, sampleRecord("c", "z", "2026-01-01"))

	all, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3, got %d", len(all))
	}
	if all[0].ID != third || all[1].ID != second || all[2].ID != first {
		t.Errorf("expected newest first, got ids %d,%d,%d", all[0].ID, all[1].ID, all[2].ID)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.Save(ctx, sampleRecord("a", "b", "2026-01-01"))
	// warm the cache
	if _, err := s.Get(ctx, id); err != nil {
		t.Fatalf("get: %v", err)
	}

	deleted, err := s.Delete(ctx, id)
	if err != nil || !deleted {
		t.Fatalf("delete: deleted=%v err=%v", deleted, err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}

	deleted, err = s.Delete(ctx, id)
	if err != nil || deleted {
		t.Errorf("second delete should be a no-op, deleted=%v err=%v", deleted, err)
	}
}

func TestIDsNeverReused(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Save(ctx, sampleRecord("a", "b", "2026-01-01"))
	s.Delete(ctx, a)
	b, _ := s.Save(ctx, sampleRecord("a", "b", "2026-01-01"))
	if b <= a {
		t.Errorf("expected id after %d, got %d", a, b)
	}
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, ok, err := s.GetSetting(ctx, "k"); err != nil || ok {
		t.Fatalf("expected absent key, ok=%v err=%v", ok, err)
	}
	if err := s.PutSetting(ctx, "k", "v1"); err != nil {
		t.Fatalf("put: %v", err)
	}
	s.PutSetting(ctx, "k", "v2")
	v, ok, _ := s.GetSetting(ctx, "k")
	if !ok || v != "v2" {
		t.Errorf("expected v2, got %q ok=%v", v, ok)
	}
	if err := s.DeleteSetting(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.GetSetting(ctx, "k"); ok {
		t.Error("expected key removed")
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	id, _ := s.Save(ctx, sampleRecord("a", "b", "2026-01-01"))
	s.Close()

	s2, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	if _, err := s2.Get(ctx, id); err != nil {
		t.Errorf("record lost after reopen: %v", err)
	}
}

func TestStats(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	s.Save(ctx, sampleRecord("acme", "Tokyo", "2026-01-01"))
	s.Save(ctx, sampleRecord("acme", "Osaka", "2026-01-02"))
	s.Save(ctx, sampleRecord("globex", "Paris", "2026-01-03"))

	stats, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Records != 3 {
		t.Fatalf("expected 3 records, got %d", stats.Records)
	}
	if stats.Photos != 3 || stats.Skipped != 3 {
		t.Errorf("expected 3 photos and 3 skipped, got %d/%d", stats.Photos, stats.Skipped)
	}
	if len(stats.Customers) != 2 || stats.Customers[0].Customer != "acme" {
		t.Errorf("unexpected customer stats: %+v", stats.Customers)
	}
	if stats.DBSizeBytes == 0 {
		t.Error("expected non-zero db size")
	}
}

func TestExportAllOldestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, WithClock(steppingClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))))

	a, _ := s.Save(ctx, sampleRecord("a", "x", "2026-01-01"))
	b, _ := s.Save(ctx, sampleRecord("b", "y", "2026-01-01"))

	all, err := s.ExportAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != a || all[1].ID != b {
		t.Errorf("expected oldest first, got %+v", all)
	}
}

func TestGetReturnsIndependentCopies(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.Save(ctx, sampleRecord("a", "b", "2026-01-01"))

	first, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	delete(first.Photos, "box")

	second, _ := s.Get(ctx, id)
	if len(second.Photos) != 2 {
		t.Fatalf("cached record changed through a returned copy: %d slots", len(second.Photos))
	}
	delete(second.Photos, "box")

	third, _ := s.Get(ctx, id)
	if len(third.Photos) != 2 {
		t.Errorf("cached record changed through a cache hit: %d slots", len(third.Photos))
	}
}
