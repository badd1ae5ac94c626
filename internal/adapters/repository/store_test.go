package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/courtside/internal/domain/model"
)

func snapshot(id string, version uint64, created time.Time) model.Snapshot {
	return model.Snapshot{
		ID:               id,
		Sport:            model.SportVolleyball,
		TeamNames:        model.TeamNames{Blue: "Home", Red: "Away"},
		CurrentSetNumber: 1,
		Points: []model.Point{
			{ID: "p1", Team: model.TeamBlue, Type: model.TypeScored, Action: model.ActionAttack, X: 0.7, Y: 0.2, Timestamp: created},
		},
		Metadata:  model.DefaultMetadata(),
		CreatedAt: created,
		UpdatedAt: created,
		Version:   version,
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fileStore, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(ctx, WithMetricsUpdateInterval(10*time.Millisecond)),
		"file":   fileStore,
	}
}

func TestStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if count := store.Count(ctx); count != 0 {
				t.Errorf("expected count 0, got %d", count)
			}

			if _, err := store.Load(ctx, "m1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			want := snapshot("m1", 1, base)
			if err := store.Save(ctx, want); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, err := store.Load(ctx, "m1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("loaded snapshot mismatch (-want +got):\n%s", diff)
			}

			if err := store.Save(ctx, snapshot("m0", 1, base.Add(-time.Hour))); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			list, err := store.List(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(list) != 2 || list[0].ID != "m0" || list[1].ID != "m1" {
				t.Errorf("expected [m0 m1] by creation time, got %v", ids(list))
			}

			if err := store.Delete(ctx, "m0"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := store.Delete(ctx, "m0"); err != nil {
				t.Errorf("deleting twice should not fail, got %v", err)
			}
			if count := store.Count(ctx); count != 1 {
				t.Errorf("expected count 1, got %d", count)
			}
		})
	}
}

func TestStore_IgnoresOlderVersions(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			newer := snapshot("m1", 5, base)
			newer.ChronoSeconds = 42
			if err := store.Save(ctx, newer); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := store.Save(ctx, snapshot("m1", 3, base)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, err := store.Load(ctx, "m1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Version != 5 || got.ChronoSeconds != 42 {
				t.Errorf("expected version 5 to survive, got version %d", got.Version)
			}
		})
	}
}

func TestStore_InvalidID(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Save(ctx, model.Snapshot{}); !errors.Is(err, ErrInvalidID) {
				t.Errorf("expected ErrInvalidID, got %v", err)
			}
		})
	}

	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := fs.Load(ctx, "../escape"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("expected ErrInvalidID for a path, got %v", err)
	}
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	first, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := first.Save(ctx, snapshot("m1", 1, base)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := second.Load(ctx, "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Points) != 1 || got.Points[0].Action != model.ActionAttack {
		t.Errorf("unexpected points after reopen: %+v", got.Points)
	}
}

func TestFileStore_ListReportsCorruptFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Save(ctx, snapshot("ok", 1, time.Now())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, err := store.List(ctx)
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
	if len(list) != 1 || list[0].ID != "ok" {
		t.Errorf("expected the readable snapshot, got %v", ids(list))
	}
}

func TestMemoryStore_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)
	defer func() { _ = store.Close() }()

	var wg sync.WaitGroup
	for v := uint64(1); v <= 50; v++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			_ = store.Save(ctx, snapshot("m1", v, time.Now()))
		}(v)
	}
	wg.Wait()

	got, err := store.Load(ctx, "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Version != 50 {
		t.Errorf("expected the highest version to win, got %d", got.Version)
	}
}

func ids(snaps []model.Snapshot) []string {
	out := make([]string, len(snaps))
	for i, s := range snaps {
		out[i] = s.ID
	}
	return out
}
