package snapshot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(&StoreConfig{
		Path:         filepath.Join(t.TempDir(), "snapshots.db"),
		MaxOpenConns: 2,
		MaxIdleConns: 1,
		WALMode:      true,
		BusyTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreSaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	snap := newTestSnapshot(t)

	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Digest != snap.Digest {
		t.Errorf("Get() digest = %q, want %q", got.Digest, snap.Digest)
	}
	if len(got.Keys) != len(snap.Keys) {
		t.Errorf("Get() keys = %d, want %d", len(got.Keys), len(snap.Keys))
	}

	ok, err := got.Verify()
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Error("stored snapshot failed digest verification after round trip")
	}
}

func TestStoreRejectsUnsealedSnapshot(t *testing.T) {
	store := newTestStore(t)
	snap := newTestSnapshot(t)
	snap.Digest = ""

	err := store.Save(context.Background(), snap)
	if err == nil {
		t.Fatal("Save() error = nil for an unsealed snapshot")
	}
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Errorf("Save() error type = %T, want *StorageError", err)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStoreLatestEmpty(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Latest(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest() error = %v, want ErrNotFound", err)
	}
}

// saveGeneration stores n snapshots with ascending creation times and
// distinct IDs, returning them oldest first.
func saveGeneration(t *testing.T, store *Store, n int) []*Snapshot {
	t.Helper()

	snaps := make([]*Snapshot, 0, n)
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		snap := newTestSnapshot(t)
		snap.ID = fmt.Sprintf("snap-%03d", i)
		snap.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := snap.Seal(); err != nil {
			t.Fatalf("Seal() error = %v", err)
		}
		if err := store.Save(context.Background(), snap); err != nil {
			t.Fatalf("Save(%q) error = %v", snap.ID, err)
		}
		snaps = append(snaps, snap)
	}
	return snaps
}

func TestStoreLatest(t *testing.T) {
	store := newTestStore(t)
	snaps := saveGeneration(t, store, 3)

	got, err := store.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got.ID != snaps[2].ID {
		t.Errorf("Latest() ID = %q, want %q", got.ID, snaps[2].ID)
	}
}

func TestStoreList(t *testing.T) {
	store := newTestStore(t)
	snaps := saveGeneration(t, store, 4)

	infos, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(infos) != 4 {
		t.Fatalf("List() returned %d entries, want 4", len(infos))
	}

	// Newest first.
	if infos[0].ID != snaps[3].ID || infos[3].ID != snaps[0].ID {
		t.Errorf("List() order = [%s ... %s], want newest first", infos[0].ID, infos[3].ID)
	}

	limited, err := store.List(context.Background(), 2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d entries, want 2", len(limited))
	}
}

func TestStorePrune(t *testing.T) {
	store := newTestStore(t)
	snaps := saveGeneration(t, store, 5)
	ctx := context.Background()

	deleted, err := store.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("Prune() deleted = %d, want 3", deleted)
	}

	infos, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("List() after prune returned %d entries, want 2", len(infos))
	}
	if infos[0].ID != snaps[4].ID || infos[1].ID != snaps[3].ID {
		t.Errorf("Prune() kept [%s %s], want the two newest", infos[0].ID, infos[1].ID)
	}

	// Oldest is gone from both tables.
	if _, err := store.Get(ctx, snaps[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(pruned) error = %v, want ErrNotFound", err)
	}
}

func TestStorePruneNoVictims(t *testing.T) {
	store := newTestStore(t)
	saveGeneration(t, store, 2)

	deleted, err := store.Prune(context.Background(), 10)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("Prune() deleted = %d, want 0", deleted)
	}
}
