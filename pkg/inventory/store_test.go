package inventory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"osprey-hq/talon/pkg/abac/entity"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(Config{
		Path: filepath.Join(t.TempDir(), "inventory.db"),
	})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestSource() *entity.Source {
	return entity.NewSource("10.0.10.21", "faculty workstation", map[entity.SourceKey]entity.Value{
		entity.SourceRole:         entity.String("faculty"),
		entity.SourceDept:         entity.String("cs"),
		entity.SourceTrustScore:   entity.Number(85),
		entity.SourceGroups:       entity.Set("it", "gradcommittee"),
		entity.SourceSessionCount: entity.Number(2),
	})
}

func newTestDestination() *entity.Destination {
	return entity.NewDestination("10.1.10.5", "floor printer", map[entity.DestinationKey]entity.Value{
		entity.DestinationType:         entity.String("printer"),
		entity.DestinationOwnerDept:    entity.String("cs"),
		entity.DestinationSensitivity:  entity.Number(1),
		entity.DestinationAllowedVLANs: entity.Set("vlan10", "vlan20"),
	})
}

func TestPutGetSourceRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	src := newTestSource()

	if err := store.PutSource(ctx, src); err != nil {
		t.Fatalf("PutSource() error = %v", err)
	}

	got, err := store.GetSource(ctx, src.IP)
	if err != nil {
		t.Fatalf("GetSource() error = %v", err)
	}
	if got.IP != src.IP || got.Description != src.Description {
		t.Errorf("GetSource() = %q/%q, want %q/%q", got.IP, got.Description, src.IP, src.Description)
	}

	for _, key := range src.Keys() {
		want, _ := src.Attribute(key)
		gotVal, ok := got.Attribute(key)
		if !ok {
			t.Errorf("round trip lost attribute %q", key)
			continue
		}
		if !gotVal.Equal(want) {
			t.Errorf("attribute %q = %v, want %v", key, gotVal, want)
		}
	}
}

func TestPutGetDestinationRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	dst := newTestDestination()

	if err := store.PutDestination(ctx, dst); err != nil {
		t.Fatalf("PutDestination() error = %v", err)
	}

	got, err := store.GetDestination(ctx, dst.IP)
	if err != nil {
		t.Fatalf("GetDestination() error = %v", err)
	}

	for _, key := range dst.Keys() {
		want, _ := dst.Attribute(key)
		gotVal, ok := got.Attribute(key)
		if !ok || !gotVal.Equal(want) {
			t.Errorf("attribute %q = %v, want %v", key, gotVal, want)
		}
	}
}

func TestPutSourceReplacesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.PutSource(ctx, newTestSource()); err != nil {
		t.Fatalf("PutSource() error = %v", err)
	}

	updated := entity.NewSource("10.0.10.21", "reimaged workstation", map[entity.SourceKey]entity.Value{
		entity.SourceRole: entity.String("staff"),
	})
	if err := store.PutSource(ctx, updated); err != nil {
		t.Fatalf("PutSource() error = %v", err)
	}

	got, err := store.GetSource(ctx, "10.0.10.21")
	if err != nil {
		t.Fatalf("GetSource() error = %v", err)
	}
	if got.Description != "reimaged workstation" {
		t.Errorf("description = %q, want the replacement row", got.Description)
	}
	if _, ok := got.Attribute(entity.SourceDept); ok {
		t.Error("replaced row still carries the old department attribute")
	}

	n, err := store.CountSources(ctx)
	if err != nil {
		t.Fatalf("CountSources() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CountSources() = %d, want 1", n)
	}
}

func TestGetSourceNotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetSource(context.Background(), "10.9.9.9"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSource() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteSource(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	src := newTestSource()

	if err := store.PutSource(ctx, src); err != nil {
		t.Fatalf("PutSource() error = %v", err)
	}
	if err := store.DeleteSource(ctx, src.IP); err != nil {
		t.Fatalf("DeleteSource() error = %v", err)
	}
	if _, err := store.GetSource(ctx, src.IP); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSource() after delete error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteSource(ctx, src.IP); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteSource() of a missing row error = %v, want ErrNotFound", err)
	}
}

func TestListSourcesOrderedByIP(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, ip := range []string{"10.0.30.7", "10.0.10.21", "10.0.20.34"} {
		src := entity.NewSource(ip, "", map[entity.SourceKey]entity.Value{
			entity.SourceRole: entity.String("student"),
		})
		if err := store.PutSource(ctx, src); err != nil {
			t.Fatalf("PutSource(%q) error = %v", ip, err)
		}
	}

	sources, err := store.ListSources(ctx)
	if err != nil {
		t.Fatalf("ListSources() error = %v", err)
	}
	if len(sources) != 3 {
		t.Fatalf("ListSources() returned %d entities, want 3", len(sources))
	}
	want := []string{"10.0.10.21", "10.0.20.34", "10.0.30.7"}
	for i, src := range sources {
		if src.IP != want[i] {
			t.Errorf("sources[%d].IP = %q, want %q", i, src.IP, want[i])
		}
	}
}

func TestImport(t *testing.T) {
	store := newTestStore(t)

	set := &entity.Inventory{
		Sources:      []*entity.Source{newTestSource()},
		Destinations: []*entity.Destination{newTestDestination()},
	}

	srcN, dstN, err := store.Import(context.Background(), set)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if srcN != 1 || dstN != 1 {
		t.Errorf("Import() = %d/%d, want 1/1", srcN, dstN)
	}
}

func TestEntitySourceLoadEntities(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, _, err := store.Import(ctx, &entity.Inventory{
		Sources:      []*entity.Source{newTestSource()},
		Destinations: []*entity.Destination{newTestDestination()},
	}); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	set, err := NewEntitySource(store).LoadEntities(ctx, nil)
	if err != nil {
		t.Fatalf("LoadEntities() error = %v", err)
	}
	if len(set.Sources) != 1 || len(set.Destinations) != 1 {
		t.Errorf("LoadEntities() = %d sources / %d destinations, want 1/1",
			len(set.Sources), len(set.Destinations))
	}
	if set.SourceByIP("10.0.10.21") == nil {
		t.Error("LoadEntities() lost the stored source")
	}
}
