package inventory

import (
	"context"

	"osprey-hq/talon/pkg/abac/entity"
	"osprey-hq/talon/pkg/abac/schema"
	"osprey-hq/talon/pkg/abac/validator"
)

// EntitySource adapts a Store to the compiler's entity source
// interface, so compiles can run against the inventory database
// instead of an entity file.
type EntitySource struct {
	store *Store
}

// NewEntitySource creates an entity source backed by the given store.
func NewEntitySource(store *Store) *EntitySource {
	return &EntitySource{store: store}
}

// LoadEntities reads the full inventory and validates it against the
// schema. The schema map may be nil; value checks are then skipped.
func (s *EntitySource) LoadEntities(ctx context.Context, schemaMap *schema.Map) (*entity.Inventory, error) {
	sources, err := s.store.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	dests, err := s.store.ListDestinations(ctx)
	if err != nil {
		return nil, err
	}

	set := &entity.Inventory{Sources: sources, Destinations: dests}

	v := validator.NewValidator()
	if err := v.ValidateEntities(set, schemaMap); err != nil {
		return nil, err
	}

	return set, nil
}
