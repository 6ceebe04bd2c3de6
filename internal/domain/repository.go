package domain

import "context"

// Patch is a typed partial update for entities of type T.
type Patch[T any] interface {
	Apply(item *T)
}

// Repository defines generic persistence behaviours for an entity kind T keyed by K.
type Repository[T any, K comparable] interface {
	// Get fetches the item with the given identity or fails with a NotFound kind.
	Get(ctx context.Context, id K) (*T, error)
	// Add persists a new or modified item, failing with a Conflict kind on
	// uniqueness violations.
	Add(ctx context.Context, item *T) error
	// Update fetches, patches and persists the item atomically.
	Update(ctx context.Context, id K, patch Patch[T]) (*T, error)
	// Delete removes the item or fails with a NotFound kind.
	Delete(ctx context.Context, id K) error
}
