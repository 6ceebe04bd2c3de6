// Package memory provides in-process repositories with the same semantics as
// the PostgreSQL ones. They back service and HTTP tests.
package memory

import (
	"context"
	"sync"

	"adboard/backend/internal/domain"
	"adboard/backend/internal/domain/advert"
	"adboard/backend/internal/domain/auth"

	"github.com/google/uuid"
)

// Kind describes identity and uniqueness for one entity type.
type Kind[T any, K comparable] struct {
	KeyOf func(item *T) K
	// NextKey assigns a store-generated identity to new items; nil means the
	// caller supplies identities.
	NextKey func(item *T, seq int64)
	IsNew   func(item *T) bool
	// Unique returns the values of every unique column of item.
	Unique func(item *T) []string

	NotFound error
	Conflict error
}

// Repository keeps items by value so callers never share state with the store.
type Repository[T any, K comparable] struct {
	kind Kind[T, K]

	mu    sync.Mutex
	seq   int64
	items map[K]T
}

// NewRepository constructs an empty repository.
func NewRepository[T any, K comparable](kind Kind[T, K]) *Repository[T, K] {
	return &Repository[T, K]{kind: kind, items: make(map[K]T)}
}

var _ domain.Repository[auth.User, int64] = (*Repository[auth.User, int64])(nil)

// Get fetches an item by identity.
func (r *Repository[T, K]) Get(_ context.Context, id K) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, r.kind.NotFound
	}
	return &item, nil
}

// Find returns the first item matching pred.
func (r *Repository[T, K]) Find(_ context.Context, pred func(item *T) bool) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if pred(&item) {
			return &item, nil
		}
	}
	return nil, r.kind.NotFound
}

// Add inserts new items and writes modified ones back.
func (r *Repository[T, K]) Add(_ context.Context, item *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.kind.IsNew(item) {
		candidate := *item
		if r.kind.NextKey != nil {
			r.kind.NextKey(&candidate, r.seq+1)
		}
		id := r.kind.KeyOf(&candidate)
		if _, exists := r.items[id]; exists {
			return r.kind.Conflict
		}
		if err := r.checkUnique(&candidate); err != nil {
			return err
		}
		if r.kind.NextKey != nil {
			r.seq++
		}
		r.items[id] = candidate
		*item = candidate
		return nil
	}
	return r.save(item)
}

// Update applies patch to a copy and stores it only when every check passes.
func (r *Repository[T, K]) Update(_ context.Context, id K, patch domain.Patch[T]) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, r.kind.NotFound
	}
	patch.Apply(&item)
	if err := r.save(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes an item by identity.
func (r *Repository[T, K]) Delete(_ context.Context, id K) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return r.kind.NotFound
	}
	delete(r.items, id)
	return nil
}

// Len reports the number of stored items.
func (r *Repository[T, K]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *Repository[T, K]) save(item *T) error {
	id := r.kind.KeyOf(item)
	if _, ok := r.items[id]; !ok {
		return r.kind.NotFound
	}
	if err := r.checkUnique(item); err != nil {
		return err
	}
	r.items[id] = *item
	return nil
}

func (r *Repository[T, K]) checkUnique(item *T) error {
	if r.kind.Unique == nil {
		return nil
	}
	id := r.kind.KeyOf(item)
	want := r.kind.Unique(item)
	for otherID, other := range r.items {
		if otherID == id {
			continue
		}
		for i, value := range r.kind.Unique(&other) {
			if value == want[i] {
				return r.kind.Conflict
			}
		}
	}
	return nil
}

// UserRepository stores users in memory.
type UserRepository struct {
	*Repository[auth.User, int64]
}

var _ auth.UserRepository = (*UserRepository)(nil)

// NewUserRepository constructs an empty user store with unique emails.
func NewUserRepository() *UserRepository {
	return &UserRepository{Repository: NewRepository(Kind[auth.User, int64]{
		KeyOf:    func(u *auth.User) int64 { return u.ID },
		NextKey:  func(u *auth.User, seq int64) { u.ID = seq },
		IsNew:    func(u *auth.User) bool { return u.ID == 0 },
		Unique:   func(u *auth.User) []string { return []string{u.Email} },
		NotFound: auth.ErrUserNotFound,
		Conflict: auth.ErrEmailExists,
	})}
}

// GetByEmail fetches a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.Find(ctx, func(u *auth.User) bool { return u.Email == email })
}

// NewAdvertRepository constructs an empty advert store with unique titles.
func NewAdvertRepository() *Repository[advert.Advert, int64] {
	return NewRepository(Kind[advert.Advert, int64]{
		KeyOf:    func(a *advert.Advert) int64 { return a.ID },
		NextKey:  func(a *advert.Advert, seq int64) { a.ID = seq },
		IsNew:    func(a *advert.Advert) bool { return a.ID == 0 },
		Unique:   func(a *advert.Advert) []string { return []string{a.Title} },
		NotFound: advert.ErrNotFound,
		Conflict: advert.ErrDuplicateTitle,
	})
}

// NewTokenRepository constructs an empty token store.
func NewTokenRepository() *Repository[auth.Token, uuid.UUID] {
	return NewRepository(Kind[auth.Token, uuid.UUID]{
		KeyOf:    func(t *auth.Token) uuid.UUID { return t.ID },
		IsNew:    func(*auth.Token) bool { return true },
		NotFound: auth.ErrTokenNotFound,
		Conflict: auth.ErrTokenExists,
	})
}
