package advert

import (
	"context"
	"errors"
	"time"

	domain "adboard/backend/internal/domain/advert"
	authdomain "adboard/backend/internal/domain/auth"
)

// UserReader resolves advert owners.
type UserReader interface {
	Get(ctx context.Context, id int64) (*authdomain.User, error)
}

// Service encapsulates advert use cases.
type Service struct {
	repo    domain.Repository
	users   UserReader
	nowFunc func() time.Time
}

// NewService constructs an advert service.
func NewService(repo domain.Repository, users UserReader) *Service {
	return &Service{
		repo:    repo,
		users:   users,
		nowFunc: time.Now,
	}
}

// CreateInput contains the payload required for advert creation.
type CreateInput struct {
	Title       string
	Description string
}

// UpdateInput encapsulates partial advert updates.
type UpdateInput struct {
	Title       *string
	Description *string
}

// Listing is an advert together with its owner's public details.
type Listing struct {
	Advert *domain.Advert
	Owner  *authdomain.User
}

// Create stores a new advert owned by the principal.
func (s *Service) Create(ctx context.Context, principal *authdomain.Principal, input CreateInput) (*domain.Advert, error) {
	if principal == nil || principal.User == nil {
		return nil, authdomain.ErrTokenInvalid
	}

	item := &domain.Advert{
		Title:        input.Title,
		Description:  input.Description,
		CreationTime: s.nowFunc().UTC(),
		OwnerID:      principal.UserID(),
	}
	if err := s.repo.Add(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get retrieves an advert by id.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Advert, error) {
	return s.repo.Get(ctx, id)
}

// Describe retrieves an advert and its owner. The owner is nil if the
// account no longer exists.
func (s *Service) Describe(ctx context.Context, id int64) (*Listing, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.Get(ctx, item.OwnerID)
	switch {
	case errors.Is(err, authdomain.ErrUserNotFound):
		owner = nil
	case err != nil:
		return nil, err
	default:
		owner.PasswordHash = ""
	}
	return &Listing{Advert: item, Owner: owner}, nil
}

// Update modifies an advert owned by the principal.
func (s *Service) Update(ctx context.Context, principal *authdomain.Principal, id int64, input UpdateInput) (*domain.Advert, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authdomain.CheckOwner(principal, item.OwnerID); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, id, domain.Patch{
		Title:       input.Title,
		Description: input.Description,
	})
}

// Delete removes an advert owned by the principal.
func (s *Service) Delete(ctx context.Context, principal *authdomain.Principal, id int64) error {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authdomain.CheckOwner(principal, item.OwnerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
