package user

import (
	"context"
	"strings"
	"time"

	domain "adboard/backend/internal/domain/auth"

	"github.com/samber/oops"
)

// PasswordHasher hashes plaintext passwords before they reach storage.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// Service provides account use cases.
type Service struct {
	repo    domain.UserRepository
	hasher  PasswordHasher
	nowFunc func() time.Time
}

// NewService constructs a user service around the provided repository.
func NewService(repo domain.UserRepository, hasher PasswordHasher) *Service {
	return &Service{
		repo:    repo,
		hasher:  hasher,
		nowFunc: time.Now,
	}
}

// CreateInput defines the payload to register a new user.
type CreateInput struct {
	Email    string
	Password string
}

// UpdateInput defines a partial user update.
type UpdateInput struct {
	Email    *string
	Password *string
}

// Register persists a new account. Duplicate emails fail with ErrEmailExists.
func (s *Service) Register(ctx context.Context, input CreateInput) (*domain.User, error) {
	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, oops.Code("PASSWORD_HASH_FAILED").Wrap(err)
	}

	user := &domain.User{
		Email:            normalizeEmail(input.Email),
		PasswordHash:     hashed,
		RegistrationTime: s.nowFunc().UTC(),
	}
	if err := s.repo.Add(ctx, user); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// Get retrieves a single user by its identifier.
func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// Update modifies the principal's own account.
func (s *Service) Update(ctx context.Context, principal *domain.Principal, id int64, input UpdateInput) (*domain.User, error) {
	if err := domain.CheckOwner(principal, id); err != nil {
		return nil, err
	}

	var patch domain.UserPatch
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		patch.Email = &email
	}
	if input.Password != nil {
		hashed, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, oops.Code("PASSWORD_HASH_FAILED").Wrap(err)
		}
		patch.PasswordHash = &hashed
	}

	user, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// Delete removes the principal's own account.
func (s *Service) Delete(ctx context.Context, principal *domain.Principal, id int64) error {
	if err := domain.CheckOwner(principal, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.PasswordHash = ""
	return &copy
}
