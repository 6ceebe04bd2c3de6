package auth

import (
	"context"
	"errors"
	"strings"

	domain "adboard/backend/internal/domain/auth"
)

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// Service coordinates authentication workflows between domain and infrastructure.
type Service struct {
	users  domain.UserRepository
	tokens *TokenStore
	hasher PasswordHasher
}

// NewService constructs an auth service.
func NewService(users domain.UserRepository, tokens *TokenStore, hasher PasswordHasher) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		hasher: hasher,
	}
}

// Login validates credentials and issues a new session token.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (*domain.Token, error) {
	email := strings.TrimSpace(strings.ToLower(creds.Email))
	if email == "" || creds.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(creds.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.tokens.Issue(ctx, user.ID)
}

// Authenticate resolves a raw token to the principal that owns it.
func (s *Service) Authenticate(ctx context.Context, raw string) (*domain.Principal, error) {
	token, err := s.tokens.Validate(ctx, raw)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Get(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	user.PasswordHash = ""
	return &domain.Principal{Token: token, User: user}, nil
}
