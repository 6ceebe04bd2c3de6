package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "adboard/backend/internal/domain/auth"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// DefaultTokenTTL is how long an issued token is accepted.
const DefaultTokenTTL = 24 * time.Hour

// TokenStore issues and validates opaque session tokens.
type TokenStore struct {
	repo    domain.TokenRepository
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewTokenStore constructs a token store. A non-positive ttl selects DefaultTokenTTL.
func NewTokenStore(repo domain.TokenRepository, ttl time.Duration) *TokenStore {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenStore{
		repo:    repo,
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// TTL returns the configured token lifetime.
func (s *TokenStore) TTL() time.Duration {
	return s.ttl
}

// Issue persists a fresh random token bound to userID.
func (s *TokenStore) Issue(ctx context.Context, userID int64) (*domain.Token, error) {
	token := &domain.Token{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: s.nowFunc().UTC(),
	}
	if err := s.repo.Add(ctx, token); err != nil {
		return nil, oops.Code("TOKEN_ISSUE_FAILED").With("user_id", userID).Wrap(err)
	}
	return token, nil
}

// Validate resolves raw to a live token. Malformed, unknown and expired
// tokens all yield ErrTokenInvalid; storage failures are returned as is.
func (s *TokenStore) Validate(ctx context.Context, raw string) (*domain.Token, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, domain.ErrTokenInvalid
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	token, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	if token.ExpiredAt(s.nowFunc(), s.ttl) {
		return nil, domain.ErrTokenInvalid
	}
	return token, nil
}
