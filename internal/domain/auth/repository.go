package auth

import (
	"context"

	"adboard/backend/internal/domain"

	"github.com/google/uuid"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	domain.Repository[User, int64]
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// TokenRepository stores issued tokens. Tokens are never updated.
type TokenRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*Token, error)
	Add(ctx context.Context, token *Token) error
}
