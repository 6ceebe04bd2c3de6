package postgres

import (
	domain "adboard/backend/internal/domain/auth"

	"github.com/google/uuid"
)

// Tokens are insert-only, so every Add is an insert.
var tokenKind = Kind[domain.Token, uuid.UUID]{
	Name:    "token",
	Table:   "tokens",
	Key:     "id",
	Columns: []string{"user_id", "creation_time"},
	KeyOf:   func(t *domain.Token) uuid.UUID { return t.ID },
	IsNew:   func(*domain.Token) bool { return true },
	Values: func(t *domain.Token) []any {
		return []any{t.UserID, t.CreatedAt}
	},
	Fields: func(t *domain.Token) []any {
		return []any{&t.ID, &t.UserID, &t.CreatedAt}
	},
	NotFound: domain.ErrTokenNotFound,
	Conflict: domain.ErrTokenExists,
}

// TokenRepository persists issued session tokens.
type TokenRepository struct {
	*Repository[domain.Token, uuid.UUID]
}

var _ domain.TokenRepository = (*TokenRepository)(nil)

// NewTokenRepository constructs a repository.
func NewTokenRepository(pool DBTX) *TokenRepository {
	return &TokenRepository{Repository: NewRepository(pool, tokenKind)}
}
