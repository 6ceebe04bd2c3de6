package postgres

import (
	"context"

	domain "adboard/backend/internal/domain/auth"
)

var userKind = Kind[domain.User, int64]{
	Name:    "user",
	Table:   "ads_users",
	Key:     "id",
	Columns: []string{"email", "password", "registration_time"},
	AutoKey: true,
	KeyOf:   func(u *domain.User) int64 { return u.ID },
	IsNew:   func(u *domain.User) bool { return u.ID == 0 },
	Values: func(u *domain.User) []any {
		return []any{u.Email, u.PasswordHash, u.RegistrationTime}
	},
	Fields: func(u *domain.User) []any {
		return []any{&u.ID, &u.Email, &u.PasswordHash, &u.RegistrationTime}
	},
	NotFound: domain.ErrUserNotFound,
	Conflict: domain.ErrEmailExists,
}

// UserRepository persists users in PostgreSQL.
type UserRepository struct {
	*Repository[domain.User, int64]
}

var _ domain.UserRepository = (*UserRepository)(nil)

// NewUserRepository constructs a repository.
func NewUserRepository(pool DBTX) *UserRepository {
	return &UserRepository{Repository: NewRepository(pool, userKind)}
}

// GetByEmail fetches a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.FindBy(ctx, "email", email)
}
