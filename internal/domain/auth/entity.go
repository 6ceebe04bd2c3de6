package auth

import (
	"time"

	"adboard/backend/internal/domain"

	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = domain.NewError(domain.ErrUnauthorized, "incorrect login or password")
	// ErrEmailExists signals a duplicate email registration.
	ErrEmailExists = domain.NewError(domain.ErrConflict, "user already exists")
	// ErrUserNotFound indicates missing user.
	ErrUserNotFound = domain.NewError(domain.ErrNotFound, "user not found")
	// ErrTokenInvalid means a supplied token is absent, unknown or expired.
	ErrTokenInvalid = domain.NewError(domain.ErrForbidden, "incorrect token")
	// ErrTokenNotFound is returned by token storage when no row matches.
	ErrTokenNotFound = domain.NewError(domain.ErrNotFound, "token not found")
	// ErrTokenExists is returned when a token id collides with an existing row.
	ErrTokenExists = domain.NewError(domain.ErrConflict, "token already exists")
	// ErrNotOwner indicates an authenticated principal touching someone else's resource.
	ErrNotOwner = domain.NewError(domain.ErrForbidden, "only owner has access")
)

// User models the account entity persisted in storage.
type User struct {
	ID               int64
	Email            string
	PasswordHash     string
	RegistrationTime time.Time
}

// UserPatch carries the optional fields of a user update. PasswordHash must
// already be hashed.
type UserPatch struct {
	Email        *string
	PasswordHash *string
}

// Apply copies every present field onto u.
func (p UserPatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
}

// Credentials captures raw credential input for login.
type Credentials struct {
	Email    string
	Password string
}

// Token is an opaque session token bound to a user at creation time.
type Token struct {
	ID        uuid.UUID
	UserID    int64
	CreatedAt time.Time
}

// ExpiredAt reports whether the token is no longer accepted at now.
// A token stays fresh while now is strictly before CreatedAt+ttl.
func (t *Token) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return !now.Before(t.CreatedAt.Add(ttl))
}

// Principal is the authenticated user behind a valid token.
type Principal struct {
	Token *Token
	User  *User
}

// UserID returns the id of the authenticated user.
func (p *Principal) UserID() int64 {
	return p.User.ID
}
