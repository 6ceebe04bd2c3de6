// Package password hashes and verifies account credentials.
package password

import (
	"errors"

	"adboard/backend/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong rejects passwords bcrypt cannot hash.
var ErrPasswordTooLong = domain.NewError(domain.ErrValidation, "password is too long")

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 12

// BcryptHasher hashes passwords with a fixed bcrypt cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher constructs a hasher. Costs outside bcrypt's accepted range
// fall back to DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash generates a salted hash of the plaintext password.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plain matches the stored hash. Malformed hashes
// never match.
func (h *BcryptHasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
