package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"adboard/backend/internal/domain"
	authdomain "adboard/backend/internal/domain/auth"
	"adboard/backend/internal/infrastructure/memory"
	"adboard/backend/internal/infrastructure/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubHasher struct{ err error }

func (h stubHasher) Hash(plain string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + plain, nil
}

func newTestService() (*Service, *memory.UserRepository) {
	repo := memory.NewUserRepository()
	svc := NewService(repo, stubHasher{})
	svc.nowFunc = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, repo
}

func principalFor(id int64) *authdomain.Principal {
	return &authdomain.Principal{User: &authdomain.User{ID: id}}
}

func ptr(s string) *string { return &s }

func TestService_Register(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	created, err := svc.Register(ctx, CreateInput{Email: " Alice@Example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.Empty(t, created.PasswordHash)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), created.RegistrationTime)

	stored, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hashed:secret", stored.PasswordHash)

	_, err = svc.Register(ctx, CreateInput{Email: "alice@example.com", Password: "other"})
	assert.ErrorIs(t, err, authdomain.ErrEmailExists)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, repo.Len())
}

func TestService_RegisterHashFailure(t *testing.T) {
	boom := errors.New("entropy exhausted")
	svc := NewService(memory.NewUserRepository(), stubHasher{err: boom})

	_, err := svc.Register(context.Background(), CreateInput{Email: "a@example.com", Password: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestService_OverlongPasswordIsValidationError(t *testing.T) {
	repo := memory.NewUserRepository()
	svc := NewService(repo, password.NewBcryptHasher(bcrypt.MinCost))
	ctx := context.Background()
	long := strings.Repeat("é", 72)

	_, err := svc.Register(ctx, CreateInput{Email: "a@example.com", Password: long})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, repo.Len())

	created, err := svc.Register(ctx, CreateInput{Email: "a@example.com", Password: "short"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, principalFor(created.ID), created.ID, UpdateInput{Password: &long})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_Get(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	created, err := svc.Register(ctx, CreateInput{Email: "a@example.com", Password: "x"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)
	assert.Empty(t, got.PasswordHash)

	_, err = svc.Get(ctx, 99)
	assert.ErrorIs(t, err, authdomain.ErrUserNotFound)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		principal *authdomain.Principal
		id        int64
		input     UpdateInput
		wantErr   error
		wantEmail string
		wantHash  string
	}{
		{
			name:      "owner changes email",
			principal: principalFor(1),
			id:        1,
			input:     UpdateInput{Email: ptr("NEW@example.com")},
			wantEmail: "new@example.com",
			wantHash:  "hashed:x",
		},
		{
			name:      "owner changes password",
			principal: principalFor(1),
			id:        1,
			input:     UpdateInput{Password: ptr("y")},
			wantEmail: "a@example.com",
			wantHash:  "hashed:y",
		},
		{
			name:      "duplicate email",
			principal: principalFor(1),
			id:        1,
			input:     UpdateInput{Email: ptr("b@example.com")},
			wantErr:   authdomain.ErrEmailExists,
			wantEmail: "a@example.com",
			wantHash:  "hashed:x",
		},
		{
			name:      "someone else",
			principal: principalFor(2),
			id:        1,
			input:     UpdateInput{Email: ptr("evil@example.com")},
			wantErr:   authdomain.ErrNotOwner,
			wantEmail: "a@example.com",
			wantHash:  "hashed:x",
		},
		{
			name:      "anonymous",
			principal: nil,
			id:        1,
			input:     UpdateInput{Password: ptr("y")},
			wantErr:   domain.ErrForbidden,
			wantEmail: "a@example.com",
			wantHash:  "hashed:x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService()
			_, err := svc.Register(ctx, CreateInput{Email: "a@example.com", Password: "x"})
			require.NoError(t, err)
			_, err = svc.Register(ctx, CreateInput{Email: "b@example.com", Password: "x"})
			require.NoError(t, err)

			updated, err := svc.Update(ctx, tt.principal, tt.id, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Empty(t, updated.PasswordHash)
			}

			stored, err := repo.Get(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, stored.Email)
			assert.Equal(t, tt.wantHash, stored.PasswordHash)
		})
	}
}

func TestService_UpdateMissingOwnAccount(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Update(context.Background(), principalFor(7), 7, UpdateInput{Email: ptr("x@example.com")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	created, err := svc.Register(ctx, CreateInput{Email: "a@example.com", Password: "x"})
	require.NoError(t, err)

	err = svc.Delete(ctx, principalFor(2), created.ID)
	assert.ErrorIs(t, err, authdomain.ErrNotOwner)
	assert.Equal(t, 1, repo.Len())

	require.NoError(t, svc.Delete(ctx, principalFor(created.ID), created.ID))
	assert.Equal(t, 0, repo.Len())

	err = svc.Delete(ctx, principalFor(created.ID), created.ID)
	assert.ErrorIs(t, err, authdomain.ErrUserNotFound)
}
