package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "adboard/backend/internal/domain/auth"
	"adboard/backend/internal/infrastructure/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTokenStore(ttl time.Duration) (*TokenStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := NewTokenStore(memory.NewTokenRepository(), ttl)
	store.nowFunc = clock.Now
	return store, clock
}

func TestTokenStore_IssueThenValidate(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestTokenStore(time.Hour)

	token, err := store.Issue(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), token.UserID)
	assert.Equal(t, clock.now, token.CreatedAt)

	got, err := store.Validate(ctx, token.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.UserID)

	clock.Advance(time.Hour + time.Second)
	_, err = store.Validate(ctx, token.ID.String())
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestTokenStore_ExpiresExactlyAtTTL(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestTokenStore(time.Hour)

	token, err := store.Issue(ctx, 1)
	require.NoError(t, err)

	clock.Advance(time.Hour - time.Nanosecond)
	_, err = store.Validate(ctx, token.ID.String())
	require.NoError(t, err)

	clock.Advance(time.Nanosecond)
	_, err = store.Validate(ctx, token.ID.String())
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestTokenStore_InvalidInputs(t *testing.T) {
	store, _ := newTestTokenStore(0)
	assert.Equal(t, DefaultTokenTTL, store.TTL())

	for name, raw := range map[string]string{
		"empty":     "",
		"blank":     "   ",
		"malformed": "not-a-uuid",
		"unknown":   uuid.NewString(),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := store.Validate(context.Background(), raw)
			assert.ErrorIs(t, err, domain.ErrTokenInvalid)
		})
	}
}

type brokenTokens struct{ err error }

func (b brokenTokens) Get(context.Context, uuid.UUID) (*domain.Token, error) { return nil, b.err }
func (b brokenTokens) Add(context.Context, *domain.Token) error             { return b.err }

func TestTokenStore_StorageFailuresPropagate(t *testing.T) {
	boom := errors.New("connection reset")
	store := NewTokenStore(brokenTokens{err: boom}, time.Hour)

	_, err := store.Validate(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = store.Issue(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
}
