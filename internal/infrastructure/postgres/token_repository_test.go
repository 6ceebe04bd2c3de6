package postgres

import (
	"context"
	"regexp"
	"testing"

	"adboard/backend/internal/domain"
	"adboard/backend/internal/domain/auth"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepository(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewTokenRepository(mock)

	id := uuid.MustParse("5f0c7e9a-3a43-4b8e-9b53-2f5d1c0f6a11")
	token := &auth.Token{ID: id, UserID: 1, CreatedAt: registered}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tokens (id, user_id, creation_time) VALUES ($1, $2, $3)`)).
		WithArgs(id, int64(1), registered).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Add(context.Background(), token))

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tokens (id, user_id, creation_time) VALUES ($1, $2, $3)`)).
		WithArgs(id, int64(1), registered).
		WillReturnError(uniqueViolation("tokens_pkey"))
	assert.ErrorIs(t, repo.Add(context.Background(), token), auth.ErrTokenExists)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, creation_time FROM tokens WHERE id = $1`)).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "creation_time"}).
			AddRow(id, int64(1), registered))
	got, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, token, got)

	missing := uuid.MustParse("00000000-0000-4000-8000-000000000000")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, creation_time FROM tokens WHERE id = $1`)).
		WithArgs(missing).
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.Get(context.Background(), missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
