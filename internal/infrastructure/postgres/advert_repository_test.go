package postgres

import (
	"context"
	"regexp"
	"testing"

	"adboard/backend/internal/domain/advert"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvertRepository_Statements(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAdvertRepository(mock)
	assert.Equal(t, `SELECT id, title, description, creation_time, owner_id FROM adverts WHERE id = $1`, repo.selectSQL)
	assert.Equal(t, `INSERT INTO adverts (title, description, creation_time, owner_id) VALUES ($1, $2, $3, $4) RETURNING id`, repo.insertSQL)
	assert.Equal(t, `UPDATE adverts SET title = $2, description = $3, creation_time = $4, owner_id = $5 WHERE id = $1`, repo.updateSQL)
	assert.Equal(t, `DELETE FROM adverts WHERE id = $1`, repo.deleteSQL)
}

func TestAdvertRepository_AddAndUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewAdvertRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(repo.insertSQL)).
		WithArgs("Bike", "Red, barely used", registered, int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(10)))

	ad := &advert.Advert{Title: "Bike", Description: "Red, barely used", CreationTime: registered, OwnerID: 1}
	require.NoError(t, repo.Add(context.Background(), ad))
	assert.Equal(t, int64(10), ad.ID)

	mock.ExpectQuery(regexp.QuoteMeta(repo.insertSQL)).
		WithArgs("Bike", "Another", registered, int64(2)).
		WillReturnError(uniqueViolation("adverts_title_key"))

	err = repo.Add(context.Background(), &advert.Advert{Title: "Bike", Description: "Another", CreationTime: registered, OwnerID: 2})
	assert.ErrorIs(t, err, advert.ErrDuplicateTitle)

	title := "Blue bike"
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(repo.selectSQL + " FOR UPDATE")).
		WithArgs(int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "description", "creation_time", "owner_id"}).
			AddRow(int64(10), "Bike", "Red, barely used", registered, int64(1)))
	mock.ExpectExec(regexp.QuoteMeta(repo.updateSQL)).
		WithArgs(int64(10), title, "Red, barely used", registered, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	updated, err := repo.Update(context.Background(), 10, advert.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, int64(1), updated.OwnerID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
