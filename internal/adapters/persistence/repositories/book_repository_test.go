package repositories

import (
	"context"
	"testing"

	"librahub/internal/adapters/persistence/models"
	"librahub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveOneDecrementsToZero(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookRepository(db)
	ctx := context.Background()
	book := seedBook(t, db, 2, true)

	require.NoError(t, repo.ReserveOne(ctx, book.ID))
	require.NoError(t, repo.ReserveOne(ctx, book.ID))

	got, err := repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	// Shelf is empty now, the third reservation must lose.
	err = repo.ReserveOne(ctx, book.ID)
	assert.ErrorIs(t, err, domain.ErrBookOutOfStock)
}

func TestReserveOneMissingBook(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookRepository(db)

	err := repo.ReserveOne(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
}

func TestReserveOneUnavailableBook(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookRepository(db)
	ctx := context.Background()
	book := seedBook(t, db, 5, false)

	err := repo.ReserveOne(ctx, book.ID)
	assert.ErrorIs(t, err, domain.ErrBookOutOfStock)

	got, err := repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
}

func TestReleaseOneRestocks(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookRepository(db)
	ctx := context.Background()
	book := seedBook(t, db, 1, true)

	require.NoError(t, repo.ReserveOne(ctx, book.ID))
	require.NoError(t, repo.ReleaseOne(ctx, book.ID))

	got, err := repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)
}

func TestListFiltersBySearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookRepository(db)
	ctx := context.Background()
	book := seedBook(t, db, 1, true)

	other := &models.Book{
		Title:      "Số Đỏ",
		Author:     "Vũ Trọng Phụng",
		CategoryID: book.CategoryID,
		Quantity:   1,
		Available:  true,
	}
	require.NoError(t, repo.Create(ctx, other))

	books, total, err := repo.List(ctx, &BookFilter{Search: "Dế Mèn"}, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, books, 1)
	assert.Equal(t, book.ID, books[0].ID)
}

func TestUpdateStockPartialFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookRepository(db)
	ctx := context.Background()
	book := seedBook(t, db, 3, true)

	quantity := 7
	require.NoError(t, repo.UpdateStock(ctx, book.ID, &quantity, nil))

	got, err := repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Quantity)
	assert.True(t, got.Available)

	available := false
	require.NoError(t, repo.UpdateStock(ctx, book.ID, nil, &available))

	got, err = repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Quantity)
	assert.False(t, got.Available)
}
