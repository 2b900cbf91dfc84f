//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/platform/postgres"
	"github.com/gmubooktrading/api/internal/store"
	"github.com/gmubooktrading/api/internal/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_DeleteListingCascadesImages(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		books := postgres.NewPostgresBookStore(tx, nil)
		listings := postgres.NewPostgresListingStore(tx, nil)
		images := postgres.NewPostgresListingImageStore(tx, nil)

		book, err := domain.NewBook("Integration Testing 101", nil, nil)
		require.NoError(t, err)
		listing, err := domain.NewListing(uuid.New(), &book.ID, domain.ListingTypeSale, 19.99,
			domain.ConditionGood, nil, nil, nil)
		require.NoError(t, err)
		imgs, err := domain.NewListingImages(listing.ID, []string{"https://img.io/1.jpg", "https://img.io/2.jpg"})
		require.NoError(t, err)

		require.NoError(t, books.Create(ctx, book))
		require.NoError(t, listings.Create(ctx, listing))
		require.NoError(t, images.CreateMultiple(ctx, imgs))

		got, err := listings.GetByID(ctx, listing.ID)
		require.NoError(t, err)
		assert.InDelta(t, 19.99, got.Price, 0.001)

		require.NoError(t, listings.Delete(ctx, listing.ID))

		var remaining int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM listing_images WHERE listing_id = $1`, listing.ID).Scan(&remaining)
		require.NoError(t, err)
		assert.Zero(t, remaining)
	})
}

func TestIntegration_CreateListingRollsBackOnImageFailure(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	books := postgres.NewPostgresBookStore(db, nil)
	listings := postgres.NewPostgresListingStore(db, nil)
	images := postgres.NewPostgresListingImageStore(db, nil)

	book, err := domain.NewBook("Rollback Semantics", nil, nil)
	require.NoError(t, err)
	listing, err := domain.NewListing(uuid.New(), &book.ID, domain.ListingTypeSale, 5,
		domain.ConditionNew, nil, nil, nil)
	require.NoError(t, err)
	// Image rows pointing at a listing that does not exist violate the foreign key.
	bad, err := domain.NewListingImages(uuid.New(), []string{"https://img.io/x.jpg"})
	require.NoError(t, err)

	err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		if err := books.WithTx(tx).Create(ctx, book); err != nil {
			return err
		}
		if err := listings.WithTx(tx).Create(ctx, listing); err != nil {
			return err
		}
		return images.WithTx(tx).CreateMultiple(ctx, bad)
	})
	require.ErrorIs(t, err, store.ErrInvalidEntity)

	_, err = books.GetByID(ctx, book.ID)
	assert.ErrorIs(t, err, store.ErrBookNotFound)
	_, err = listings.GetByID(ctx, listing.ID)
	assert.ErrorIs(t, err, store.ErrListingNotFound)
}
