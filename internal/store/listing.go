package store

import (
	"context"
	"database/sql"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/google/uuid"
)

// ListingStore defines the interface for listing data persistence.
type ListingStore interface {
	// Create inserts a new listing.
	// Returns ErrInvalidEntity when the referenced book does not exist.
	Create(ctx context.Context, listing *domain.Listing) error

	// GetByID retrieves a listing by its ID.
	// Returns ErrListingNotFound if the listing does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)

	// GetForUpdate retrieves a listing and locks its row until the enclosing
	// transaction ends. It must be called on a store returned by WithTx.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Listing, error)

	// List returns listings matching filter, newest first.
	List(ctx context.Context, filter ListingFilter) ([]*domain.Listing, error)

	// Update writes every mutable column of listing.
	Update(ctx context.Context, listing *domain.Listing) error

	// Delete removes a listing. Its images are removed by the database's
	// ON DELETE CASCADE constraint.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a ListingStore bound to tx.
	WithTx(tx *sql.Tx) ListingStore
}

// ListingImageStore defines the interface for listing image persistence.
type ListingImageStore interface {
	// CreateMultiple inserts images in one statement.
	CreateMultiple(ctx context.Context, images []domain.ListingImage) error

	// ListByListingIDs returns the images of every listing in ids, keyed by
	// listing ID and ordered by creation time.
	ListByListingIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.ListingImage, error)

	// Delete removes imageID only when it belongs to listingID.
	// Returns ErrImageNotFound otherwise.
	Delete(ctx context.Context, listingID, imageID uuid.UUID) error

	// WithTx returns a ListingImageStore bound to tx.
	WithTx(tx *sql.Tx) ListingImageStore
}
