package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/platform/logger"
	"github.com/gmubooktrading/api/internal/store"
	"github.com/google/uuid"
)

// CreateListingInput holds a validated listing create request. When BookID
// is nil a book is created from Title, Author and ISBN.
type CreateListingInput struct {
	BookID            *uuid.UUID
	Title             string
	Author            *string
	ISBN              *string
	Type              domain.ListingType
	Price             float64
	Condition         domain.Condition
	Description       *string
	RentDurationValue *int
	RentDurationUnit  *string
	Images            []string
}

// UpdateListingInput holds a partial update. Nil fields are left unchanged.
type UpdateListingInput struct {
	Type              *domain.ListingType
	Price             *float64
	Condition         *domain.Condition
	Description       *string
	RentDurationValue *int
	RentDurationUnit  *string
	Status            *domain.ListingStatus
}

// ListingService provides listing operations.
type ListingService interface {
	ListListings(ctx context.Context, filter store.ListingFilter) ([]ListingView, error)

	// GetListing returns store.ErrListingNotFound when id does not exist.
	GetListing(ctx context.Context, id uuid.UUID) (*ListingView, error)

	// CreateListing creates the book (if needed), the listing and its images
	// in one transaction.
	CreateListing(ctx context.Context, userID uuid.UUID, in CreateListingInput) (*ListingView, error)

	// UpdateListing applies in to a listing owned by userID.
	UpdateListing(ctx context.Context, userID, id uuid.UUID, in UpdateListingInput) (*ListingView, error)

	// DeleteListing removes a listing owned by userID together with its images.
	DeleteListing(ctx context.Context, userID, id uuid.UUID) error

	// AddImages attaches urls to a listing owned by userID and returns how
	// many were added.
	AddImages(ctx context.Context, userID, id uuid.UUID, urls []string) (int, error)

	// DeleteImage removes one image of a listing owned by userID.
	DeleteImage(ctx context.Context, userID, listingID, imageID uuid.UUID) error
}

type listingServiceImpl struct {
	db       *sql.DB
	listings store.ListingStore
	images   store.ListingImageStore
	books    store.BookStore
	enrich   *enricher
	logger   *slog.Logger
}

// NewListingService creates a new ListingService.
// It returns an error if any of the required dependencies are nil.
func NewListingService(
	db *sql.DB,
	listings store.ListingStore,
	images store.ListingImageStore,
	books store.BookStore,
	profiles store.ProfileStore,
	logger *slog.Logger,
) (ListingService, error) {
	switch {
	case db == nil:
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	case listings == nil:
		return nil, domain.NewValidationError("listings", "cannot be nil", domain.ErrValidation)
	case images == nil:
		return nil, domain.NewValidationError("images", "cannot be nil", domain.ErrValidation)
	case books == nil:
		return nil, domain.NewValidationError("books", "cannot be nil", domain.ErrValidation)
	case profiles == nil:
		return nil, domain.NewValidationError("profiles", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "listing_service"))

	return &listingServiceImpl{
		db:       db,
		listings: listings,
		images:   images,
		books:    books,
		enrich:   &enricher{books: books, images: images, profiles: profiles, logger: logger},
		logger:   logger,
	}, nil
}

func (s *listingServiceImpl) ListListings(ctx context.Context, filter store.ListingFilter) ([]ListingView, error) {
	rows, err := s.listings.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("listing", "list", err)
	}
	return s.enrich.listings(ctx, rows), nil
}

func (s *listingServiceImpl) GetListing(ctx context.Context, id uuid.UUID) (*ListingView, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrListingNotFound
		}
		return nil, NewServiceError("listing", "get", err)
	}
	view := s.enrich.listings(ctx, []*domain.Listing{listing})[0]
	return &view, nil
}

func (s *listingServiceImpl) CreateListing(
	ctx context.Context,
	userID uuid.UUID,
	in CreateListingInput,
) (*ListingView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Everything is validated before the transaction starts.
	var newBook *domain.Book
	bookID := in.BookID
	if bookID == nil {
		book, err := domain.NewBook(in.Title, in.Author, in.ISBN)
		if err != nil {
			return nil, err
		}
		newBook = book
		bookID = &book.ID
	}

	listing, err := domain.NewListing(userID, bookID, in.Type, in.Price, in.Condition,
		in.Description, in.RentDurationValue, in.RentDurationUnit)
	if err != nil {
		return nil, err
	}

	images, err := domain.NewListingImages(listing.ID, in.Images)
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		books := s.books.WithTx(tx)
		if newBook != nil {
			if err := books.Create(ctx, newBook); err != nil {
				return err
			}
		} else if _, err := books.GetByID(ctx, *bookID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return bookReferenceError()
			}
			return err
		}

		if err := s.listings.WithTx(tx).Create(ctx, listing); err != nil {
			if errors.Is(err, store.ErrInvalidEntity) {
				return bookReferenceError()
			}
			return err
		}

		if len(images) > 0 {
			return s.images.WithTx(tx).CreateMultiple(ctx, images)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, NewServiceError("listing", "create", err)
	}

	log.Info("listing created",
		slog.String("listing_id", listing.ID.String()),
		slog.Bool("created_book", newBook != nil),
		slog.Int("images", len(images)))

	return s.GetListing(ctx, listing.ID)
}

func (s *listingServiceImpl) UpdateListing(
	ctx context.Context,
	userID, id uuid.UUID,
	in UpdateListingInput,
) (*ListingView, error) {
	err := s.withOwnedListing(ctx, userID, id, func(ctx context.Context, tx *sql.Tx, listing *domain.Listing) error {
		if err := applyListingUpdate(listing, in); err != nil {
			return err
		}
		return s.listings.WithTx(tx).Update(ctx, listing)
	})
	if err != nil {
		return nil, s.mutationError("update", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("listing updated",
		slog.String("listing_id", id.String()))
	return s.GetListing(ctx, id)
}

func (s *listingServiceImpl) DeleteListing(ctx context.Context, userID, id uuid.UUID) error {
	err := s.withOwnedListing(ctx, userID, id, func(ctx context.Context, tx *sql.Tx, _ *domain.Listing) error {
		return s.listings.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return s.mutationError("delete", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("listing deleted",
		slog.String("listing_id", id.String()))
	return nil
}

func (s *listingServiceImpl) AddImages(ctx context.Context, userID, id uuid.UUID, urls []string) (int, error) {
	images, err := domain.NewListingImages(id, urls)
	if err != nil {
		return 0, err
	}
	if len(images) == 0 {
		return 0, domain.NewValidationError("images", "at least one image URL is required", domain.ErrValidation)
	}

	err = s.withOwnedListing(ctx, userID, id, func(ctx context.Context, tx *sql.Tx, _ *domain.Listing) error {
		return s.images.WithTx(tx).CreateMultiple(ctx, images)
	})
	if err != nil {
		return 0, s.mutationError("add_images", err)
	}
	return len(images), nil
}

func (s *listingServiceImpl) DeleteImage(ctx context.Context, userID, listingID, imageID uuid.UUID) error {
	err := s.withOwnedListing(ctx, userID, listingID, func(ctx context.Context, tx *sql.Tx, _ *domain.Listing) error {
		return s.images.WithTx(tx).Delete(ctx, listingID, imageID)
	})
	if err != nil {
		return s.mutationError("delete_image", err)
	}
	return nil
}

// withOwnedListing locks the listing row, checks that userID owns it and runs
// fn in the same transaction.
func (s *listingServiceImpl) withOwnedListing(
	ctx context.Context,
	userID, id uuid.UUID,
	fn func(ctx context.Context, tx *sql.Tx, listing *domain.Listing) error,
) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		listing, err := s.listings.WithTx(tx).GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return store.ErrListingNotFound
			}
			return err
		}
		if listing.UserID != userID {
			logger.FromContextOrDefault(ctx, s.logger).Debug("listing mutation by non-owner",
				slog.String("listing_id", id.String()),
				slog.String("user_id", userID.String()))
			return ErrNotOwned
		}
		return fn(ctx, tx, listing)
	})
}

// mutationError passes expected outcomes through and wraps the rest.
func (s *listingServiceImpl) mutationError(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrValidation):
		return err
	}
	return NewServiceError("listing", op, err)
}

// applyListingUpdate merges in into listing and revalidates the result,
// including the rent duration rule against the merged values.
func applyListingUpdate(listing *domain.Listing, in UpdateListingInput) error {
	if in.Type != nil {
		listing.Type = *in.Type
	}
	if in.Price != nil {
		listing.Price = *in.Price
	}
	if in.Condition != nil {
		listing.Condition = *in.Condition
	}
	if in.Description != nil {
		listing.Description = in.Description
		if *in.Description == "" {
			listing.Description = nil
		}
	}
	if in.RentDurationValue != nil {
		listing.RentDurationValue = in.RentDurationValue
	}
	if in.RentDurationUnit != nil {
		listing.RentDurationUnit = in.RentDurationUnit
	}
	listing.NormalizeRentDuration()

	if in.Status != nil {
		if err := listing.TransitionTo(*in.Status); err != nil {
			return err
		}
	}
	if err := listing.Validate(); err != nil {
		return err
	}
	listing.UpdatedAt = time.Now().UTC()
	return nil
}

func bookReferenceError() error {
	return domain.NewValidationError("book_id", "book does not exist", ErrBookReference)
}
