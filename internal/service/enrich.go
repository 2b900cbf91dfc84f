package service

import (
	"context"
	"log/slog"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/platform/logger"
	"github.com/gmubooktrading/api/internal/redact"
	"github.com/gmubooktrading/api/internal/store"
	"github.com/google/uuid"
)

// ListingView is a listing with its images, book and seller name attached.
// Book and SellerName are nil when the relation is missing or could not be
// loaded.
type ListingView struct {
	*domain.Listing
	Images     []domain.ListingImage
	Book       *domain.Book
	SellerName *string
}

// RequestView is a request with the requester's display name attached.
type RequestView struct {
	*domain.Request
	RequesterName *string
}

// enricher joins related rows onto pages of listings and requests using one
// query per relation. Every lookup is best effort: a failure is logged and
// leaves the affected fields empty.
type enricher struct {
	books    store.BookStore
	images   store.ListingImageStore
	profiles store.ProfileStore
	logger   *slog.Logger
}

func (e *enricher) listings(ctx context.Context, rows []*domain.Listing) []ListingView {
	views := make([]ListingView, len(rows))
	if len(rows) == 0 {
		return views
	}

	listingIDs := make([]uuid.UUID, 0, len(rows))
	bookIDs := make([]uuid.UUID, 0, len(rows))
	userIDs := make([]uuid.UUID, 0, len(rows))
	for _, l := range rows {
		listingIDs = append(listingIDs, l.ID)
		userIDs = append(userIDs, l.UserID)
		if l.BookID != nil {
			bookIDs = append(bookIDs, *l.BookID)
		}
	}

	images := e.loadImages(ctx, listingIDs)
	books := e.loadBooks(ctx, bookIDs)
	names := e.loadNames(ctx, userIDs)

	for i, l := range rows {
		views[i] = ListingView{
			Listing:    l,
			Images:     images[l.ID],
			SellerName: names[l.UserID],
		}
		if views[i].Images == nil {
			views[i].Images = []domain.ListingImage{}
		}
		if l.BookID != nil {
			views[i].Book = books[*l.BookID]
		}
	}
	return views
}

func (e *enricher) requests(ctx context.Context, rows []*domain.Request) []RequestView {
	views := make([]RequestView, len(rows))
	if len(rows) == 0 {
		return views
	}

	userIDs := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		userIDs = append(userIDs, r.UserID)
	}
	names := e.loadNames(ctx, userIDs)

	for i, r := range rows {
		views[i] = RequestView{Request: r, RequesterName: names[r.UserID]}
	}
	return views
}

func (e *enricher) loadImages(ctx context.Context, ids []uuid.UUID) map[uuid.UUID][]domain.ListingImage {
	images, err := e.images.ListByListingIDs(ctx, ids)
	if err != nil {
		e.warn(ctx, "images", err)
		return nil
	}
	return images
}

func (e *enricher) loadBooks(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]*domain.Book {
	if len(ids) == 0 {
		return nil
	}
	books, err := e.books.GetByIDs(ctx, ids)
	if err != nil {
		e.warn(ctx, "books", err)
		return nil
	}
	return books
}

func (e *enricher) loadNames(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]*string {
	profiles, err := e.profiles.GetByIDs(ctx, ids)
	if err != nil {
		e.warn(ctx, "profiles", err)
		return nil
	}
	names := make(map[uuid.UUID]*string, len(profiles))
	for id, p := range profiles {
		names[id] = p.DisplayName
	}
	return names
}

func (e *enricher) warn(ctx context.Context, relation string, err error) {
	logger.FromContextOrDefault(ctx, e.logger).Warn("enrichment lookup failed",
		slog.String("relation", relation),
		redact.ErrorAttr(err))
}
