package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/platform/logger"
	"github.com/gmubooktrading/api/internal/store"
	"github.com/google/uuid"
)

// BookService provides catalog operations.
type BookService interface {
	// ListBooks returns books matching filter, newest first.
	ListBooks(ctx context.Context, filter store.BookFilter) ([]*domain.Book, error)

	// GetBook returns store.ErrBookNotFound when id does not exist.
	GetBook(ctx context.Context, id uuid.UUID) (*domain.Book, error)

	// CreateBook adds an active catalog entry.
	CreateBook(ctx context.Context, title string, author, isbn *string) (*domain.Book, error)
}

type bookServiceImpl struct {
	books  store.BookStore
	logger *slog.Logger
}

// NewBookService creates a new BookService.
// It returns an error if the store is nil.
func NewBookService(books store.BookStore, logger *slog.Logger) (BookService, error) {
	if books == nil {
		return nil, domain.NewValidationError("books", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &bookServiceImpl{
		books:  books,
		logger: logger.With(slog.String("component", "book_service")),
	}, nil
}

func (s *bookServiceImpl) ListBooks(ctx context.Context, filter store.BookFilter) ([]*domain.Book, error) {
	books, err := s.books.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("book", "list", err)
	}
	return books, nil
}

func (s *bookServiceImpl) GetBook(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrBookNotFound
		}
		return nil, NewServiceError("book", "get", err)
	}
	return book, nil
}

func (s *bookServiceImpl) CreateBook(ctx context.Context, title string, author, isbn *string) (*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	book, err := domain.NewBook(title, author, isbn)
	if err != nil {
		return nil, err
	}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, NewServiceError("book", "create", err)
	}

	log.Info("book created", slog.String("book_id", book.ID.String()))
	return book, nil
}
