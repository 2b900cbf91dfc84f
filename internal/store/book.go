package store

import (
	"context"
	"database/sql"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/google/uuid"
)

// BookStore defines the interface for book data persistence.
type BookStore interface {
	// Create inserts a new book.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by its ID.
	// Returns ErrBookNotFound if the book does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)

	// GetByIDs retrieves all books whose ID is in ids, keyed by ID.
	// Missing IDs are simply absent from the result.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Book, error)

	// List returns books matching filter, newest first.
	List(ctx context.Context, filter BookFilter) ([]*domain.Book, error)

	// WithTx returns a BookStore bound to tx.
	WithTx(tx *sql.Tx) BookStore
}
