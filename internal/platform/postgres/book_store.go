package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/platform/logger"
	"github.com/gmubooktrading/api/internal/store"
	"github.com/google/uuid"
)

const bookColumns = `id, title, author, isbn, is_active, created_at`

// PostgresBookStore implements the store.BookStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBookStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBookStore creates a new PostgreSQL implementation of the BookStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresBookStore(db store.DBTX, logger *slog.Logger) *PostgresBookStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBookStore{
		db:     db,
		logger: logger.With(slog.String("component", "book_store")),
	}
}

// Ensure PostgresBookStore implements store.BookStore interface
var _ store.BookStore = (*PostgresBookStore)(nil)

// WithTx implements store.BookStore.WithTx
func (s *PostgresBookStore) WithTx(tx *sql.Tx) store.BookStore {
	return &PostgresBookStore{db: tx, logger: s.logger}
}

// Create implements store.BookStore.Create
func (s *PostgresBookStore) Create(ctx context.Context, book *domain.Book) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := book.Validate(); err != nil {
		log.Warn("book validation failed during create",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()))
		return err
	}

	query := `
		INSERT INTO books (id, title, author, isbn, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		book.ID,
		book.Title,
		nullString(book.Author),
		nullString(book.ISBN),
		book.IsActive,
		book.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create book",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()))
		return fmt.Errorf("failed to create book: %w", MapError(err))
	}

	log.Debug("book created", slog.String("book_id", book.ID.String()))
	return nil
}

// GetByID implements store.BookStore.GetByID
// Returns store.ErrBookNotFound if the book does not exist.
func (s *PostgresBookStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	book, err := scanBook(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("book not found", slog.String("book_id", id.String()))
			return nil, store.ErrBookNotFound
		}
		log.Error("failed to get book by ID",
			slog.String("error", err.Error()),
			slog.String("book_id", id.String()))
		return nil, fmt.Errorf("failed to get book: %w", MapError(err))
	}
	return book, nil
}

// GetByIDs implements store.BookStore.GetByIDs
func (s *PostgresBookStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Book, error) {
	result := make(map[uuid.UUID]*domain.Book)
	keys := uuidStrings(ids)
	if len(keys) == 0 {
		return result, nil
	}

	query := `SELECT ` + bookColumns + ` FROM books WHERE id = ANY($1::uuid[])`
	rows, err := s.db.QueryContext(ctx, query, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", MapError(err))
		}
		result[book.ID] = book
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", MapError(err))
	}
	return result, nil
}

// List implements store.BookStore.List
func (s *PostgresBookStore) List(ctx context.Context, filter store.BookFilter) ([]*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	page := filter.Page.Normalize()

	var w whereBuilder
	if filter.Active != nil {
		w.add("is_active = $%d", *filter.Active)
	}
	if filter.ISBN != "" {
		w.add("isbn = $%d", filter.ISBN)
	}
	query := `SELECT ` + bookColumns + ` FROM books` + w.sql() +
		` ORDER BY created_at DESC` + w.page(page.Limit, page.Offset)

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		log.Error("failed to list books", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list books: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	books := make([]*domain.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", MapError(err))
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", MapError(err))
	}
	return books, nil
}

func scanBook(row rowScanner) (*domain.Book, error) {
	var (
		book   domain.Book
		author sql.NullString
		isbn   sql.NullString
	)
	if err := row.Scan(&book.ID, &book.Title, &author, &isbn, &book.IsActive, &book.CreatedAt); err != nil {
		return nil, err
	}
	book.Author = stringPtr(author)
	book.ISBN = stringPtr(isbn)
	return &book, nil
}
