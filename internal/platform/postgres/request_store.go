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

const requestColumns = `id, user_id, book_title, author, isbn, desired_condition, description,
	status, created_at, updated_at`

// PostgresRequestStore implements the store.RequestStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRequestStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRequestStore creates a new PostgreSQL implementation of the RequestStore interface.
func NewPostgresRequestStore(db store.DBTX, logger *slog.Logger) *PostgresRequestStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRequestStore{
		db:     db,
		logger: logger.With(slog.String("component", "request_store")),
	}
}

var _ store.RequestStore = (*PostgresRequestStore)(nil)

// WithTx implements store.RequestStore.WithTx
func (s *PostgresRequestStore) WithTx(tx *sql.Tx) store.RequestStore {
	return &PostgresRequestStore{db: tx, logger: s.logger}
}

// Create implements store.RequestStore.Create
func (s *PostgresRequestStore) Create(ctx context.Context, req *domain.Request) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := req.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO requests (id, user_id, book_title, author, isbn, desired_condition,
			description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		req.ID,
		req.UserID,
		req.BookTitle,
		nullString(req.Author),
		nullString(req.ISBN),
		nullCondition(req.DesiredCondition),
		nullString(req.Description),
		string(req.Status),
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create request",
			slog.String("error", err.Error()),
			slog.String("request_id", req.ID.String()))
		return fmt.Errorf("failed to create request: %w", MapError(err))
	}

	log.Info("request created",
		slog.String("request_id", req.ID.String()),
		slog.String("user_id", req.UserID.String()))
	return nil
}

// GetByID implements store.RequestStore.GetByID
func (s *PostgresRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	return s.get(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1`, id)
}

// GetForUpdate implements store.RequestStore.GetForUpdate
func (s *PostgresRequestStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	return s.get(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1 FOR UPDATE`, id)
}

func (s *PostgresRequestStore) get(ctx context.Context, query string, id uuid.UUID) (*domain.Request, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	req, err := scanRequest(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("request not found", slog.String("request_id", id.String()))
			return nil, store.ErrRequestNotFound
		}
		log.Error("failed to get request",
			slog.String("error", err.Error()),
			slog.String("request_id", id.String()))
		return nil, fmt.Errorf("failed to get request: %w", MapError(err))
	}
	return req, nil
}

// List implements store.RequestStore.List
func (s *PostgresRequestStore) List(ctx context.Context, filter store.RequestFilter) ([]*domain.Request, error) {
	page := filter.Page.Normalize()

	var w whereBuilder
	if filter.Status != nil {
		w.add("status = $%d", string(*filter.Status))
	}
	if filter.UserID != nil {
		w.add("user_id = $%d", *filter.UserID)
	}
	query := `SELECT ` + requestColumns + ` FROM requests` + w.sql() +
		` ORDER BY created_at DESC` + w.page(page.Limit, page.Offset)

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list requests",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list requests: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	requests := make([]*domain.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", MapError(err))
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", MapError(err))
	}
	return requests, nil
}

// Update implements store.RequestStore.Update
func (s *PostgresRequestStore) Update(ctx context.Context, req *domain.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE requests
		SET book_title = $2, author = $3, isbn = $4, desired_condition = $5,
			description = $6, status = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		req.ID,
		req.BookTitle,
		nullString(req.Author),
		nullString(req.ISBN),
		nullCondition(req.DesiredCondition),
		nullString(req.Description),
		string(req.Status),
		req.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update request",
			slog.String("error", err.Error()),
			slog.String("request_id", req.ID.String()))
		return fmt.Errorf("failed to update request: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrRequestNotFound)
}

// Delete implements store.RequestStore.Delete
func (s *PostgresRequestStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete request",
			slog.String("error", err.Error()),
			slog.String("request_id", id.String()))
		return fmt.Errorf("failed to delete request: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrRequestNotFound)
}

func scanRequest(row rowScanner) (*domain.Request, error) {
	var (
		r           domain.Request
		author      sql.NullString
		isbn        sql.NullString
		desired     sql.NullString
		description sql.NullString
		status      string
	)
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.BookTitle,
		&author,
		&isbn,
		&desired,
		&description,
		&status,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Author = stringPtr(author)
	r.ISBN = stringPtr(isbn)
	r.Description = stringPtr(description)
	r.Status = domain.RequestStatus(status)
	if desired.Valid {
		c := domain.Condition(desired.String)
		r.DesiredCondition = &c
	}
	return &r, nil
}

func nullCondition(c *domain.Condition) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*c), Valid: true}
}
