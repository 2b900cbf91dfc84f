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

const listingColumns = `id, user_id, book_id, type, price, condition, description,
	rent_duration_value, rent_duration_unit, status, created_at, updated_at`

// PostgresListingStore implements the store.ListingStore interface
// using a PostgreSQL database as the storage backend.
type PostgresListingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresListingStore creates a new PostgreSQL implementation of the ListingStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresListingStore(db store.DBTX, logger *slog.Logger) *PostgresListingStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresListingStore{
		db:     db,
		logger: logger.With(slog.String("component", "listing_store")),
	}
}

// Ensure PostgresListingStore implements store.ListingStore interface
var _ store.ListingStore = (*PostgresListingStore)(nil)

// WithTx implements store.ListingStore.WithTx
func (s *PostgresListingStore) WithTx(tx *sql.Tx) store.ListingStore {
	return &PostgresListingStore{db: tx, logger: s.logger}
}

// Create implements store.ListingStore.Create
// Returns store.ErrInvalidEntity if the referenced book does not exist.
func (s *PostgresListingStore) Create(ctx context.Context, listing *domain.Listing) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := listing.Validate(); err != nil {
		log.Warn("listing validation failed during create",
			slog.String("error", err.Error()),
			slog.String("listing_id", listing.ID.String()))
		return err
	}

	query := `
		INSERT INTO listings (id, user_id, book_id, type, price, condition, description,
			rent_duration_value, rent_duration_unit, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		listing.ID,
		listing.UserID,
		nullUUID(listing.BookID),
		string(listing.Type),
		listing.Price,
		string(listing.Condition),
		nullString(listing.Description),
		nullInt32(listing.RentDurationValue),
		nullString(listing.RentDurationUnit),
		string(listing.Status),
		listing.CreatedAt,
		listing.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during listing creation",
				slog.String("listing_id", listing.ID.String()))
			return fmt.Errorf("%w: referenced book does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", listing.ID.String()),
			slog.String("user_id", listing.UserID.String()))
		return fmt.Errorf("failed to create listing: %w", MapError(err))
	}

	log.Info("listing created",
		slog.String("listing_id", listing.ID.String()),
		slog.String("user_id", listing.UserID.String()),
		slog.String("type", string(listing.Type)))
	return nil
}

// GetByID implements store.ListingStore.GetByID
// Returns store.ErrListingNotFound if the listing does not exist.
func (s *PostgresListingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	return s.get(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
}

// GetForUpdate implements store.ListingStore.GetForUpdate
// The row stays locked until the enclosing transaction commits or rolls back.
func (s *PostgresListingStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	return s.get(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1 FOR UPDATE`, id)
}

func (s *PostgresListingStore) get(ctx context.Context, query string, id uuid.UUID) (*domain.Listing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	listing, err := scanListing(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("listing not found", slog.String("listing_id", id.String()))
			return nil, store.ErrListingNotFound
		}
		log.Error("failed to get listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", id.String()))
		return nil, fmt.Errorf("failed to get listing: %w", MapError(err))
	}
	return listing, nil
}

// List implements store.ListingStore.List
func (s *PostgresListingStore) List(ctx context.Context, filter store.ListingFilter) ([]*domain.Listing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	page := filter.Page.Normalize()

	var w whereBuilder
	if filter.Status != nil {
		w.add("status = $%d", string(*filter.Status))
	}
	if filter.Type != nil {
		w.add("type = $%d", string(*filter.Type))
	}
	if filter.UserID != nil {
		w.add("user_id = $%d", *filter.UserID)
	}
	query := `SELECT ` + listingColumns + ` FROM listings` + w.sql() +
		` ORDER BY created_at DESC` + w.page(page.Limit, page.Offset)

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		log.Error("failed to list listings", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list listings: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	listings := make([]*domain.Listing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", MapError(err))
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", MapError(err))
	}
	return listings, nil
}

// Update implements store.ListingStore.Update
// Returns store.ErrListingNotFound if the listing does not exist.
func (s *PostgresListingStore) Update(ctx context.Context, listing *domain.Listing) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := listing.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE listings
		SET book_id = $2, type = $3, price = $4, condition = $5, description = $6,
			rent_duration_value = $7, rent_duration_unit = $8, status = $9, updated_at = $10
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		listing.ID,
		nullUUID(listing.BookID),
		string(listing.Type),
		listing.Price,
		string(listing.Condition),
		nullString(listing.Description),
		nullInt32(listing.RentDurationValue),
		nullString(listing.RentDurationUnit),
		string(listing.Status),
		listing.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", listing.ID.String()))
		return fmt.Errorf("failed to update listing: %w", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrListingNotFound); err != nil {
		return err
	}

	log.Debug("listing updated",
		slog.String("listing_id", listing.ID.String()),
		slog.String("status", string(listing.Status)))
	return nil
}

// Delete implements store.ListingStore.Delete
// Images are removed by the listing_images foreign key's ON DELETE CASCADE.
func (s *PostgresListingStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", id.String()))
		return fmt.Errorf("failed to delete listing: %w", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrListingNotFound); err != nil {
		return err
	}

	log.Info("listing deleted", slog.String("listing_id", id.String()))
	return nil
}

func scanListing(row rowScanner) (*domain.Listing, error) {
	var (
		l           domain.Listing
		bookID      uuid.NullUUID
		listingType string
		condition   string
		status      string
		description sql.NullString
		rentValue   sql.NullInt32
		rentUnit    sql.NullString
	)
	err := row.Scan(
		&l.ID,
		&l.UserID,
		&bookID,
		&listingType,
		&l.Price,
		&condition,
		&description,
		&rentValue,
		&rentUnit,
		&status,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.BookID = uuidPtr(bookID)
	l.Type = domain.ListingType(listingType)
	l.Condition = domain.Condition(condition)
	l.Status = domain.ListingStatus(status)
	l.Description = stringPtr(description)
	l.RentDurationValue = intPtr(rentValue)
	l.RentDurationUnit = stringPtr(rentUnit)
	return &l, nil
}
