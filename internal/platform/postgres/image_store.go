package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/platform/logger"
	"github.com/gmubooktrading/api/internal/store"
	"github.com/google/uuid"
)

// PostgresListingImageStore implements store.ListingImageStore.
type PostgresListingImageStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresListingImageStore creates a new PostgreSQL implementation of the ListingImageStore interface.
func NewPostgresListingImageStore(db store.DBTX, logger *slog.Logger) *PostgresListingImageStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresListingImageStore{
		db:     db,
		logger: logger.With(slog.String("component", "listing_image_store")),
	}
}

var _ store.ListingImageStore = (*PostgresListingImageStore)(nil)

// WithTx implements store.ListingImageStore.WithTx
func (s *PostgresListingImageStore) WithTx(tx *sql.Tx) store.ListingImageStore {
	return &PostgresListingImageStore{db: tx, logger: s.logger}
}

// CreateMultiple implements store.ListingImageStore.CreateMultiple
// All rows are written by a single multi-row INSERT.
func (s *PostgresListingImageStore) CreateMultiple(ctx context.Context, images []domain.ListingImage) error {
	if len(images) == 0 {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	values := make([]string, 0, len(images))
	args := make([]any, 0, len(images)*4)
	for i, img := range images {
		n := i * 4
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4))
		args = append(args, img.ID, img.ListingID, img.ImageURL, img.CreatedAt)
	}

	query := `INSERT INTO listing_images (id, listing_id, image_url, created_at) VALUES ` +
		strings.Join(values, ", ")
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert listing images",
			slog.String("error", err.Error()),
			slog.Int("count", len(images)))
		return fmt.Errorf("failed to insert listing images: %w", MapError(err))
	}

	log.Debug("listing images inserted", slog.Int("count", len(images)))
	return nil
}

// ListByListingIDs implements store.ListingImageStore.ListByListingIDs
func (s *PostgresListingImageStore) ListByListingIDs(
	ctx context.Context,
	ids []uuid.UUID,
) (map[uuid.UUID][]domain.ListingImage, error) {
	result := make(map[uuid.UUID][]domain.ListingImage)
	keys := uuidStrings(ids)
	if len(keys) == 0 {
		return result, nil
	}

	query := `
		SELECT id, listing_id, image_url, created_at
		FROM listing_images
		WHERE listing_id = ANY($1::uuid[])
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to query listing images: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var img domain.ListingImage
		if err := rows.Scan(&img.ID, &img.ListingID, &img.ImageURL, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan listing image: %w", MapError(err))
		}
		result[img.ListingID] = append(result[img.ListingID], img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listing images: %w", MapError(err))
	}
	return result, nil
}

// Delete implements store.ListingImageStore.Delete
// Returns store.ErrImageNotFound if the image does not belong to listingID.
func (s *PostgresListingImageStore) Delete(ctx context.Context, listingID, imageID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM listing_images WHERE id = $1 AND listing_id = $2`,
		imageID, listingID,
	)
	if err != nil {
		log.Error("failed to delete listing image",
			slog.String("error", err.Error()),
			slog.String("image_id", imageID.String()))
		return fmt.Errorf("failed to delete listing image: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrImageNotFound)
}
