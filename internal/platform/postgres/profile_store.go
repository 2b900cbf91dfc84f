package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/store"
	"github.com/google/uuid"
)

// PostgresProfileStore implements store.ProfileStore.
type PostgresProfileStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProfileStore creates a new PostgreSQL implementation of the ProfileStore interface.
func NewPostgresProfileStore(db store.DBTX, logger *slog.Logger) *PostgresProfileStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProfileStore{
		db:     db,
		logger: logger.With(slog.String("component", "profile_store")),
	}
}

var _ store.ProfileStore = (*PostgresProfileStore)(nil)

// GetByIDs implements store.ProfileStore.GetByIDs
func (s *PostgresProfileStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Profile, error) {
	result := make(map[uuid.UUID]*domain.Profile)
	keys := uuidStrings(ids)
	if len(keys) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name FROM profiles WHERE id = ANY($1::uuid[])`, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			p    domain.Profile
			name sql.NullString
		)
		if err := rows.Scan(&p.ID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", MapError(err))
		}
		p.DisplayName = stringPtr(name)
		result[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", MapError(err))
	}
	return result, nil
}

// Upsert implements store.ProfileStore.Upsert
func (s *PostgresProfileStore) Upsert(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name, updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, profile.ID, nullString(profile.DisplayName)); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", MapError(err))
	}
	return nil
}
