package store

import (
	"context"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/google/uuid"
)

// ProfileStore reads public user profiles.
type ProfileStore interface {
	// GetByIDs returns the profiles for ids, keyed by user ID.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Profile, error)

	// Upsert creates or renames a profile.
	Upsert(ctx context.Context, profile *domain.Profile) error
}
