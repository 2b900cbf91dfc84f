package store

import (
	"context"
	"database/sql"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/google/uuid"
)

// RequestStore defines the interface for book request persistence.
type RequestStore interface {
	Create(ctx context.Context, req *domain.Request) error

	// GetByID returns ErrRequestNotFound if the request does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error)

	// GetForUpdate locks the row until the enclosing transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Request, error)

	List(ctx context.Context, filter RequestFilter) ([]*domain.Request, error)
	Update(ctx context.Context, req *domain.Request) error
	Delete(ctx context.Context, id uuid.UUID) error
	WithTx(tx *sql.Tx) RequestStore
}
