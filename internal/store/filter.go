package store

import (
	"github.com/gmubooktrading/api/internal/domain"
	"github.com/google/uuid"
)

// Paging defaults and bounds for list queries.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Page selects a window of rows ordered by created_at descending.
type Page struct {
	Limit  int
	Offset int
}

// Normalize fills in the default limit. Bounds are validated by callers.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// BookFilter narrows a book listing.
type BookFilter struct {
	Active *bool
	ISBN   string
	Page
}

// ListingFilter narrows a listing query. Nil fields are not filtered on.
type ListingFilter struct {
	Status *domain.ListingStatus
	Type   *domain.ListingType
	UserID *uuid.UUID
	Page
}

// RequestFilter narrows a request query. Nil fields are not filtered on.
type RequestFilter struct {
	Status *domain.RequestStatus
	UserID *uuid.UUID
	Page
}
