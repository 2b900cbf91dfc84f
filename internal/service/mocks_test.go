package service

import (
	"context"
	"database/sql"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Store mocks return themselves from WithTx so expectations cover both the
// pooled and the transactional paths.

// MockBookStore mocks the store.BookStore interface
type MockBookStore struct {
	mock.Mock
}

func (m *MockBookStore) Create(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *MockBookStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Book, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*domain.Book), args.Error(1)
}

func (m *MockBookStore) List(ctx context.Context, filter store.BookFilter) ([]*domain.Book, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Book), args.Error(1)
}

func (m *MockBookStore) WithTx(*sql.Tx) store.BookStore {
	return m
}

// MockListingStore mocks the store.ListingStore interface
type MockListingStore struct {
	mock.Mock
}

func (m *MockListingStore) Create(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingStore) List(ctx context.Context, filter store.ListingFilter) ([]*domain.Listing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}

func (m *MockListingStore) Update(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockListingStore) WithTx(*sql.Tx) store.ListingStore {
	return m
}

// MockListingImageStore mocks the store.ListingImageStore interface
type MockListingImageStore struct {
	mock.Mock
}

func (m *MockListingImageStore) CreateMultiple(ctx context.Context, images []domain.ListingImage) error {
	args := m.Called(ctx, images)
	return args.Error(0)
}

func (m *MockListingImageStore) ListByListingIDs(
	ctx context.Context,
	ids []uuid.UUID,
) (map[uuid.UUID][]domain.ListingImage, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID][]domain.ListingImage), args.Error(1)
}

func (m *MockListingImageStore) Delete(ctx context.Context, listingID, imageID uuid.UUID) error {
	args := m.Called(ctx, listingID, imageID)
	return args.Error(0)
}

func (m *MockListingImageStore) WithTx(*sql.Tx) store.ListingImageStore {
	return m
}

// MockRequestStore mocks the store.RequestStore interface
type MockRequestStore struct {
	mock.Mock
}

func (m *MockRequestStore) Create(ctx context.Context, req *domain.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Request), args.Error(1)
}

func (m *MockRequestStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Request), args.Error(1)
}

func (m *MockRequestStore) List(ctx context.Context, filter store.RequestFilter) ([]*domain.Request, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Request), args.Error(1)
}

func (m *MockRequestStore) Update(ctx context.Context, req *domain.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRequestStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRequestStore) WithTx(*sql.Tx) store.RequestStore {
	return m
}

// MockProfileStore mocks the store.ProfileStore interface
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Profile, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*domain.Profile), args.Error(1)
}

func (m *MockProfileStore) Upsert(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}
