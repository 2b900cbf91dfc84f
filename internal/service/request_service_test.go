package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRequestFixture(t *testing.T) (RequestService, sqlmock.Sqlmock, *MockRequestStore, *MockProfileStore) {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)

	requests := new(MockRequestStore)
	profiles := new(MockProfileStore)
	svc, err := NewRequestService(db, requests, profiles, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, sqlMock.ExpectationsWereMet())
		requests.AssertExpectations(t)
		profiles.AssertExpectations(t)
		_ = db.Close()
	})
	return svc, sqlMock, requests, profiles
}

func openRequest(owner uuid.UUID) *domain.Request {
	req, err := domain.NewRequest(owner, gofakeit.BookTitle(), nil, nil, nil, nil)
	if err != nil {
		panic(err)
	}
	return req
}

func TestCreateRequest(t *testing.T) {
	t.Parallel()
	svc, _, requests, profiles := newRequestFixture(t)
	owner := uuid.New()
	name := "Avery"
	desired := domain.ConditionLikeNew

	requests.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Request) bool {
		return r.UserID == owner && r.Status == domain.RequestStatusOpen && r.BookTitle == "Discrete Math"
	})).Return(nil).Once()
	profiles.On("GetByIDs", mock.Anything, []uuid.UUID{owner}).
		Return(map[uuid.UUID]*domain.Profile{owner: {ID: owner, DisplayName: &name}}, nil).Once()

	view, err := svc.CreateRequest(context.Background(), owner, CreateRequestInput{
		BookTitle:        "  Discrete Math ",
		DesiredCondition: &desired,
	})
	require.NoError(t, err)
	assert.Equal(t, "Discrete Math", view.BookTitle)
	require.NotNil(t, view.RequesterName)
	assert.Equal(t, "Avery", *view.RequesterName)
}

func TestCreateRequest_InvalidCondition(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newRequestFixture(t)
	bad := domain.Condition("pristine")

	_, err := svc.CreateRequest(context.Background(), uuid.New(), CreateRequestInput{
		BookTitle:        "Discrete Math",
		DesiredCondition: &bad,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCondition)
}

func TestUpdateRequest(t *testing.T) {
	t.Parallel()

	t.Run("fulfils open request", func(t *testing.T) {
		t.Parallel()
		svc, sqlMock, requests, profiles := newRequestFixture(t)
		owner := uuid.New()
		req := openRequest(owner)
		fulfilled := domain.RequestStatusFulfilled
		isbn := " 9780131103627 "

		sqlMock.ExpectBegin()
		requests.On("GetForUpdate", mock.Anything, req.ID).Return(req, nil).Once()
		requests.On("Update", mock.Anything, req).Return(nil).Once()
		sqlMock.ExpectCommit()

		// The returned row is read back after commit, so store-set columns
		// such as updated_at reach the caller.
		stored := *req
		stored.Status = domain.RequestStatusFulfilled
		isbnStored := "9780131103627"
		stored.ISBN = &isbnStored
		stored.UpdatedAt = req.UpdatedAt.Add(time.Minute)
		requests.On("GetByID", mock.Anything, req.ID).Return(&stored, nil).Once()
		profiles.On("GetByIDs", mock.Anything, []uuid.UUID{owner}).
			Return(map[uuid.UUID]*domain.Profile{}, nil).Once()

		view, err := svc.UpdateRequest(context.Background(), owner, req.ID,
			UpdateRequestInput{Status: &fulfilled, ISBN: &isbn})
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusFulfilled, view.Status)
		require.NotNil(t, view.ISBN)
		assert.Equal(t, "9780131103627", *view.ISBN)
		assert.Equal(t, stored.UpdatedAt, view.UpdatedAt)
		assert.Nil(t, view.RequesterName)
	})

	t.Run("cannot reopen", func(t *testing.T) {
		t.Parallel()
		svc, sqlMock, requests, _ := newRequestFixture(t)
		owner := uuid.New()
		req := openRequest(owner)
		req.Status = domain.RequestStatusCancelled
		open := domain.RequestStatusOpen

		sqlMock.ExpectBegin()
		requests.On("GetForUpdate", mock.Anything, req.ID).Return(req, nil).Once()
		sqlMock.ExpectRollback()

		_, err := svc.UpdateRequest(context.Background(), owner, req.ID, UpdateRequestInput{Status: &open})
		assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	})

	t.Run("blank title", func(t *testing.T) {
		t.Parallel()
		svc, sqlMock, requests, _ := newRequestFixture(t)
		owner := uuid.New()
		req := openRequest(owner)
		blank := "   "

		sqlMock.ExpectBegin()
		requests.On("GetForUpdate", mock.Anything, req.ID).Return(req, nil).Once()
		sqlMock.ExpectRollback()

		_, err := svc.UpdateRequest(context.Background(), owner, req.ID, UpdateRequestInput{BookTitle: &blank})
		assert.ErrorIs(t, err, domain.ErrEmptyBookTitle)
	})

	t.Run("non-owner", func(t *testing.T) {
		t.Parallel()
		svc, sqlMock, requests, _ := newRequestFixture(t)
		req := openRequest(uuid.New())

		sqlMock.ExpectBegin()
		requests.On("GetForUpdate", mock.Anything, req.ID).Return(req, nil).Once()
		sqlMock.ExpectRollback()

		_, err := svc.UpdateRequest(context.Background(), uuid.New(), req.ID, UpdateRequestInput{})
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})
}

func TestDeleteRequest(t *testing.T) {
	t.Parallel()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		svc, sqlMock, requests, _ := newRequestFixture(t)
		id := uuid.New()

		sqlMock.ExpectBegin()
		requests.On("GetForUpdate", mock.Anything, id).Return(nil, store.ErrNotFound).Once()
		sqlMock.ExpectRollback()

		err := svc.DeleteRequest(context.Background(), uuid.New(), id)
		assert.ErrorIs(t, err, store.ErrRequestNotFound)
	})

	t.Run("begin failure", func(t *testing.T) {
		t.Parallel()
		svc, sqlMock, _, _ := newRequestFixture(t)

		sqlMock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		err := svc.DeleteRequest(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, store.ErrTransactionFailed)

		var serviceErr *ServiceError
		require.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, "request", serviceErr.Service)
	})
}

func TestListRequests(t *testing.T) {
	t.Parallel()
	svc, _, requests, profiles := newRequestFixture(t)

	a, b := openRequest(uuid.New()), openRequest(uuid.New())
	status := domain.RequestStatusOpen
	filter := store.RequestFilter{Status: &status}
	name := "Sam"

	requests.On("List", mock.Anything, filter).Return([]*domain.Request{a, b}, nil).Once()
	profiles.On("GetByIDs", mock.Anything, []uuid.UUID{a.UserID, b.UserID}).
		Return(map[uuid.UUID]*domain.Profile{b.UserID: {ID: b.UserID, DisplayName: &name}}, nil).Once()

	views, err := svc.ListRequests(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Nil(t, views[0].RequesterName)
	require.NotNil(t, views[1].RequesterName)
	assert.Equal(t, "Sam", *views[1].RequesterName)
}

func TestGetRequest_NotFound(t *testing.T) {
	t.Parallel()
	svc, _, requests, _ := newRequestFixture(t)
	id := uuid.New()

	requests.On("GetByID", mock.Anything, id).Return(nil, store.ErrRequestNotFound).Once()

	_, err := svc.GetRequest(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrRequestNotFound)
}
