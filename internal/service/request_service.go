package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/platform/logger"
	"github.com/gmubooktrading/api/internal/store"
	"github.com/google/uuid"
)

// CreateRequestInput holds a validated request create payload.
type CreateRequestInput struct {
	BookTitle        string
	Author           *string
	ISBN             *string
	DesiredCondition *domain.Condition
	Description      *string
}

// UpdateRequestInput holds a partial update. Nil fields are left unchanged.
type UpdateRequestInput struct {
	BookTitle        *string
	Author           *string
	ISBN             *string
	DesiredCondition *domain.Condition
	Description      *string
	Status           *domain.RequestStatus
}

// RequestService provides book request operations.
type RequestService interface {
	ListRequests(ctx context.Context, filter store.RequestFilter) ([]RequestView, error)

	// GetRequest returns store.ErrRequestNotFound when id does not exist.
	GetRequest(ctx context.Context, id uuid.UUID) (*RequestView, error)

	CreateRequest(ctx context.Context, userID uuid.UUID, in CreateRequestInput) (*RequestView, error)

	// UpdateRequest applies in to a request owned by userID.
	UpdateRequest(ctx context.Context, userID, id uuid.UUID, in UpdateRequestInput) (*RequestView, error)

	// DeleteRequest removes a request owned by userID.
	DeleteRequest(ctx context.Context, userID, id uuid.UUID) error
}

type requestServiceImpl struct {
	db       *sql.DB
	requests store.RequestStore
	enrich   *enricher
	logger   *slog.Logger
}

// NewRequestService creates a new RequestService.
func NewRequestService(
	db *sql.DB,
	requests store.RequestStore,
	profiles store.ProfileStore,
	logger *slog.Logger,
) (RequestService, error) {
	switch {
	case db == nil:
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	case requests == nil:
		return nil, domain.NewValidationError("requests", "cannot be nil", domain.ErrValidation)
	case profiles == nil:
		return nil, domain.NewValidationError("profiles", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "request_service"))

	return &requestServiceImpl{
		db:       db,
		requests: requests,
		enrich:   &enricher{profiles: profiles, logger: logger},
		logger:   logger,
	}, nil
}

func (s *requestServiceImpl) ListRequests(ctx context.Context, filter store.RequestFilter) ([]RequestView, error) {
	rows, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("request", "list", err)
	}
	return s.enrich.requests(ctx, rows), nil
}

func (s *requestServiceImpl) GetRequest(ctx context.Context, id uuid.UUID) (*RequestView, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrRequestNotFound
		}
		return nil, NewServiceError("request", "get", err)
	}
	view := s.enrich.requests(ctx, []*domain.Request{req})[0]
	return &view, nil
}

func (s *requestServiceImpl) CreateRequest(
	ctx context.Context,
	userID uuid.UUID,
	in CreateRequestInput,
) (*RequestView, error) {
	req, err := domain.NewRequest(userID, in.BookTitle, in.Author, in.ISBN, in.DesiredCondition, in.Description)
	if err != nil {
		return nil, err
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, NewServiceError("request", "create", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("request created",
		slog.String("request_id", req.ID.String()))

	view := s.enrich.requests(ctx, []*domain.Request{req})[0]
	return &view, nil
}

func (s *requestServiceImpl) UpdateRequest(
	ctx context.Context,
	userID, id uuid.UUID,
	in UpdateRequestInput,
) (*RequestView, error) {
	var updated *domain.Request
	err := s.withOwnedRequest(ctx, userID, id, func(ctx context.Context, tx *sql.Tx, req *domain.Request) error {
		if err := applyRequestUpdate(req, in); err != nil {
			return err
		}
		updated = req
		return s.requests.WithTx(tx).Update(ctx, req)
	})
	if err != nil {
		return nil, s.mutationError("update", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("request updated",
		slog.String("request_id", id.String()),
		slog.String("status", string(updated.Status)))
	return s.GetRequest(ctx, id)
}

func (s *requestServiceImpl) DeleteRequest(ctx context.Context, userID, id uuid.UUID) error {
	err := s.withOwnedRequest(ctx, userID, id, func(ctx context.Context, tx *sql.Tx, _ *domain.Request) error {
		return s.requests.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return s.mutationError("delete", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("request deleted",
		slog.String("request_id", id.String()))
	return nil
}

func (s *requestServiceImpl) withOwnedRequest(
	ctx context.Context,
	userID, id uuid.UUID,
	fn func(ctx context.Context, tx *sql.Tx, req *domain.Request) error,
) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		req, err := s.requests.WithTx(tx).GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return store.ErrRequestNotFound
			}
			return err
		}
		if req.UserID != userID {
			return ErrNotOwned
		}
		return fn(ctx, tx, req)
	})
}

func (s *requestServiceImpl) mutationError(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrValidation):
		return err
	}
	return NewServiceError("request", op, err)
}

func applyRequestUpdate(req *domain.Request, in UpdateRequestInput) error {
	if in.BookTitle != nil {
		req.BookTitle = strings.TrimSpace(*in.BookTitle)
	}
	if in.Author != nil {
		req.Author = domain.TrimOptional(in.Author)
	}
	if in.ISBN != nil {
		req.ISBN = domain.TrimOptional(in.ISBN)
	}
	if in.DesiredCondition != nil {
		req.DesiredCondition = in.DesiredCondition
	}
	if in.Description != nil {
		req.Description = in.Description
		if *in.Description == "" {
			req.Description = nil
		}
	}
	if in.Status != nil {
		if err := req.TransitionTo(*in.Status); err != nil {
			return err
		}
	}
	if err := req.Validate(); err != nil {
		return err
	}
	req.UpdatedAt = time.Now().UTC()
	return nil
}
