package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestStatus represents the lifecycle state of a book request.
type RequestStatus string

// Possible request status values
const (
	RequestStatusOpen      RequestStatus = "open"
	RequestStatusFulfilled RequestStatus = "fulfilled"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// Common validation errors for Request
var (
	ErrEmptyRequestID     = errors.New("request ID cannot be empty")
	ErrEmptyRequestUserID = errors.New("request user ID cannot be empty")
	ErrInvalidRequestStat = errors.New("status must be one of: open, fulfilled, cancelled")
)

// Request is a user's ask for a book nobody has listed yet.
type Request struct {
	ID               uuid.UUID     `json:"id"`
	UserID           uuid.UUID     `json:"user_id"`
	BookTitle        string        `json:"book_title"`
	Author           *string       `json:"author"`
	ISBN             *string       `json:"isbn"`
	DesiredCondition *Condition    `json:"desired_condition"`
	Description      *string       `json:"description"`
	Status           RequestStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// NewRequest creates an open request owned by userID.
func NewRequest(
	userID uuid.UUID,
	bookTitle string,
	author, isbn *string,
	desired *Condition,
	description *string,
) (*Request, error) {
	now := time.Now().UTC()
	req := &Request{
		ID:               uuid.New(),
		UserID:           userID,
		BookTitle:        strings.TrimSpace(bookTitle),
		Author:           TrimOptional(author),
		ISBN:             TrimOptional(isbn),
		DesiredCondition: desired,
		Description:      description,
		Status:           RequestStatusOpen,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate checks if the Request has valid data.
func (r *Request) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRequestID
	}
	if r.UserID == uuid.Nil {
		return ErrEmptyRequestUserID
	}
	if err := ValidateTitle(r.BookTitle); err != nil {
		return NewValidationError("book_title", err.Error(), err)
	}
	if err := ValidateAuthor(r.Author); err != nil {
		return NewValidationError("author", err.Error(), err)
	}
	if err := ValidateISBN(r.ISBN); err != nil {
		return NewValidationError("isbn", err.Error(), err)
	}
	if r.DesiredCondition != nil && !r.DesiredCondition.IsValid() {
		return NewValidationError("desired_condition", ErrInvalidCondition.Error(), ErrInvalidCondition)
	}
	if err := ValidateDescription(r.Description); err != nil {
		return NewValidationError("description", err.Error(), err)
	}
	if !r.Status.IsValid() {
		return NewValidationError("status", ErrInvalidRequestStat.Error(), ErrInvalidRequestStat)
	}
	return nil
}

// TransitionTo moves the request to next. Only open requests may change
// status; repeating the current status is a no-op.
func (r *Request) TransitionTo(next RequestStatus) error {
	if !next.IsValid() {
		return NewValidationError("status", ErrInvalidRequestStat.Error(), ErrInvalidRequestStat)
	}
	if next == r.Status {
		return nil
	}
	if r.Status != RequestStatusOpen || next == RequestStatusOpen {
		return statusTransitionError(string(r.Status), string(next))
	}

	r.Status = next
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// IsValid reports whether s is a known request status.
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusOpen, RequestStatusFulfilled, RequestStatusCancelled:
		return true
	default:
		return false
	}
}
