package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/gmubooktrading/api/internal/api/shared"
	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/platform/logger"
	"github.com/gmubooktrading/api/internal/service"
	"github.com/gmubooktrading/api/internal/service/identity"
	"github.com/gmubooktrading/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// MockIdentityService is a mock implementation of identity.Service for testing
type MockIdentityService struct {
	SignupFn             func(ctx context.Context, email, password, fullName string) (*identity.SignupResult, error)
	LoginFn              func(ctx context.Context, email, password string) (*identity.LoginResult, error)
	LogoutFn             func(ctx context.Context, token string) error
	VerifyBearerTokenFn  func(ctx context.Context, token string) (*domain.Identity, error)
	ResendVerificationFn func(ctx context.Context, email string) error
	CheckVerificationFn  func(ctx context.Context, email string) (*domain.VerificationStatus, error)
	VerifyEmailFn        func(ctx context.Context, token, email string) (*domain.User, error)
	CurrentUserFn        func(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

var _ identity.Service = (*MockIdentityService)(nil)

func (m *MockIdentityService) Signup(
	ctx context.Context,
	email, password, fullName string,
) (*identity.SignupResult, error) {
	return m.SignupFn(ctx, email, password, fullName)
}

func (m *MockIdentityService) Login(ctx context.Context, email, password string) (*identity.LoginResult, error) {
	return m.LoginFn(ctx, email, password)
}

func (m *MockIdentityService) Logout(ctx context.Context, token string) error {
	if m.LogoutFn != nil {
		return m.LogoutFn(ctx, token)
	}
	return nil
}

func (m *MockIdentityService) VerifyBearerToken(ctx context.Context, token string) (*domain.Identity, error) {
	return m.VerifyBearerTokenFn(ctx, token)
}

func (m *MockIdentityService) ResendVerification(ctx context.Context, email string) error {
	return m.ResendVerificationFn(ctx, email)
}

func (m *MockIdentityService) CheckVerification(ctx context.Context, email string) (*domain.VerificationStatus, error) {
	return m.CheckVerificationFn(ctx, email)
}

func (m *MockIdentityService) VerifyEmail(ctx context.Context, token, email string) (*domain.User, error) {
	return m.VerifyEmailFn(ctx, token, email)
}

func (m *MockIdentityService) CurrentUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.CurrentUserFn(ctx, id)
}

// MockBookService is a mock implementation of service.BookService for testing
type MockBookService struct {
	ListBooksFn  func(ctx context.Context, filter store.BookFilter) ([]*domain.Book, error)
	GetBookFn    func(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	CreateBookFn func(ctx context.Context, title string, author, isbn *string) (*domain.Book, error)
}

var _ service.BookService = (*MockBookService)(nil)

func (m *MockBookService) ListBooks(ctx context.Context, filter store.BookFilter) ([]*domain.Book, error) {
	return m.ListBooksFn(ctx, filter)
}

func (m *MockBookService) GetBook(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	return m.GetBookFn(ctx, id)
}

func (m *MockBookService) CreateBook(ctx context.Context, title string, author, isbn *string) (*domain.Book, error) {
	return m.CreateBookFn(ctx, title, author, isbn)
}

// MockListingService is a mock implementation of service.ListingService for testing
type MockListingService struct {
	ListListingsFn  func(ctx context.Context, filter store.ListingFilter) ([]service.ListingView, error)
	GetListingFn    func(ctx context.Context, id uuid.UUID) (*service.ListingView, error)
	CreateListingFn func(ctx context.Context, userID uuid.UUID, in service.CreateListingInput) (*service.ListingView, error)
	UpdateListingFn func(
		ctx context.Context,
		userID, id uuid.UUID,
		in service.UpdateListingInput,
	) (*service.ListingView, error)
	DeleteListingFn func(ctx context.Context, userID, id uuid.UUID) error
	AddImagesFn     func(ctx context.Context, userID, id uuid.UUID, urls []string) (int, error)
	DeleteImageFn   func(ctx context.Context, userID, listingID, imageID uuid.UUID) error
}

var _ service.ListingService = (*MockListingService)(nil)

func (m *MockListingService) ListListings(ctx context.Context, filter store.ListingFilter) ([]service.ListingView, error) {
	return m.ListListingsFn(ctx, filter)
}

func (m *MockListingService) GetListing(ctx context.Context, id uuid.UUID) (*service.ListingView, error) {
	return m.GetListingFn(ctx, id)
}

func (m *MockListingService) CreateListing(
	ctx context.Context,
	userID uuid.UUID,
	in service.CreateListingInput,
) (*service.ListingView, error) {
	return m.CreateListingFn(ctx, userID, in)
}

func (m *MockListingService) UpdateListing(
	ctx context.Context,
	userID, id uuid.UUID,
	in service.UpdateListingInput,
) (*service.ListingView, error) {
	return m.UpdateListingFn(ctx, userID, id, in)
}

func (m *MockListingService) DeleteListing(ctx context.Context, userID, id uuid.UUID) error {
	return m.DeleteListingFn(ctx, userID, id)
}

func (m *MockListingService) AddImages(ctx context.Context, userID, id uuid.UUID, urls []string) (int, error) {
	return m.AddImagesFn(ctx, userID, id, urls)
}

func (m *MockListingService) DeleteImage(ctx context.Context, userID, listingID, imageID uuid.UUID) error {
	return m.DeleteImageFn(ctx, userID, listingID, imageID)
}

// MockRequestService is a mock implementation of service.RequestService for testing
type MockRequestService struct {
	ListRequestsFn  func(ctx context.Context, filter store.RequestFilter) ([]service.RequestView, error)
	GetRequestFn    func(ctx context.Context, id uuid.UUID) (*service.RequestView, error)
	CreateRequestFn func(ctx context.Context, userID uuid.UUID, in service.CreateRequestInput) (*service.RequestView, error)
	UpdateRequestFn func(
		ctx context.Context,
		userID, id uuid.UUID,
		in service.UpdateRequestInput,
	) (*service.RequestView, error)
	DeleteRequestFn func(ctx context.Context, userID, id uuid.UUID) error
}

var _ service.RequestService = (*MockRequestService)(nil)

func (m *MockRequestService) ListRequests(ctx context.Context, filter store.RequestFilter) ([]service.RequestView, error) {
	return m.ListRequestsFn(ctx, filter)
}

func (m *MockRequestService) GetRequest(ctx context.Context, id uuid.UUID) (*service.RequestView, error) {
	return m.GetRequestFn(ctx, id)
}

func (m *MockRequestService) CreateRequest(
	ctx context.Context,
	userID uuid.UUID,
	in service.CreateRequestInput,
) (*service.RequestView, error) {
	return m.CreateRequestFn(ctx, userID, in)
}

func (m *MockRequestService) UpdateRequest(
	ctx context.Context,
	userID, id uuid.UUID,
	in service.UpdateRequestInput,
) (*service.RequestView, error) {
	return m.UpdateRequestFn(ctx, userID, id, in)
}

func (m *MockRequestService) DeleteRequest(ctx context.Context, userID, id uuid.UUID) error {
	return m.DeleteRequestFn(ctx, userID, id)
}

const testEmailDomain = "gmu.edu"

func testValidator() *Validator {
	return NewValidator(testEmailDomain)
}

// withUser marks req as sent by userID, as the auth middleware would.
func withUser(req *http.Request, userID uuid.UUID) *http.Request {
	id := &domain.Identity{UserID: userID, Email: "student@gmu.edu"}
	return req.WithContext(shared.WithIdentity(req.Context(), id))
}

// withURLParams attaches chi path parameters to req.
func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// withTestLogger routes handler logs into a buffer owned by the test.
func withTestLogger(t *testing.T, req *http.Request) (*http.Request, *logger.TestLogBuffer) {
	t.Helper()
	ctx, logs := logger.NewLogCaptureContext(t)
	ctx = context.WithValue(ctx, shared.TraceIDKey, "test-trace-id")
	return req.WithContext(ctx), logs
}

func strPtr(s string) *string { return &s }
