package identity

import (
	"context"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/platform/supabase"
	"github.com/google/uuid"
)

type mockUserProvider struct {
	SignUpFn        func(ctx context.Context, p supabase.SignUpParams) (*supabase.User, *supabase.Session, error)
	SignInFn        func(ctx context.Context, email, password string) (*supabase.Session, error)
	SignOutFn       func(ctx context.Context, token string) error
	ResendFn        func(ctx context.Context, email, redirectTo string) error
	VerifyEmailFn   func(ctx context.Context, token, email string) (*supabase.User, error)
	resendCallCount int
}

func (m *mockUserProvider) SignUp(ctx context.Context, p supabase.SignUpParams) (*supabase.User, *supabase.Session, error) {
	return m.SignUpFn(ctx, p)
}

func (m *mockUserProvider) SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error) {
	return m.SignInFn(ctx, email, password)
}

func (m *mockUserProvider) SignOut(ctx context.Context, token string) error {
	return m.SignOutFn(ctx, token)
}

func (m *mockUserProvider) ResendSignupConfirmation(ctx context.Context, email, redirectTo string) error {
	m.resendCallCount++
	return m.ResendFn(ctx, email, redirectTo)
}

func (m *mockUserProvider) VerifyEmailToken(ctx context.Context, token, email string) (*supabase.User, error) {
	return m.VerifyEmailFn(ctx, token, email)
}

type mockAdminProvider struct {
	GetUserFn     func(ctx context.Context, id string) (*supabase.User, error)
	FindByEmailFn func(ctx context.Context, email string) (*supabase.User, error)
}

func (m *mockAdminProvider) AdminGetUser(ctx context.Context, id string) (*supabase.User, error) {
	return m.GetUserFn(ctx, id)
}

func (m *mockAdminProvider) AdminFindUserByEmail(ctx context.Context, email string) (*supabase.User, error) {
	return m.FindByEmailFn(ctx, email)
}

type mockProfileStore struct {
	upserted  []*domain.Profile
	upsertErr error
}

func (m *mockProfileStore) GetByIDs(context.Context, []uuid.UUID) (map[uuid.UUID]*domain.Profile, error) {
	return map[uuid.UUID]*domain.Profile{}, nil
}

func (m *mockProfileStore) Upsert(_ context.Context, p *domain.Profile) error {
	m.upserted = append(m.upserted, p)
	return m.upsertErr
}

func providerErr(kind error, msg string) error {
	return &supabase.Error{Op: "test", Kind: kind, Status: 400, Message: msg}
}
