package auth

import (
	"context"

	"github.com/google/uuid"
)

// MockTokenVerifier is a TokenVerifier for tests.
type MockTokenVerifier struct {
	ValidateTokenFunc func(ctx context.Context, tokenString string) (*Claims, error)

	// Used when ValidateTokenFunc is nil.
	UserID uuid.UUID
	Email  string
	Err    error
}

// ValidateToken implements TokenVerifier.
func (m *MockTokenVerifier) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, tokenString)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &Claims{
		UserID:  m.UserID,
		Email:   m.Email,
		Role:    AuthenticatedRole,
		Subject: m.UserID.String(),
	}, nil
}
