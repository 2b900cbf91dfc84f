package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/gmubooktrading/api/internal/platform/logger"
	"github.com/gmubooktrading/api/internal/platform/supabase"
	"github.com/google/uuid"
)

// UserLookup resolves an access token to the user it was issued for.
type UserLookup interface {
	GetUser(ctx context.Context, accessToken string) (*supabase.User, error)
}

// providerVerifier asks the identity provider about every token. It is used
// when no JWT secret is configured.
type providerVerifier struct {
	users UserLookup
}

var _ TokenVerifier = (*providerVerifier)(nil)

// NewProviderVerifier creates a TokenVerifier backed by the provider's
// user endpoint.
func NewProviderVerifier(users UserLookup) TokenVerifier {
	return &providerVerifier{users: users}
}

// ValidateToken returns ErrInvalidToken when the provider rejects the
// token. Transport failures are returned wrapped so callers can tell an
// outage from a bad token.
func (v *providerVerifier) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	user, err := v.users.GetUser(ctx, tokenString)
	if err != nil {
		if errors.Is(err, supabase.ErrInvalidToken) || errors.Is(err, supabase.ErrNotFound) {
			logger.FromContext(ctx).Debug("provider rejected access token", "error", err)
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("verify token with provider: %w", err)
	}

	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &Claims{
		UserID:  userID,
		Email:   user.Email,
		Role:    AuthenticatedRole,
		Subject: user.ID,
	}, nil
}
