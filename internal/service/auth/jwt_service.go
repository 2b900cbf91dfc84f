package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenVerifier validates access tokens issued by the identity provider.
type TokenVerifier interface {
	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns the claims containing user information if the token is valid,
	// or an error if validation fails (expired, invalid signature, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the identity carried by a provider access token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Email is the user's address at the time the token was issued.
	Email string `json:"email,omitempty"`

	// Role is the database role the provider assigned, "authenticated" for
	// signed-in users.
	Role string `json:"role,omitempty"`

	// SessionID identifies the provider session, when known.
	SessionID string `json:"session_id,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
}
