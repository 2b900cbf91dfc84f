package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Password length bounds accepted at signup.
const (
	PasswordMinLength = 12
	PasswordMaxLength = 72
	FullNameMaxLength = 100
)

// Common validation errors for user input
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters long")
	ErrFullNameTooLong  = errors.New("full name must be at most 100 characters long")
)

// User is an account as known to the identity provider. The API never stores
// users itself; it only reshapes what the provider returns.
type User struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	FullName      string     `json:"full_name,omitempty"`
	EmailVerified bool       `json:"email_verified"`
	VerifiedAt    *time.Time `json:"verified_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Session holds the tokens issued by the provider on login.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	TokenType    string `json:"token_type,omitempty"`
}

// VerificationStatus reports whether an email address has been confirmed.
type VerificationStatus struct {
	Email         string     `json:"email"`
	EmailVerified bool       `json:"email_verified"`
	VerifiedAt    *time.Time `json:"verified_at"`
	Message       string     `json:"message"`
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCampusEmail checks that email is a well-formed address in the
// institution's domain. The comparison is case-insensitive.
func ValidateCampusEmail(email, institutionDomain string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrEmptyEmail
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}

	suffix := "@" + strings.ToLower(strings.TrimPrefix(institutionDomain, "@"))
	if !strings.HasSuffix(email, suffix) || len(email) == len(suffix) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword checks the password length bounds.
func ValidatePassword(password string) error {
	switch n := len(password); {
	case n < PasswordMinLength:
		return ErrPasswordTooShort
	case n > PasswordMaxLength:
		return ErrPasswordTooLong
	}
	return nil
}

// ValidateFullName checks the display name length.
func ValidateFullName(name string) error {
	if len([]rune(name)) > FullNameMaxLength {
		return ErrFullNameTooLong
	}
	return nil
}
