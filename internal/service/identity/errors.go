package identity

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the identity service. The API layer maps each
// one to a status code and a user-facing message.
var (
	// ErrAccountExists maps to 409.
	ErrAccountExists = errors.New("account already exists")

	// ErrInvalidCredentials maps to 401.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailNotVerified maps to 403. It is returned when the credentials
	// are valid but the address has not been confirmed yet.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrSignupTimeout maps to 504. The account may or may not exist.
	ErrSignupTimeout = errors.New("signup timed out")

	// ErrEmailTimeout maps to 504 for resending the confirmation email.
	ErrEmailTimeout = errors.New("email sending timed out")

	// ErrProviderTimeout maps to 504 for every other provider call.
	ErrProviderTimeout = errors.New("identity provider timed out")

	// ErrProviderUnavailable maps to 503.
	ErrProviderUnavailable = errors.New("identity provider unavailable")

	// ErrAccountNotFound maps to 404 for lookups by email.
	ErrAccountNotFound = errors.New("no account with this email")

	// ErrUserNotFound maps to 404 for lookups by id.
	ErrUserNotFound = errors.New("user not found")

	// ErrAlreadyVerified maps to 400.
	ErrAlreadyVerified = errors.New("email already verified")

	// ErrInvalidVerificationToken maps to 400.
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
)

// RejectedError is a request the provider refused for a reason that has no
// dedicated sentinel. Message is the provider's wording and is safe to show.
type RejectedError struct {
	Action  string // "Signup", "Logout", ...
	Message string
	Err     error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Action, e.Message)
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}
