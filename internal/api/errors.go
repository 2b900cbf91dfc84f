package api

import (
	"errors"
	"net/http"

	"github.com/gmubooktrading/api/internal/api/shared"
	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/platform/supabase"
	"github.com/gmubooktrading/api/internal/service/auth"
	"github.com/gmubooktrading/api/internal/service/identity"
	"github.com/gmubooktrading/api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var rejected *identity.RejectedError

	switch {
	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, identity.ErrAlreadyVerified),
		errors.Is(err, identity.ErrInvalidVerificationToken),
		errors.As(err, &rejected):
		return http.StatusBadRequest

	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongAudience),
		errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, identity.ErrEmailNotVerified),
		errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, identity.ErrAccountNotFound),
		errors.Is(err, identity.ErrUserNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, identity.ErrAccountExists),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Upstream timeouts
	case errors.Is(err, identity.ErrSignupTimeout),
		errors.Is(err, identity.ErrEmailTimeout),
		errors.Is(err, identity.ErrProviderTimeout),
		errors.Is(err, store.ErrTimeout),
		errors.Is(err, supabase.ErrTimeout):
		return http.StatusGatewayTimeout

	// Upstream outages
	case errors.Is(err, identity.ErrProviderUnavailable),
		errors.Is(err, store.ErrUnavailable),
		errors.Is(err, supabase.ErrUnreachable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var rejected *identity.RejectedError
	if errors.As(err, &rejected) {
		return rejected.Error()
	}

	switch {
	// Identity errors
	case errors.Is(err, identity.ErrAccountExists):
		return "An account with this email already exists"
	case errors.Is(err, identity.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, identity.ErrEmailNotVerified):
		return "Email not verified. Please check your email and verify your account before logging in."
	case errors.Is(err, identity.ErrSignupTimeout):
		return "Signup request timed out. Please check your internet connection and try again. " +
			"If the account was created, use the resend verification endpoint."
	case errors.Is(err, identity.ErrEmailTimeout):
		return "Email sending timed out. Please try again later."
	case errors.Is(err, identity.ErrProviderTimeout),
		errors.Is(err, supabase.ErrTimeout):
		return "Authentication service timed out. Please try again later."
	case errors.Is(err, identity.ErrProviderUnavailable),
		errors.Is(err, supabase.ErrUnreachable):
		return "Unable to connect to authentication service. Please try again later."
	case errors.Is(err, identity.ErrAccountNotFound):
		return "No account found with this email address. Please sign up first."
	case errors.Is(err, identity.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, identity.ErrAlreadyVerified):
		return "This email is already verified. You can log in directly."
	case errors.Is(err, identity.ErrInvalidVerificationToken):
		return "Invalid or expired verification token. Please request a new verification email."

	// Authentication errors
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongAudience):
		return "Invalid token"
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return "Authentication required"

	// Authorization errors
	case errors.Is(err, domain.ErrNotOwner):
		return "You do not own this resource"

	// Not found errors
	case errors.Is(err, store.ErrListingNotFound):
		return "Listing not found"
	case errors.Is(err, store.ErrImageNotFound):
		return "Image not found"
	case errors.Is(err, store.ErrRequestNotFound):
		return "Request not found"
	case errors.Is(err, store.ErrBookNotFound):
		return "Book not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Store errors
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case errors.Is(err, store.ErrTimeout):
		return "The request timed out. Please try again."
	case errors.Is(err, store.ErrUnavailable):
		return "Service temporarily unavailable. Please try again later."

	case errors.Is(err, domain.ErrValidation):
		return "Validation failed"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the response for err. Domain validation errors
// become a 400 with field details; everything else is mapped to a status
// and a safe message. A non-empty overrideMsg replaces the safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, overrideMsg string) {
	if details, ok := validationDetails(err); ok {
		shared.RespondWithValidationErrors(w, r, details)
		return
	}

	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if overrideMsg != "" {
		msg = overrideMsg
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err, opts...)
}
