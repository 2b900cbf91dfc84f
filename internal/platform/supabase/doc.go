// Package supabase is a small client for the Supabase Auth (GoTrue) REST API.
//
// It covers the calls the marketplace needs: password signup and login,
// logout, token introspection, confirmation email resend and verification,
// and the admin user lookups used to disambiguate timed-out signups.
// Provider failures are returned as *Error values that unwrap to a kind
// sentinel (ErrAlreadyExists, ErrTimeout, ...), classified from the
// provider's error_code and HTTP status before falling back to message text.
package supabase
