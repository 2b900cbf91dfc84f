package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Error kinds returned by the client. Every *Error unwraps to exactly one of
// these, so callers branch with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrAlreadyExists      = errors.New("user already exists")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrRateLimited        = errors.New("rate limited")
	ErrBadRequest         = errors.New("bad request")
	ErrTimeout            = errors.New("identity provider timed out")
	ErrUnreachable        = errors.New("identity provider unreachable")
	ErrUpstream           = errors.New("identity provider error")
)

// Error is a failed call to the identity provider.
type Error struct {
	Op      string // client operation, e.g. "signup"
	Kind    error  // one of the Err* sentinels above
	Status  int    // HTTP status, 0 for transport failures
	Code    string // provider error_code, when present
	Message string // provider message, when present
	Err     error  // underlying transport error, if any
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("supabase ")
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d", e.Status)
		if e.Code != "" {
			b.WriteString(", code ")
			b.WriteString(e.Code)
		}
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes the kind and, for transport failures, the cause.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// ProviderMessage returns the provider's own wording for err, or "" when err
// did not come from a provider response.
func ProviderMessage(err error) string {
	var sErr *Error
	if errors.As(err, &sErr) {
		return sErr.Message
	}
	return ""
}

// Outcome is a short label for err suitable for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUnreachable):
		return "unreachable"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "rejected"
	}
}

// errorBody covers the error shapes GoTrue has used across versions:
// {code, error_code, msg}, {error, error_description} and {message}.
type errorBody struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
}

func (b errorBody) message() string {
	for _, m := range []string{b.Msg, b.ErrorDescription, b.Message, b.Error} {
		if m = strings.TrimSpace(m); m != "" {
			return m
		}
	}
	return ""
}

// decodeError builds an *Error from a non-2xx response body.
func decodeError(op string, status int, body []byte) *Error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	code := eb.ErrorCode
	if code == "" && eb.Error != "" && !strings.Contains(eb.Error, " ") {
		// OAuth-style bodies put a machine code in "error".
		code = eb.Error
	}
	msg := eb.message()
	if msg == "" {
		msg = http.StatusText(status)
	}

	return &Error{
		Op:      op,
		Kind:    classify(status, code, msg),
		Status:  status,
		Code:    code,
		Message: msg,
	}
}

var codeKinds = map[string]error{
	"user_already_exists":        ErrAlreadyExists,
	"email_exists":               ErrAlreadyExists,
	"phone_exists":               ErrAlreadyExists,
	"invalid_credentials":        ErrInvalidCredentials,
	"invalid_grant":              ErrInvalidCredentials,
	"email_not_confirmed":        ErrEmailNotConfirmed,
	"user_not_found":             ErrNotFound,
	"otp_expired":                ErrInvalidToken,
	"bad_jwt":                    ErrInvalidToken,
	"no_authorization":           ErrInvalidToken,
	"session_not_found":          ErrInvalidToken,
	"session_expired":            ErrInvalidToken,
	"flow_state_expired":         ErrInvalidToken,
	"over_email_send_rate_limit": ErrRateLimited,
	"over_request_rate_limit":    ErrRateLimited,
	"request_timeout":            ErrTimeout,
	"validation_failed":          ErrBadRequest,
	"weak_password":              ErrBadRequest,
	"email_address_invalid":      ErrBadRequest,
}

// classify picks a kind from the structured code first, then from statuses
// that are unambiguous, and only then from the message text.
func classify(status int, code, msg string) error {
	if kind, ok := codeKinds[code]; ok {
		// invalid_grant is also used for expired refresh tokens and
		// unconfirmed addresses on older servers.
		if code == "invalid_grant" && strings.Contains(strings.ToLower(msg), "not confirmed") {
			return ErrEmailNotConfirmed
		}
		return kind
	}

	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrAlreadyExists
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ErrTimeout
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return ErrUnreachable
	}
	if status >= http.StatusInternalServerError {
		return ErrUpstream
	}

	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "already registered"), strings.Contains(lower, "already exists"):
		return ErrAlreadyExists
	case strings.Contains(lower, "not confirmed"):
		return ErrEmailNotConfirmed
	case strings.Contains(lower, "invalid login"), strings.Contains(lower, "invalid credentials"):
		return ErrInvalidCredentials
	case strings.Contains(lower, "expired"), strings.Contains(lower, "invalid token"), strings.Contains(lower, "invalid jwt"):
		return ErrInvalidToken
	case strings.Contains(lower, "user not found"):
		return ErrNotFound
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrInvalidToken
	}
	return ErrBadRequest
}

// transportError classifies a failure to get any response at all.
func transportError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() == context.Canceled {
		return fmt.Errorf("supabase %s: %w", op, err)
	}

	kind := ErrUnreachable
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		kind = ErrTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = ErrTimeout
	}
	return &Error{Op: op, Kind: kind, Err: err}
}
