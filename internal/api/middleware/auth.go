package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gmubooktrading/api/internal/api/shared"
	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/platform/logger"
	"github.com/gmubooktrading/api/internal/platform/supabase"
	"github.com/gmubooktrading/api/internal/redact"
	"github.com/gmubooktrading/api/internal/service/auth"
)

// TokenResolver turns a bearer token into the caller's identity.
type TokenResolver interface {
	VerifyBearerToken(ctx context.Context, token string) (*domain.Identity, error)
}

// AuthMiddleware authenticates requests with bearer tokens.
type AuthMiddleware struct {
	resolver TokenResolver
	logger   *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(resolver TokenResolver, logger *slog.Logger) *AuthMiddleware {
	if resolver == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("token resolver cannot be nil for AuthMiddleware")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		resolver: resolver,
		logger:   logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate requires a valid bearer token and stores the caller's
// identity on the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := parseBearer(r.Header.Get("Authorization"))
		if !ok {
			msg := "Invalid authorization format"
			if r.Header.Get("Authorization") == "" {
				msg = "Authorization header required"
			}
			shared.RespondWithError(w, r, http.StatusUnauthorized, msg)
			return
		}

		identity, err := m.resolver.VerifyBearerToken(r.Context(), token)
		if err == nil && identity == nil {
			err = auth.ErrInvalidToken
		}
		if err != nil {
			m.respondAuthError(w, r, err)
			return
		}

		ctx := shared.WithIdentity(r.Context(), identity)
		ctx = logger.WithLogger(ctx, logger.FromContextOrDefault(ctx, m.logger).
			With(slog.String("user_id", identity.UserID.String())))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthenticate attaches the caller's identity when a valid bearer
// token is present. Missing or unusable tokens leave the request anonymous.
func (m *AuthMiddleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := parseBearer(r.Header.Get("Authorization"))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := m.resolver.VerifyBearerToken(r.Context(), token)
		if err != nil || identity == nil {
			if err != nil {
				logger.FromContextOrDefault(r.Context(), m.logger).Debug(
					"ignoring unusable bearer token on public route",
					redact.ErrorAttr(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithIdentity(r.Context(), identity)))
	})
}

func (m *AuthMiddleware) respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, supabase.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		shared.RespondWithErrorAndLog(w, r, http.StatusGatewayTimeout,
			"Authentication service timed out. Please try again later.", err)
	case errors.Is(err, supabase.ErrUnreachable), errors.Is(err, supabase.ErrUpstream):
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable,
			"Unable to connect to authentication service. Please try again later.", err)
	case errors.Is(err, auth.ErrExpiredToken):
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Token expired", err,
			shared.WithElevatedLogLevel())
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid token", err,
			shared.WithElevatedLogLevel())
	}
}

// parseBearer extracts the token from a "Bearer <token>" header value.
func parseBearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
