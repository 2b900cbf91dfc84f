package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gmubooktrading/api/internal/api/shared"
	"github.com/gmubooktrading/api/internal/platform/logger"
	"github.com/gmubooktrading/api/internal/service/identity"
)

const checkVerificationUsage = "Email parameter is required. Example: /api/auth/check-verification?email=user@gmu.edu"

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	identity  identity.Service
	validator *Validator
	logger    *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(svc identity.Service, v *Validator, logger *slog.Logger) *AuthHandler {
	if svc == nil || v == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("identity service and validator are required for AuthHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		identity:  svc,
		validator: v,
		logger:    logger.With(slog.String("component", "auth_handler")),
	}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SignupRequest
	if !decodeAndCheck(w, r, h.validator, &req, log) {
		return
	}

	res, err := h.identity.Signup(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("user signed up",
		slog.String("user_id", res.User.ID.String()),
		slog.Bool("verification_email_sent", res.VerificationEmailSent))
	shared.RespondWithJSON(w, r, http.StatusCreated, SignupResponse{
		Message: res.Message,
		User: UserResponse{
			ID:            res.User.ID,
			Email:         res.User.Email,
			EmailVerified: res.User.EmailVerified,
		},
		VerificationEmailSent: res.VerificationEmailSent,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if !decodeAndCheck(w, r, h.validator, &req, log) {
		return
	}

	res, err := h.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("user logged in", slog.String("user_id", res.User.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		Message: "Login successful",
		User: UserResponse{
			ID:            res.User.ID,
			Email:         res.User.Email,
			EmailVerified: res.User.EmailVerified,
		},
		Session: res.Session,
	})
}

// Logout handles POST /api/auth/logout. The bearer token is optional; without
// one there is nothing to revoke.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.Logout(r.Context(), bearerToken(r)); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Logout successful"})
}

// CurrentUser handles GET /api/auth/user.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	user, err := h.identity.CurrentUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CurrentUserResponse{User: userToResponse(*user)})
}

// ResendVerification handles POST /api/auth/resend-verification.
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req EmailRequest
	if !decodeAndCheck(w, r, h.validator, &req, log) {
		return
	}

	if err := h.identity.ResendVerification(r.Context(), req.Email); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ResendResponse{
		Message: "Verification email sent successfully. Please check your inbox and spam folder.",
		Email:   req.Email,
	})
}

// CheckVerification handles GET /api/auth/check-verification?email=.
func (h *AuthHandler) CheckVerification(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, checkVerificationUsage)
		return
	}

	req := EmailRequest{Email: email}
	if details := h.validator.Check(&req); len(details) > 0 {
		shared.RespondWithValidationErrors(w, r, details)
		return
	}

	status, err := h.identity.CheckVerification(r.Context(), req.Email)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, status)
}

// VerifyEmail handles POST /api/auth/verify-email.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req VerifyEmailRequest
	if !decodeAndCheck(w, r, h.validator, &req, log) {
		return
	}

	user, err := h.identity.VerifyEmail(r.Context(), req.Token, req.Email)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("email verified", slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, VerifyEmailResponse{
		Message: "Email verified successfully",
		User:    userToResponse(*user),
	})
}

