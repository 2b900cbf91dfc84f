package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/platform/logger"
	"github.com/gmubooktrading/api/internal/platform/supabase"
	"github.com/gmubooktrading/api/internal/redact"
	"github.com/gmubooktrading/api/internal/service/auth"
	"github.com/gmubooktrading/api/internal/store"
	"github.com/google/uuid"
)

// Messages returned alongside successful results.
const (
	MsgSignupCreated       = "Account created successfully. Please check your email to verify your account."
	MsgSignupEmailTimedOut = "Account created but email sending timed out. Please use the resend verification endpoint to receive your verification email."
	MsgEmailVerified       = "Email is verified"
	MsgEmailNotVerified    = "Email not yet verified. Please check your email for the verification link."
)

// UserProvider is the part of the provider client acting on behalf of users.
// *supabase.Client created with the anon key satisfies it.
type UserProvider interface {
	SignUp(ctx context.Context, p supabase.SignUpParams) (*supabase.User, *supabase.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	ResendSignupConfirmation(ctx context.Context, email, redirectTo string) error
	VerifyEmailToken(ctx context.Context, token, email string) (*supabase.User, error)
}

// AdminProvider is the part of the provider client that needs the
// service-role key.
type AdminProvider interface {
	AdminGetUser(ctx context.Context, id string) (*supabase.User, error)
	AdminFindUserByEmail(ctx context.Context, email string) (*supabase.User, error)
}

// Config holds the settings the identity service needs.
type Config struct {
	EmailDomain    string
	RedirectURL    string
	SignupTimeout  time.Duration
	RequestTimeout time.Duration
}

// SignupResult is the outcome of a signup, including the partial case where
// the account exists but the confirmation email timed out.
type SignupResult struct {
	User                  domain.User
	VerificationEmailSent bool
	Message               string
}

// LoginResult is a verified user with a fresh session.
type LoginResult struct {
	User    domain.User
	Session domain.Session
}

// Service wraps the identity provider with the marketplace's rules.
type Service interface {
	// Signup registers a campus user. A timed-out signup is disambiguated
	// with an admin lookup before it is reported as a failure.
	Signup(ctx context.Context, email, password, fullName string) (*SignupResult, error)

	// Login returns ErrEmailNotVerified for valid credentials of an
	// unconfirmed account.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// Logout revokes token at the provider. An empty token is a no-op.
	Logout(ctx context.Context, token string) error

	// VerifyBearerToken returns nil, nil for an empty token.
	VerifyBearerToken(ctx context.Context, token string) (*domain.Identity, error)

	ResendVerification(ctx context.Context, email string) error
	CheckVerification(ctx context.Context, email string) (*domain.VerificationStatus, error)
	VerifyEmail(ctx context.Context, token, email string) (*domain.User, error)
	CurrentUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// ServiceImpl implements Service.
type ServiceImpl struct {
	cfg      Config
	users    UserProvider
	admin    AdminProvider
	verifier auth.TokenVerifier
	profiles store.ProfileStore
	logger   *slog.Logger
}

var _ Service = (*ServiceImpl)(nil)

// NewService creates the identity service. profiles may be nil, in which
// case no profile row is written at signup.
func NewService(
	cfg Config,
	users UserProvider,
	admin AdminProvider,
	verifier auth.TokenVerifier,
	profiles store.ProfileStore,
	logger *slog.Logger,
) *ServiceImpl {
	if users == nil || admin == nil || verifier == nil {
		// ALLOW-PANIC
		panic("identity: provider clients and token verifier are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ServiceImpl{
		cfg:      cfg,
		users:    users,
		admin:    admin,
		verifier: verifier,
		profiles: profiles,
		logger:   logger.With(slog.String("component", "identity_service")),
	}
}

func (s *ServiceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// Signup registers a user and lets the provider send the confirmation email.
func (s *ServiceImpl) Signup(ctx context.Context, email, password, fullName string) (*SignupResult, error) {
	email = domain.NormalizeEmail(email)
	if err := s.validateEmail(email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, domain.NewValidationError("password", err.Error(), err)
	}
	if err := domain.ValidateFullName(fullName); err != nil {
		return nil, domain.NewValidationError("full_name", err.Error(), err)
	}

	signupCtx, cancel := context.WithTimeout(ctx, s.cfg.SignupTimeout)
	defer cancel()

	user, _, err := s.users.SignUp(signupCtx, supabase.SignUpParams{
		Email:      email,
		Password:   password,
		FullName:   fullName,
		RedirectTo: s.cfg.RedirectURL,
	})
	if err != nil {
		if isTimeout(err) || errors.Is(signupCtx.Err(), context.DeadlineExceeded) {
			return s.resolveTimedOutSignup(ctx, email, fullName)
		}
		return nil, s.mapSignupError(ctx, err)
	}

	result, err := toDomainUser(user)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	if result.EmailVerified {
		s.log(ctx).Warn("user was confirmed during signup",
			slog.String("user_id", result.ID.String()))
	}
	if result.FullName == "" {
		result.FullName = fullName
	}
	s.upsertProfile(ctx, result.ID, fullName)

	s.log(ctx).Info("user signed up", slog.String("user_id", result.ID.String()))
	return &SignupResult{
		User:                  result,
		VerificationEmailSent: !result.EmailVerified,
		Message:               MsgSignupCreated,
	}, nil
}

// resolveTimedOutSignup checks whether the account was created even though
// the signup call did not answer in time.
func (s *ServiceImpl) resolveTimedOutSignup(ctx context.Context, email, fullName string) (*SignupResult, error) {
	log := s.log(ctx)
	log.Warn("signup timed out, checking whether the account exists")

	lookupCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	found, err := s.admin.AdminFindUserByEmail(lookupCtx, email)
	if err != nil {
		if !errors.Is(err, supabase.ErrNotFound) {
			log.Error("account lookup after signup timeout failed", redact.ErrorAttr(err))
		}
		return nil, ErrSignupTimeout
	}

	user, err := toDomainUser(found)
	if err != nil {
		return nil, ErrSignupTimeout
	}
	if user.FullName == "" {
		user.FullName = fullName
	}
	s.upsertProfile(ctx, user.ID, fullName)

	log.Info("account exists after signup timeout", slog.String("user_id", user.ID.String()))
	return &SignupResult{
		User:                  user,
		VerificationEmailSent: false,
		Message:               MsgSignupEmailTimedOut,
	}, nil
}

func (s *ServiceImpl) mapSignupError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, supabase.ErrAlreadyExists):
		return ErrAccountExists
	case errors.Is(err, supabase.ErrUnreachable):
		s.log(ctx).Error("identity provider unreachable during signup", redact.ErrorAttr(err))
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	case errors.Is(err, supabase.ErrUpstream):
		return fmt.Errorf("signup: %w", err)
	}
	if msg := supabase.ProviderMessage(err); msg != "" {
		return &RejectedError{Action: "Signup", Message: msg, Err: err}
	}
	return fmt.Errorf("signup: %w", err)
}

// upsertProfile records the display name. Failures are logged only; the
// account already exists at the provider.
func (s *ServiceImpl) upsertProfile(ctx context.Context, userID uuid.UUID, fullName string) {
	if s.profiles == nil {
		return
	}
	profile := &domain.Profile{ID: userID}
	if fullName != "" {
		profile.DisplayName = &fullName
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		s.log(ctx).Warn("failed to upsert profile after signup",
			slog.String("user_id", userID.String()),
			redact.ErrorAttr(err))
	}
}

// Login exchanges credentials for a session.
func (s *ServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if err := s.validateEmail(email); err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	session, err := s.users.SignInWithPassword(reqCtx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, supabase.ErrEmailNotConfirmed):
			return nil, ErrEmailNotVerified
		case errors.Is(err, supabase.ErrInvalidCredentials),
			errors.Is(err, supabase.ErrBadRequest),
			errors.Is(err, supabase.ErrNotFound):
			s.log(ctx).Debug("login rejected", slog.String("reason", supabase.ProviderMessage(err)))
			return nil, ErrInvalidCredentials
		}
		return nil, s.mapTransportError(ctx, "login", err)
	}

	user, err := toDomainUser(session.User)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return &LoginResult{
		User: user,
		Session: domain.Session{
			AccessToken:  session.AccessToken,
			RefreshToken: session.RefreshToken,
			ExpiresAt:    expiresAt(session),
			TokenType:    session.TokenType,
		},
	}, nil
}

// Logout revokes the session behind token.
func (s *ServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	err := s.users.SignOut(reqCtx, token)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, supabase.ErrInvalidToken), errors.Is(err, supabase.ErrNotFound):
		// Already revoked or expired.
		return nil
	case errors.Is(err, supabase.ErrTimeout), errors.Is(err, supabase.ErrUnreachable), errors.Is(err, supabase.ErrUpstream):
		return s.mapTransportError(ctx, "logout", err)
	}
	return &RejectedError{Action: "Logout", Message: supabase.ProviderMessage(err), Err: err}
}

// VerifyBearerToken resolves a bearer token to the caller's identity.
func (s *ServiceImpl) VerifyBearerToken(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := s.verifier.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &domain.Identity{UserID: claims.UserID, Email: domain.NormalizeEmail(claims.Email)}, nil
}

// ResendVerification sends the confirmation email again. Unknown and
// already confirmed addresses are reported instead of silently accepted.
func (s *ServiceImpl) ResendVerification(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if err := s.validateEmail(email); err != nil {
		return err
	}

	lookupCtx, cancelLookup := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	existing, err := s.admin.AdminFindUserByEmail(lookupCtx, email)
	cancelLookup()
	switch {
	case err == nil:
		if existing.Confirmed() {
			return ErrAlreadyVerified
		}
	case errors.Is(err, supabase.ErrNotFound):
		return ErrAccountNotFound
	default:
		// The resend call below still reports its own failures.
		s.log(ctx).Warn("account lookup before resend failed", redact.ErrorAttr(err))
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SignupTimeout)
	defer cancel()

	err = s.users.ResendSignupConfirmation(sendCtx, email, s.cfg.RedirectURL)
	switch {
	case err == nil:
		s.log(ctx).Info("verification email resent")
		return nil
	case isTimeout(err) || errors.Is(sendCtx.Err(), context.DeadlineExceeded):
		return ErrEmailTimeout
	case errors.Is(err, supabase.ErrNotFound):
		return ErrAccountNotFound
	case errors.Is(err, supabase.ErrUnreachable), errors.Is(err, supabase.ErrUpstream):
		return s.mapTransportError(ctx, "resend", err)
	}
	msg := supabase.ProviderMessage(err)
	if containsAny(msg, "already confirmed", "already verified") {
		return ErrAlreadyVerified
	}
	return &RejectedError{Action: "Sending verification email", Message: msg, Err: err}
}

// CheckVerification reports whether email has been confirmed.
func (s *ServiceImpl) CheckVerification(ctx context.Context, email string) (*domain.VerificationStatus, error) {
	email = domain.NormalizeEmail(email)
	if err := s.validateEmail(email); err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	user, err := s.admin.AdminFindUserByEmail(reqCtx, email)
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, s.mapTransportError(ctx, "check verification", err)
	}

	status := &domain.VerificationStatus{
		Email:         domain.NormalizeEmail(user.Email),
		EmailVerified: user.Confirmed(),
		VerifiedAt:    user.VerifiedAt(),
		Message:       MsgEmailNotVerified,
	}
	if status.EmailVerified {
		status.Message = MsgEmailVerified
	}
	return status, nil
}

// VerifyEmail redeems a confirmation token.
func (s *ServiceImpl) VerifyEmail(ctx context.Context, token, email string) (*domain.User, error) {
	if email != "" {
		email = domain.NormalizeEmail(email)
		if err := s.validateEmail(email); err != nil {
			return nil, err
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	user, err := s.users.VerifyEmailToken(reqCtx, token, email)
	if err != nil {
		switch {
		case errors.Is(err, supabase.ErrInvalidToken),
			errors.Is(err, supabase.ErrBadRequest),
			errors.Is(err, supabase.ErrNotFound):
			return nil, ErrInvalidVerificationToken
		}
		return nil, s.mapTransportError(ctx, "verify email", err)
	}

	verified, err := toDomainUser(user)
	if err != nil {
		return nil, fmt.Errorf("verify email: %w", err)
	}
	verified.EmailVerified = true
	return &verified, nil
}

// CurrentUser returns the provider's record for id.
func (s *ServiceImpl) CurrentUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	user, err := s.admin.AdminGetUser(reqCtx, id.String())
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.mapTransportError(ctx, "get user", err)
	}

	out, err := toDomainUser(user)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &out, nil
}

func (s *ServiceImpl) validateEmail(email string) error {
	if err := domain.ValidateCampusEmail(email, s.cfg.EmailDomain); err != nil {
		return domain.NewValidationError("email",
			fmt.Sprintf("must be a valid @%s email address", s.cfg.EmailDomain), err)
	}
	return nil
}

// mapTransportError turns timeouts and outages into service sentinels and
// wraps everything else.
func (s *ServiceImpl) mapTransportError(ctx context.Context, op string, err error) error {
	switch {
	case isTimeout(err):
		s.log(ctx).Warn("identity provider timed out", slog.String("operation", op))
		return fmt.Errorf("%w: %s", ErrProviderTimeout, op)
	case errors.Is(err, supabase.ErrUnreachable):
		s.log(ctx).Error("identity provider unreachable",
			slog.String("operation", op),
			redact.ErrorAttr(err))
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isTimeout(err error) bool {
	return errors.Is(err, supabase.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

func expiresAt(session *supabase.Session) int64 {
	if session.ExpiresAt != 0 || session.ExpiresIn == 0 {
		return session.ExpiresAt
	}
	return time.Now().Add(time.Duration(session.ExpiresIn) * time.Second).Unix()
}
