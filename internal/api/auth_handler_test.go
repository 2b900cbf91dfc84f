package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/service/identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthHandler(svc *MockIdentityService) *AuthHandler {
	return NewAuthHandler(svc, testValidator(), nil)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestAuthHandler_Signup(t *testing.T) {
	userID := uuid.New()

	t.Run("created", func(t *testing.T) {
		var gotEmail, gotName string
		svc := &MockIdentityService{
			SignupFn: func(_ context.Context, email, _, fullName string) (*identity.SignupResult, error) {
				gotEmail, gotName = email, fullName
				return &identity.SignupResult{
					User:                  domain.User{ID: userID, Email: email},
					VerificationEmailSent: true,
					Message:               identity.MsgSignupCreated,
				}, nil
			},
		}

		body := `{"email":"  New.Student@GMU.edu","password":"correct-horse-battery","full_name":"Pat Patriot"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(body))
		rr := httptest.NewRecorder()
		newAuthHandler(svc).Signup(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "new.student@gmu.edu", gotEmail)
		assert.Equal(t, "Pat Patriot", gotName)
		assert.JSONEq(t, `{
			"message": "Account created successfully. Please check your email to verify your account.",
			"user": {"id": "`+userID.String()+`", "email": "new.student@gmu.edu", "email_verified": false},
			"verification_email_sent": true
		}`, rr.Body.String())
	})

	t.Run("email sending timed out but account exists", func(t *testing.T) {
		svc := &MockIdentityService{
			SignupFn: func(_ context.Context, email, _, _ string) (*identity.SignupResult, error) {
				return &identity.SignupResult{
					User:    domain.User{ID: userID, Email: email},
					Message: identity.MsgSignupEmailTimedOut,
				}, nil
			},
		}
		body := `{"email":"student@gmu.edu","password":"correct-horse-battery"}`
		rr := httptest.NewRecorder()
		newAuthHandler(svc).Signup(rr, httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(body)))

		require.Equal(t, http.StatusCreated, rr.Code)
		got := decodeBody(t, rr)
		assert.Equal(t, false, got["verification_email_sent"])
		assert.Equal(t, identity.MsgSignupEmailTimedOut, got["message"])
	})

	t.Run("non campus email never reaches the provider", func(t *testing.T) {
		svc := &MockIdentityService{}
		body := `{"email":"student@gmail.com","password":"correct-horse-battery"}`
		rr := httptest.NewRecorder()
		newAuthHandler(svc).Signup(rr, httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(body)))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		got := decodeBody(t, rr)
		assert.Equal(t, "Validation failed", got["error"])
	})

	t.Run("malformed body", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(`{"email":`))
		newAuthHandler(&MockIdentityService{}).Signup(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid request format", decodeBody(t, rr)["error"])
	})

	errorCases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"account exists", identity.ErrAccountExists, http.StatusConflict, "An account with this email already exists"},
		{"signup timeout", identity.ErrSignupTimeout, http.StatusGatewayTimeout, ""},
		{"provider down", identity.ErrProviderUnavailable, http.StatusServiceUnavailable,
			"Unable to connect to authentication service. Please try again later."},
		{"provider rejection", &identity.RejectedError{Action: "Signup", Message: "Password should contain a digit"},
			http.StatusBadRequest, "Signup failed: Password should contain a digit"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &MockIdentityService{
				SignupFn: func(context.Context, string, string, string) (*identity.SignupResult, error) {
					return nil, tc.err
				},
			}
			body := `{"email":"student@gmu.edu","password":"correct-horse-battery"}`
			rr := httptest.NewRecorder()
			newAuthHandler(svc).Signup(rr, httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(body)))

			assert.Equal(t, tc.status, rr.Code)
			if tc.msg != "" {
				assert.Equal(t, tc.msg, decodeBody(t, rr)["error"])
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc := &MockIdentityService{
			LoginFn: func(_ context.Context, email, password string) (*identity.LoginResult, error) {
				assert.Equal(t, "student@gmu.edu", email)
				assert.Equal(t, "pw", password)
				return &identity.LoginResult{
					User: domain.User{ID: userID, Email: email, EmailVerified: true},
					Session: domain.Session{
						AccessToken:  "access",
						RefreshToken: "refresh",
						ExpiresAt:    1700000000,
					},
				}, nil
			},
		}
		body := `{"email":"Student@gmu.edu","password":"pw"}`
		rr := httptest.NewRecorder()
		newAuthHandler(svc).Login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{
			"message": "Login successful",
			"user": {"id": "`+userID.String()+`", "email": "student@gmu.edu", "email_verified": true},
			"session": {"access_token": "access", "refresh_token": "refresh", "expires_at": 1700000000}
		}`, rr.Body.String())
	})

	t.Run("unverified", func(t *testing.T) {
		svc := &MockIdentityService{
			LoginFn: func(context.Context, string, string) (*identity.LoginResult, error) {
				return nil, identity.ErrEmailNotVerified
			},
		}
		body := `{"email":"student@gmu.edu","password":"pw"}`
		rr := httptest.NewRecorder()
		newAuthHandler(svc).Login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body)))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := &MockIdentityService{
			LoginFn: func(context.Context, string, string) (*identity.LoginResult, error) {
				return nil, identity.ErrInvalidCredentials
			},
		}
		body := `{"email":"student@gmu.edu","password":"nope"}`
		rr := httptest.NewRecorder()
		newAuthHandler(svc).Login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body)))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid email or password", decodeBody(t, rr)["error"])
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	var revoked string
	svc := &MockIdentityService{
		LogoutFn: func(_ context.Context, token string) error {
			revoked = token
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer session-token")
	rr := httptest.NewRecorder()
	newAuthHandler(svc).Logout(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "session-token", revoked)
	assert.JSONEq(t, `{"message":"Logout successful"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	newAuthHandler(svc).Logout(rr, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, revoked)
}

func TestAuthHandler_CurrentUser(t *testing.T) {
	userID := uuid.New()
	created := time.Date(2024, 8, 20, 12, 0, 0, 0, time.UTC)
	svc := &MockIdentityService{
		CurrentUserFn: func(_ context.Context, id uuid.UUID) (*domain.User, error) {
			return &domain.User{ID: id, Email: "student@gmu.edu", EmailVerified: true, CreatedAt: created}, nil
		},
	}

	t.Run("authenticated", func(t *testing.T) {
		req := withUser(httptest.NewRequest(http.MethodGet, "/api/auth/user", nil), userID)
		rr := httptest.NewRecorder()
		newAuthHandler(svc).CurrentUser(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"user": {
			"id": "`+userID.String()+`",
			"email": "student@gmu.edu",
			"email_verified": true,
			"created_at": "2024-08-20T12:00:00Z"
		}}`, rr.Body.String())
	})

	t.Run("anonymous", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newAuthHandler(svc).CurrentUser(rr, httptest.NewRequest(http.MethodGet, "/api/auth/user", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAuthHandler_ResendVerification(t *testing.T) {
	t.Run("sent", func(t *testing.T) {
		svc := &MockIdentityService{
			ResendVerificationFn: func(context.Context, string) error { return nil },
		}
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/resend-verification",
			strings.NewReader(`{"email":"Student@gmu.edu"}`))
		newAuthHandler(svc).ResendVerification(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{
			"message": "Verification email sent successfully. Please check your inbox and spam folder.",
			"email": "student@gmu.edu"
		}`, rr.Body.String())
	})

	t.Run("already verified", func(t *testing.T) {
		svc := &MockIdentityService{
			ResendVerificationFn: func(context.Context, string) error { return identity.ErrAlreadyVerified },
		}
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/resend-verification",
			strings.NewReader(`{"email":"student@gmu.edu"}`))
		newAuthHandler(svc).ResendVerification(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "This email is already verified. You can log in directly.", decodeBody(t, rr)["error"])
	})

	t.Run("unknown account", func(t *testing.T) {
		svc := &MockIdentityService{
			ResendVerificationFn: func(context.Context, string) error { return identity.ErrAccountNotFound },
		}
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/resend-verification",
			strings.NewReader(`{"email":"student@gmu.edu"}`))
		newAuthHandler(svc).ResendVerification(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAuthHandler_CheckVerification(t *testing.T) {
	verifiedAt := time.Date(2024, 9, 1, 8, 30, 0, 0, time.UTC)
	svc := &MockIdentityService{
		CheckVerificationFn: func(_ context.Context, email string) (*domain.VerificationStatus, error) {
			return &domain.VerificationStatus{
				Email:         email,
				EmailVerified: true,
				VerifiedAt:    &verifiedAt,
				Message:       identity.MsgEmailVerified,
			}, nil
		},
	}

	t.Run("verified", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/auth/check-verification?email=Student@gmu.edu", nil)
		newAuthHandler(svc).CheckVerification(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{
			"email": "student@gmu.edu",
			"email_verified": true,
			"verified_at": "2024-09-01T08:30:00Z",
			"message": "Email is verified"
		}`, rr.Body.String())
	})

	t.Run("missing parameter", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newAuthHandler(svc).CheckVerification(rr,
			httptest.NewRequest(http.MethodGet, "/api/auth/check-verification", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, checkVerificationUsage, decodeBody(t, rr)["error"])
	})

	t.Run("other domain", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newAuthHandler(svc).CheckVerification(rr,
			httptest.NewRequest(http.MethodGet, "/api/auth/check-verification?email=a@b.com", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Validation failed", decodeBody(t, rr)["error"])
	})
}

func TestAuthHandler_VerifyEmail(t *testing.T) {
	userID := uuid.New()

	t.Run("verified", func(t *testing.T) {
		svc := &MockIdentityService{
			VerifyEmailFn: func(_ context.Context, token, email string) (*domain.User, error) {
				assert.Equal(t, "123456", token)
				assert.Equal(t, "", email)
				return &domain.User{ID: userID, Email: "student@gmu.edu", EmailVerified: true}, nil
			},
		}
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/verify-email", strings.NewReader(`{"token":" 123456 "}`))
		newAuthHandler(svc).VerifyEmail(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		got := decodeBody(t, rr)
		assert.Equal(t, "Email verified successfully", got["message"])
	})

	t.Run("expired token", func(t *testing.T) {
		svc := &MockIdentityService{
			VerifyEmailFn: func(context.Context, string, string) (*domain.User, error) {
				return nil, identity.ErrInvalidVerificationToken
			},
		}
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/verify-email", strings.NewReader(`{"token":"old"}`))
		newAuthHandler(svc).VerifyEmail(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t,
			"Invalid or expired verification token. Please request a new verification email.",
			decodeBody(t, rr)["error"])
	})
}

func TestNewAuthHandlerRequiresService(t *testing.T) {
	assert.Panics(t, func() { NewAuthHandler(nil, testValidator(), nil) })
}
