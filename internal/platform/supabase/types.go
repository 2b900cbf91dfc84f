package supabase

import (
	"strings"
	"time"
)

// User is the provider's account record.
type User struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	ConfirmedAt      *time.Time     `json:"confirmed_at,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// VerifiedAt returns when the user's email was confirmed, or nil.
func (u *User) VerifiedAt() *time.Time {
	if u.EmailConfirmedAt != nil {
		return u.EmailConfirmedAt
	}
	return u.ConfirmedAt
}

// Confirmed reports whether the user's email has been confirmed.
func (u *User) Confirmed() bool {
	return u.VerifiedAt() != nil
}

// FullName returns the full_name stored in user metadata at signup.
func (u *User) FullName() string {
	if u.UserMetadata == nil {
		return ""
	}
	name, _ := u.UserMetadata["full_name"].(string)
	return strings.TrimSpace(name)
}

// Session is the token response of the password grant.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// SignUpParams are the inputs of a password signup.
type SignUpParams struct {
	Email      string
	Password   string
	FullName   string
	RedirectTo string
}

type signUpBody struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data"`
}

type passwordGrantBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resendBody struct {
	Type  string `json:"type"`
	Email string `json:"email"`
}

type verifyBody struct {
	Type  string `json:"type"`
	Token string `json:"token"`
	Email string `json:"email,omitempty"`
}

type listUsersResponse struct {
	Users []User `json:"users"`
}
