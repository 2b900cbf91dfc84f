package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gmubooktrading/api/internal/platform/logger"
)

const (
	authPath = "/auth/v1"

	// DefaultPerPage is the admin user page size used by FindUserByEmail.
	DefaultPerPage = 200

	// maxUserPages bounds FindUserByEmail on very large projects.
	maxUserPages = 50

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 << 10

	upstreamName = "supabase"
)

// Observer receives the latency and outcome of every provider call.
type Observer interface {
	ObserveUpstream(upstream, operation, outcome string, d time.Duration)
}

// Client talks to the GoTrue REST API of a Supabase project.
// The key decides its privileges: the anon key for user operations, the
// service-role key for the Admin* methods.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	observer   Observer
}

// NewClient creates a Client for the project at baseURL.
func NewClient(baseURL, apiKey string, httpClient *http.Client, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + authPath,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     log.With(slog.String("component", "supabase_client")),
	}
}

// WithObserver returns a copy of c that reports call metrics to o.
func (c *Client) WithObserver(o Observer) *Client {
	cp := *c
	cp.observer = o
	return &cp
}

// SignUp registers a user with email and password. The provider sends the
// confirmation email itself. When email confirmation is disabled the
// provider also returns a session, otherwise session is nil.
func (c *Client) SignUp(ctx context.Context, p SignUpParams) (*User, *Session, error) {
	query := url.Values{}
	if p.RedirectTo != "" {
		query.Set("redirect_to", p.RedirectTo)
	}
	body := signUpBody{
		Email:    p.Email,
		Password: p.Password,
		Data:     map[string]any{"full_name": p.FullName},
	}

	var raw json.RawMessage
	if err := c.do(ctx, "signup", http.MethodPost, "/signup", query, "", body, &raw); err != nil {
		return nil, nil, err
	}
	return decodeUserOrSession("signup", raw)
}

// SignInWithPassword exchanges credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	query := url.Values{"grant_type": {"password"}}
	var session Session
	err := c.do(ctx, "login", http.MethodPost, "/token", query, "",
		passwordGrantBody{Email: email, Password: password}, &session)
	if err != nil {
		return nil, err
	}
	if session.AccessToken == "" || session.User == nil {
		return nil, &Error{Op: "login", Kind: ErrInvalidCredentials, Status: http.StatusOK,
			Message: "provider returned no session"}
	}
	return &session, nil
}

// SignOut revokes the session that accessToken belongs to.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, "logout", http.MethodPost, "/logout", nil, accessToken, nil, nil)
}

// GetUser returns the user an access token was issued to.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	if err := c.do(ctx, "get_user", http.MethodGet, "/user", nil, accessToken, nil, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, &Error{Op: "get_user", Kind: ErrInvalidToken, Status: http.StatusOK}
	}
	return &user, nil
}

// ResendSignupConfirmation asks the provider to send the signup
// confirmation email again.
func (c *Client) ResendSignupConfirmation(ctx context.Context, email, redirectTo string) error {
	query := url.Values{}
	if redirectTo != "" {
		query.Set("redirect_to", redirectTo)
	}
	return c.do(ctx, "resend", http.MethodPost, "/resend", query, "",
		resendBody{Type: "signup", Email: email}, nil)
}

// VerifyEmailToken redeems an email confirmation token. email is optional
// and only needed for one-time codes.
func (c *Client) VerifyEmailToken(ctx context.Context, token, email string) (*User, error) {
	var raw json.RawMessage
	err := c.do(ctx, "verify", http.MethodPost, "/verify", nil, "",
		verifyBody{Type: "email", Token: token, Email: email}, &raw)
	if err != nil {
		return nil, err
	}
	user, _, err := decodeUserOrSession("verify", raw)
	return user, err
}

// AdminListUsers returns one page of users. Pages start at 1.
func (c *Client) AdminListUsers(ctx context.Context, page, perPage int) ([]User, error) {
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
	var resp listUsersResponse
	if err := c.do(ctx, "admin_list_users", http.MethodGet, "/admin/users", query, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// AdminGetUser returns the user with id, or ErrNotFound.
func (c *Client) AdminGetUser(ctx context.Context, id string) (*User, error) {
	var user User
	path := "/admin/users/" + url.PathEscape(id)
	if err := c.do(ctx, "admin_get_user", http.MethodGet, path, nil, "", nil, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, &Error{Op: "admin_get_user", Kind: ErrNotFound, Status: http.StatusOK}
	}
	return &user, nil
}

// AdminFindUserByEmail walks the admin user list until it finds email,
// compared case-insensitively. Returns ErrNotFound when no page has it.
func (c *Client) AdminFindUserByEmail(ctx context.Context, email string) (*User, error) {
	for page := 1; page <= maxUserPages; page++ {
		users, err := c.AdminListUsers(ctx, page, DefaultPerPage)
		if err != nil {
			return nil, err
		}
		for i := range users {
			if strings.EqualFold(users[i].Email, email) {
				return &users[i], nil
			}
		}
		if len(users) < DefaultPerPage {
			break
		}
	}
	return nil, &Error{Op: "admin_find_user", Kind: ErrNotFound}
}

// do sends one request and decodes a 2xx JSON body into out, if out is
// non-nil. bearer overrides the API key in the Authorization header.
func (c *Client) do(
	ctx context.Context,
	op, method, path string,
	query url.Values,
	bearer string,
	in, out any,
) (err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveUpstream(upstreamName, op, Outcome(err), time.Since(start))
		}
	}()

	log := logger.FromContextOrDefault(ctx, c.logger)

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		buf, mErr := json.Marshal(in)
		if mErr != nil {
			return fmt.Errorf("supabase %s: encode request: %w", op, mErr)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("supabase %s: build request: %w", op, err)
	}
	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		tErr := transportError(ctx, op, err)
		log.Warn("identity provider call failed",
			slog.String("operation", op),
			slog.String("error", tErr.Error()))
		return tErr
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		pErr := decodeError(op, resp.StatusCode, body)
		log.Debug("identity provider rejected call",
			slog.String("operation", op),
			slog.Int("status", pErr.Status),
			slog.String("code", pErr.Code))
		return pErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &Error{Op: op, Kind: ErrUpstream, Status: resp.StatusCode,
			Message: "malformed response body", Err: err}
	}
	return nil
}

// decodeUserOrSession handles endpoints that answer with either a bare user
// or a session wrapping the user.
func decodeUserOrSession(op string, raw json.RawMessage) (*User, *Session, error) {
	var session Session
	if err := json.Unmarshal(raw, &session); err == nil && session.User != nil {
		if session.AccessToken == "" {
			return session.User, nil, nil
		}
		return session.User, &session, nil
	}

	var user User
	if err := json.Unmarshal(raw, &user); err != nil || user.ID == "" {
		return nil, nil, &Error{Op: op, Kind: ErrUpstream, Status: http.StatusOK,
			Message: "response carried no user", Err: err}
	}
	return &user, nil, nil
}
