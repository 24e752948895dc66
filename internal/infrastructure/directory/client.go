package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-auth-gateway/internal/domain"
)

// Client talks HTTP/JSON to the user directory service — the system of record
// for accounts. Every call carries the request context and is bounded by the
// client timeout so a hung directory cannot hang the gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sanitize   bool // production: replace upstream messages with generic ones
}

// UserPatch is a partial update forwarded to the directory. Nil fields are
// omitted from the wire payload.
type UserPatch struct {
	Password        *string `json:"password,omitempty"`
	CurrentPassword *string `json:"current_password,omitempty"`
	IsReset         bool    `json:"is_reset,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"`
	IsEmailVerified *bool   `json:"is_email_verified,omitempty"`
}

// CreateUser is the account-creation payload. The directory owns uniqueness
// and format validation.
type CreateUser struct {
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Roles           []string `json:"roles"`
	IsEmailVerified bool     `json:"is_email_verified"`
}

func NewClient(baseURL string, timeout time.Duration, sanitize bool) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		sanitize:   sanitize,
	}
}

// wireUser is the directory's over-the-wire record. The password hash rides
// in its own field because domain.User deliberately never serializes one.
type wireUser struct {
	domain.User
	PasswordHash string `json:"password_hash"`
}

func (w *wireUser) toUser() *domain.User {
	u := w.User
	u.PasswordHash = w.PasswordHash
	return &u
}

// FindByEmail returns the account for the given email, including its password
// hash for credential checks. domain.ErrNotFound when absent.
func (c *Client) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var w wireUser
	path := "/users/by-email/" + url.PathEscape(email)
	if err := c.do(ctx, http.MethodGet, path, "", nil, &w); err != nil {
		return nil, err
	}
	return w.toUser(), nil
}

// Create registers a new account. Duplicate email surfaces as
// domain.ErrConflict, directory-level validation as domain.ErrBadRequest.
func (c *Client) Create(ctx context.Context, req CreateUser) (*domain.User, error) {
	var w wireUser
	if err := c.do(ctx, http.MethodPost, "/users", "", req, &w); err != nil {
		return nil, err
	}
	return w.toUser(), nil
}

// UpdateSelf patches the caller's own record, authenticated by their bearer
// token. IsReset tells the directory to skip the current-password check.
func (c *Client) UpdateSelf(ctx context.Context, bearer string, patch UserPatch) (*domain.User, error) {
	var w wireUser
	if err := c.do(ctx, http.MethodPatch, "/users/me", bearer, patch, &w); err != nil {
		return nil, err
	}
	return w.toUser(), nil
}

// UpdateByID patches an arbitrary record, authenticated by an admin or
// gateway-internal bearer token.
func (c *Client) UpdateByID(ctx context.Context, bearer, id string, patch UserPatch) (*domain.User, error) {
	var w wireUser
	if err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), bearer, patch, &w); err != nil {
		return nil, err
	}
	return w.toUser(), nil
}

// DeleteSelf removes the caller's own account.
func (c *Client) DeleteSelf(ctx context.Context, bearer string) error {
	return c.do(ctx, http.MethodDelete, "/users/me", bearer, nil, nil)
}

// DeleteByID removes an account by id (admin only).
func (c *Client) DeleteByID(ctx context.Context, bearer, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), bearer, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var buf *bytes.Buffer
	if body != nil {
		buf = &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("directory: encode request: %w", err)
		}
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("directory: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("user directory unreachable: %w", domain.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("directory: decode response: %w", domain.ErrUnavailable)
		}
		return nil
	}

	return c.mapError(resp)
}

// mapError classifies a non-2xx directory response into the gateway's error
// taxonomy. Outside production the upstream message is passed through to ease
// debugging; in production it is replaced by the sentinel's generic text.
func (c *Client) mapError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	var sentinel error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		sentinel = domain.ErrBadRequest
	case http.StatusUnauthorized:
		sentinel = domain.ErrInvalidCredentials
	case http.StatusForbidden:
		sentinel = domain.ErrForbidden
	case http.StatusNotFound:
		sentinel = domain.ErrNotFound
	case http.StatusConflict:
		sentinel = domain.ErrConflict
	default:
		sentinel = domain.ErrUnavailable
	}

	if c.sanitize || body.Error == "" {
		return sentinel
	}
	return fmt.Errorf("%s: %w", body.Error, sentinel)
}
