package directory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-auth-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, sanitize bool) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, sanitize)
}

func TestFindByEmail_DecodesPasswordHash(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/by-email/a@x.com", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                "u1",
			"email":             "a@x.com",
			"password_hash":     "$2a$10$hash",
			"roles":             []string{"user"},
			"is_active":         true,
			"is_email_verified": true,
		})
	}, false)

	u, err := c.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "$2a$10$hash", u.PasswordHash)
	assert.True(t, u.IsActive)
}

func TestFindByEmail_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"user not found"}`))
	}, false)

	_, err := c.FindByEmail(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "user not found")
}

func TestCreate_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, domain.ErrBadRequest},
		{http.StatusConflict, domain.ErrConflict},
		{http.StatusInternalServerError, domain.ErrUnavailable},
		{http.StatusBadGateway, domain.ErrUnavailable},
	}
	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"error":"upstream detail"}`))
		}, false)

		_, err := c.Create(context.Background(), CreateUser{Email: "a@x.com"})
		assert.True(t, errors.Is(err, tc.want), "status %d", tc.status)
	}
}

func TestMapError_SanitizedInProduction(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"email a@x.com is taken by user u42"}`))
	}, true)

	_, err := c.Create(context.Background(), CreateUser{Email: "a@x.com"})
	require.Error(t, err)
	assert.Equal(t, domain.ErrConflict, err)
	assert.NotContains(t, err.Error(), "u42")
}

func TestUpdateSelf_ForwardsBearerAndResetFlag(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/users/me", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "u1"})
	}, false)

	pw := "NewSecure1!"
	_, err := c.UpdateSelf(context.Background(), "internal-token", UserPatch{
		Password: &pw,
		IsReset:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer internal-token", gotAuth)
	assert.Equal(t, "NewSecure1!", gotBody["password"])
	assert.Equal(t, true, gotBody["is_reset"])
	_, hasCurrent := gotBody["current_password"]
	assert.False(t, hasCurrent)
}

func TestDeleteByID_NoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/users/u2", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}, false)

	require.NoError(t, c.DeleteByID(context.Background(), "admin-token", "u2"))
}

func TestDo_Unreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 500*time.Millisecond, false)
	_, err := c.FindByEmail(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}

func TestDo_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}, false)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.FindByEmail(ctx, "a@x.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}
