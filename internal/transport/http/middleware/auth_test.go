package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-auth-gateway/internal/config"
	"github.com/go-auth-gateway/internal/domain"
	jwtinfra "github.com/go-auth-gateway/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	p, err := jwtinfra.NewProvider(config.JWT{
		Secret:     "0123456789abcdef0123456789abcdef",
		Issuer:     "auth-gateway",
		Audience:   "auth-gateway-clients",
		SessionTTL: time.Hour,
	})
	require.NoError(t, err)
	return p
}

func claimsEcho(t *testing.T, captured **jwtinfra.Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		*captured = c
		w.WriteHeader(http.StatusOK)
	})
}

func sessionToken(t *testing.T, p *jwtinfra.Provider, ttl time.Duration) string {
	t.Helper()
	token, err := p.Sign(jwtinfra.SessionClaims(&domain.User{
		ID:    "u1",
		Email: "a@x.com",
		Roles: []string{domain.RoleUser},
	}), ttl)
	require.NoError(t, err)
	return token
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuth_BearerHeader(t *testing.T) {
	p := testProvider(t)
	var got *jwtinfra.Claims
	mw := Auth(p, "token")(claimsEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, p, time.Hour))
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.Subject)
}

func TestAuth_CookieFallback(t *testing.T) {
	p := testProvider(t)
	var got *jwtinfra.Claims
	mw := Auth(p, "token")(claimsEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: sessionToken(t, p, time.Hour)})
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestAuth_HeaderTakesPrecedenceOverCookie(t *testing.T) {
	p := testProvider(t)
	mw := Auth(p, "token")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Valid cookie, garbage header: the header wins, so the request fails.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	req.AddCookie(&http.Cookie{Name: "token", Value: sessionToken(t, p, time.Hour)})
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ExpiredToken_ReasonPreserved(t *testing.T) {
	p := testProvider(t)
	mw := Auth(p, "token")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	token := sessionToken(t, p, time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, errorBody(t, rec)["error"], "expired")
}

func TestAuth_MissingToken_ReasonPreserved(t *testing.T) {
	p := testProvider(t)
	mw := Auth(p, "token")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, errorBody(t, rec)["error"], "missing")
}

func TestRequireRole_NoIdentity(t *testing.T) {
	mw := RequireRole(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_MismatchAndMatch(t *testing.T) {
	p := testProvider(t)

	guarded := Auth(p, "token")(RequireRole(domain.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	))

	// Role "user" against an admin-only guard.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, p, time.Hour))
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admin passes.
	adminToken, err := p.Sign(jwtinfra.SessionClaims(&domain.User{
		ID:    "u2",
		Roles: []string{domain.RoleAdmin},
	}), time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
