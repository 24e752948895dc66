package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/go-auth-gateway/internal/infrastructure/jwt"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// TokenKey exposes the raw bearer token so handlers can forward it to the
// directory on self-service calls.
const TokenKey contextKey = "raw_token"

// Auth returns the authorization guard: it extracts a token from the
// Authorization header or the named cookie (header wins), verifies it, and
// injects the decoded identity into the request context. Unlike the
// workflow-facing Verify, the guard preserves the failure reason — an expired
// session and a malformed one get distinct 401 bodies.
func Auth(provider *jwtinfra.Provider, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := extractToken(r, cookieName)
			claims, status := provider.VerifyDetailed(tokenStr)
			if status != jwtinfra.TokenValid {
				writeJSONError(w, http.StatusUnauthorized, status.Message())
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			ctx = context.WithValue(ctx, TokenKey, tokenStr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// ClaimsFromContext extracts the verified identity from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}

// TokenFromContext extracts the raw bearer token from the request context.
func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(TokenKey).(string)
	return t, ok
}
