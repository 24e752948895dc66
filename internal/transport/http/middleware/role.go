package middleware

import (
	"net/http"
)

// RequireRole returns middleware that allows access only when the verified
// identity's role set intersects the allowed roles. A missing identity is
// treated exactly like a role mismatch.
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			for _, role := range allowedRoles {
				if claims.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}
