package handler

import (
	"net/http"

	"github.com/go-auth-gateway/internal/transport/http/middleware"
)

// IdentityHandler echoes the verified caller identity attached by the guard.
type IdentityHandler struct{}

func NewIdentityHandler() *IdentityHandler { return &IdentityHandler{} }

func (h *IdentityHandler) Echo(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}
	writeJSON(w, http.StatusOK, IdentityEnvelope{
		ID:            claims.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		Roles:         claims.Roles,
		EmailVerified: claims.EmailVerified,
	})
}
