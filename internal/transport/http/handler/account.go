package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-auth-gateway/internal/application/user"
	"github.com/go-auth-gateway/internal/transport/http/middleware"
)

// AccountHandler handles account deletion, self-service and admin.
type AccountHandler struct {
	svc user.Service
}

func NewAccountHandler(svc user.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bearer, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}
	if err := h.svc.DeleteAccount(r.Context(), bearer); err != nil {
		httpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	bearer, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}
	if err := h.svc.DeleteByID(r.Context(), bearer, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
