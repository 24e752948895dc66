package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-auth-gateway/internal/application/session"
	"github.com/go-auth-gateway/internal/application/user"
	"github.com/go-auth-gateway/internal/domain"
	"github.com/go-auth-gateway/internal/pkg/validate"
)

// AuthHandler handles login, logout and registration.
type AuthHandler struct {
	sessions session.Service
	users    user.Service
	cookies  Cookies
}

func NewAuthHandler(sessions session.Service, users user.Service, cookies Cookies) *AuthHandler {
	return &AuthHandler{sessions: sessions, users: users, cookies: cookies}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.sessions.Login(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	h.cookies.Set(w, result.Token, result.TokenTTL)
	writeJSON(w, http.StatusOK, AuthEnvelope{Token: result.Token, User: result.User})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.users.Register(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, RegisterEnvelope{User: u, RequiresVerification: true})
}
