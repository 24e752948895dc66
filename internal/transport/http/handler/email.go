package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-auth-gateway/internal/application/auth"
	"github.com/go-auth-gateway/internal/domain"
	"github.com/go-auth-gateway/internal/pkg/validate"
)

// EmailHandler handles the email verification flow.
type EmailHandler struct {
	svc auth.Service
}

func NewEmailHandler(svc auth.Service) *EmailHandler {
	return &EmailHandler{svc: svc}
}

// Verify consumes the emailed token from the query string. Verifying an
// already-verified account succeeds idempotently.
func (h *EmailHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	_, already, err := h.svc.VerifyEmail(r.Context(), token)
	if err != nil {
		httpError(w, err)
		return
	}
	if already {
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "email already verified"})
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "email verified"})
}

func (h *EmailHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.RequestEmailVerification(r.Context(), req.Email); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification email sent"})
}
