package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-auth-gateway/internal/application/auth"
	"github.com/go-auth-gateway/internal/domain"
	"github.com/go-auth-gateway/internal/pkg/validate"
)

// ReactivateHandler handles the account reactivation flow.
type ReactivateHandler struct {
	svc auth.Service
}

func NewReactivateHandler(svc auth.Service) *ReactivateHandler {
	return &ReactivateHandler{svc: svc}
}

func (h *ReactivateHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req domain.ReactivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.RequestReactivation(r.Context(), req.Email); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "reactivation email sent"})
}

// Confirm accepts the token either in the query string (emailed link) or in a
// JSON body.
func (h *ReactivateHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" && r.Body != nil {
		var req domain.ConfirmTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.Token
		}
	}
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	_, already, err := h.svc.ConfirmReactivation(r.Context(), token)
	if err != nil {
		httpError(w, err)
		return
	}
	if already {
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "account already active"})
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "account reactivated"})
}
