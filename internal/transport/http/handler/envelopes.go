package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-auth-gateway/internal/domain"
)

// MessageEnvelope is the generic success wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
}

// ErrorEnvelope is the structured error response every failure funnels into.
type ErrorEnvelope struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Timestamp  string `json:"timestamp"`
}

// AuthEnvelope wraps login responses.
type AuthEnvelope struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// RegisterEnvelope wraps registration responses.
type RegisterEnvelope struct {
	User                 *domain.User `json:"user"`
	RequiresVerification bool         `json:"requires_verification"`
}

// IdentityEnvelope echoes the verified caller identity.
type IdentityEnvelope struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	Name          string   `json:"name"`
	Roles         []string `json:"roles"`
	EmailVerified bool     `json:"email_verified"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorEnvelope{
		Error:      msg,
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

// httpError maps a workflow error to its HTTP status via the domain
// sentinels. The wrapped sentinel suffix is trimmed from the message so
// callers see "account is deactivated", not "account is deactivated:
// forbidden".
func httpError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var sentinel error
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		status, sentinel = http.StatusBadRequest, domain.ErrBadRequest
	case errors.Is(err, domain.ErrInvalidToken):
		status, sentinel = http.StatusBadRequest, domain.ErrInvalidToken
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, sentinel = http.StatusUnauthorized, domain.ErrInvalidCredentials
	case errors.Is(err, domain.ErrForbidden):
		status, sentinel = http.StatusForbidden, domain.ErrForbidden
	case errors.Is(err, domain.ErrNotFound):
		status, sentinel = http.StatusNotFound, domain.ErrNotFound
	case errors.Is(err, domain.ErrConflict):
		status, sentinel = http.StatusConflict, domain.ErrConflict
	case errors.Is(err, domain.ErrUnavailable):
		status, sentinel = http.StatusServiceUnavailable, domain.ErrUnavailable
	}

	msg := err.Error()
	if sentinel != nil {
		msg = strings.TrimSuffix(msg, ": "+sentinel.Error())
	}
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeError(w, status, msg)
}
