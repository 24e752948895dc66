package handler

import (
	"net/http"

	jwtinfra "github.com/go-auth-gateway/internal/infrastructure/jwt"
)

// ConfigHandler exposes the token configuration to co-located internal
// services. The router only mounts it outside production; the signing secret
// must never cross a public network boundary.
type ConfigHandler struct {
	provider *jwtinfra.Provider
	secret   string
}

func NewConfigHandler(provider *jwtinfra.Provider, secret string) *ConfigHandler {
	return &ConfigHandler{provider: provider, secret: secret}
}

func (h *ConfigHandler) JWT(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"secret":    h.secret,
		"algorithm": h.provider.Algorithm(),
	})
}
