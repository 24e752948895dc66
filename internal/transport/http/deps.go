package http

import (
	"github.com/go-auth-gateway/internal/events"
	"github.com/go-auth-gateway/internal/infrastructure/directory"
	jwtinfra "github.com/go-auth-gateway/internal/infrastructure/jwt"
)

// Deps holds all infrastructure dependencies for the router. Everything is
// constructed once in main and injected; no global state.
type Deps struct {
	Directory   *directory.Client
	JWTProvider *jwtinfra.Provider
	Emitter     *events.Emitter
}
