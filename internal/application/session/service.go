package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-auth-gateway/internal/domain"
	jwtinfra "github.com/go-auth-gateway/internal/infrastructure/jwt"
	"github.com/go-auth-gateway/internal/pkg/password"
)

// Directory is the slice of the user directory client the login flow needs.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TokenSigner mints session tokens.
type TokenSigner interface {
	Sign(claims *jwtinfra.Claims, ttl time.Duration) (string, error)
	SessionTTL() time.Duration
}

// Emitter publishes lifecycle events best-effort.
type Emitter interface {
	Emit(ctx context.Context, eventType string, data map[string]any)
}

// LoginResult carries the minted session token, its lifetime (for the cookie)
// and the sanitized account record.
type LoginResult struct {
	Token    string
	TokenTTL time.Duration
	User     *domain.User
}

type Service interface {
	Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
}

type service struct {
	directory Directory
	signer    TokenSigner
	emitter   Emitter
}

func NewService(directory Directory, signer TokenSigner, emitter Emitter) Service {
	return &service{directory: directory, signer: signer, emitter: emitter}
}

// Login is a single state transition with no intermediate state. The
// eligibility checks short-circuit in a fixed order; an unknown email and a
// wrong password must be indistinguishable to the caller.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", domain.ErrBadRequest)
	}

	u, err := s.directory.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("account is deactivated: %w", domain.ErrForbidden)
	}
	if !u.IsEmailVerified {
		return nil, fmt.Errorf("please verify your email: %w", domain.ErrForbidden)
	}
	if !password.Check(req.Password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.signer.Sign(jwtinfra.SessionClaims(u), 0)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, domain.EventLogin, map[string]any{
		"user_id": u.ID,
		"email":   u.Email,
	})

	return &LoginResult{Token: token, TokenTTL: s.signer.SessionTTL(), User: u}, nil
}
