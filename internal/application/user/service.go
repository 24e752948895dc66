package user

import (
	"context"
	"net/url"
	"time"

	"github.com/go-auth-gateway/internal/domain"
	"github.com/go-auth-gateway/internal/events"
	"github.com/go-auth-gateway/internal/infrastructure/directory"
	jwtinfra "github.com/go-auth-gateway/internal/infrastructure/jwt"
)

// Directory is the slice of the user directory client the account flows need.
type Directory interface {
	Create(ctx context.Context, req directory.CreateUser) (*domain.User, error)
	DeleteSelf(ctx context.Context, bearer string) error
	DeleteByID(ctx context.Context, bearer, id string) error
}

// TokenSigner mints the email-verification purpose token.
type TokenSigner interface {
	Sign(claims *jwtinfra.Claims, ttl time.Duration) (string, error)
}

// Emitter publishes lifecycle events best-effort, preserving order within one
// call.
type Emitter interface {
	EmitAll(ctx context.Context, evts ...*domain.Event)
}

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	DeleteAccount(ctx context.Context, bearer string) error
	DeleteByID(ctx context.Context, bearer, id string) error
}

type service struct {
	directory   Directory
	signer      TokenSigner
	emitter     Emitter
	verifyTTL   time.Duration
	linkBaseURL string
}

func NewService(dir Directory, signer TokenSigner, emitter Emitter, verifyTTL time.Duration, linkBaseURL string) Service {
	return &service{
		directory:   dir,
		signer:      signer,
		emitter:     emitter,
		verifyTTL:   verifyTTL,
		linkBaseURL: linkBaseURL,
	}
}

// Register creates the account through the directory — which owns uniqueness
// and format validation — then mints a 24h verification token and emits the
// registered/verification-requested pair. The account has already committed
// upstream by the time events go out, so both emissions are best-effort.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	u, err := s.directory.Create(ctx, directory.CreateUser{
		Email:           req.Email,
		Password:        req.Password,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Roles:           []string{domain.RoleUser},
		IsEmailVerified: false,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.signer.Sign(jwtinfra.PurposeClaims(u.Email), s.verifyTTL)
	if err != nil {
		return nil, err
	}

	s.emitter.EmitAll(ctx,
		events.NewEvent(ctx, domain.EventUserRegistered, map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"first_name": u.FirstName,
			"last_name":  u.LastName,
		}),
		events.NewEvent(ctx, domain.EventVerificationRequested, map[string]any{
			"email":            u.Email,
			"verification_url": s.linkBaseURL + "/v1/email/verify?token=" + url.QueryEscape(token),
		}),
	)

	return u, nil
}

func (s *service) DeleteAccount(ctx context.Context, bearer string) error {
	return s.directory.DeleteSelf(ctx, bearer)
}

func (s *service) DeleteByID(ctx context.Context, bearer, id string) error {
	return s.directory.DeleteByID(ctx, bearer, id)
}
