package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-auth-gateway/internal/config"
	"github.com/go-auth-gateway/internal/domain"
	"github.com/go-auth-gateway/internal/infrastructure/directory"
	jwtinfra "github.com/go-auth-gateway/internal/infrastructure/jwt"
)

// Directory is the slice of the user directory client the token-driven flows
// need.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateSelf(ctx context.Context, bearer string, patch directory.UserPatch) (*domain.User, error)
	UpdateByID(ctx context.Context, bearer, id string, patch directory.UserPatch) (*domain.User, error)
}

// Tokens mints and checks purpose tokens. Verify collapses every failure to
// nil — these flows must not reveal why a token was rejected.
type Tokens interface {
	Sign(claims *jwtinfra.Claims, ttl time.Duration) (string, error)
	Verify(token string) *jwtinfra.Claims
}

// Emitter publishes lifecycle events best-effort.
type Emitter interface {
	Emit(ctx context.Context, eventType string, data map[string]any)
}

type Service interface {
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, bearer, currentPassword, newPassword string) error

	RequestEmailVerification(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, token string) (u *domain.User, already bool, err error)

	RequestReactivation(ctx context.Context, email string) error
	ConfirmReactivation(ctx context.Context, token string) (u *domain.User, already bool, err error)
}

type service struct {
	directory   Directory
	tokens      Tokens
	emitter     Emitter
	ttl         config.JWT
	linkBaseURL string
}

func NewService(dir Directory, tokens Tokens, emitter Emitter, ttl config.JWT, linkBaseURL string) Service {
	return &service{
		directory:   dir,
		tokens:      tokens,
		emitter:     emitter,
		ttl:         ttl,
		linkBaseURL: linkBaseURL,
	}
}

// RequestPasswordReset mints a 1h reset token for the account and emits the
// reset-requested event carrying the reset URL. Unlike login, this path is
// allowed to reveal that the email does not exist.
func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.tokens.Sign(jwtinfra.PurposeClaims(u.Email), s.ttl.ResetTTL)
	if err != nil {
		return err
	}

	s.emitter.Emit(ctx, domain.EventResetRequested, map[string]any{
		"email":     u.Email,
		"reset_url": s.linkBaseURL + "/v1/password/reset?token=" + url.QueryEscape(token),
	})
	return nil
}

// ResetPassword commits phase B of the reset: the purpose token proves control
// of the mailbox, so the directory is told to skip its current-password check.
func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims := s.tokens.Verify(token)
	if claims == nil {
		return domain.ErrInvalidToken
	}

	u, err := s.directory.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidToken
		}
		return err
	}

	internal, err := s.tokens.Sign(jwtinfra.InternalClaims(u), s.ttl.InternalTTL)
	if err != nil {
		return err
	}
	if _, err := s.directory.UpdateSelf(ctx, internal, directory.UserPatch{
		Password: &newPassword,
		IsReset:  true,
	}); err != nil {
		return err
	}

	s.emitter.Emit(ctx, domain.EventResetCompleted, map[string]any{
		"user_id": u.ID,
		"email":   u.Email,
	})
	return nil
}

// ChangePassword forwards a self-service password change under the caller's
// own session token. Identical old/new values are rejected before any
// upstream call is made.
func (s *service) ChangePassword(ctx context.Context, bearer, currentPassword, newPassword string) error {
	if currentPassword == newPassword {
		return fmt.Errorf("new password must differ from the current one: %w", domain.ErrBadRequest)
	}
	_, err := s.directory.UpdateSelf(ctx, bearer, directory.UserPatch{
		Password:        &newPassword,
		CurrentPassword: &currentPassword,
	})
	return err
}

// RequestEmailVerification re-issues the 24h verification token for an
// unverified account.
func (s *service) RequestEmailVerification(ctx context.Context, email string) error {
	u, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.IsEmailVerified {
		return fmt.Errorf("email already verified: %w", domain.ErrBadRequest)
	}

	token, err := s.tokens.Sign(jwtinfra.PurposeClaims(u.Email), s.ttl.VerifyTTL)
	if err != nil {
		return err
	}

	s.emitter.Emit(ctx, domain.EventVerificationRequested, map[string]any{
		"email":            u.Email,
		"verification_url": s.linkBaseURL + "/v1/email/verify?token=" + url.QueryEscape(token),
	})
	return nil
}

// VerifyEmail flips is_email_verified through the directory, authorized by a
// short-lived token the gateway mints for its own downstream call. A second
// verification of the same account short-circuits with no directory write.
func (s *service) VerifyEmail(ctx context.Context, token string) (*domain.User, bool, error) {
	u, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, false, err
	}
	if u.IsEmailVerified {
		return u, true, nil
	}

	internal, err := s.tokens.Sign(jwtinfra.InternalClaims(u), s.ttl.InternalTTL)
	if err != nil {
		return nil, false, err
	}
	verified := true
	updated, err := s.directory.UpdateByID(ctx, internal, u.ID, directory.UserPatch{
		IsEmailVerified: &verified,
	})
	if err != nil {
		return nil, false, err
	}
	return updated, false, nil
}

// RequestReactivation mirrors the verification request but toggles the
// account-active flag.
func (s *service) RequestReactivation(ctx context.Context, email string) error {
	u, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.IsActive {
		return fmt.Errorf("account already active: %w", domain.ErrBadRequest)
	}

	token, err := s.tokens.Sign(jwtinfra.PurposeClaims(u.Email), s.ttl.ReactivateTTL)
	if err != nil {
		return err
	}

	s.emitter.Emit(ctx, domain.EventReactivationRequested, map[string]any{
		"email":          u.Email,
		"reactivate_url": s.linkBaseURL + "/v1/reactivate/confirm?token=" + url.QueryEscape(token),
	})
	return nil
}

// ConfirmReactivation sets is_active through the directory, idempotently when
// the account is already active.
func (s *service) ConfirmReactivation(ctx context.Context, token string) (*domain.User, bool, error) {
	u, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, false, err
	}
	if u.IsActive {
		return u, true, nil
	}

	internal, err := s.tokens.Sign(jwtinfra.InternalClaims(u), s.ttl.InternalTTL)
	if err != nil {
		return nil, false, err
	}
	active := true
	updated, err := s.directory.UpdateByID(ctx, internal, u.ID, directory.UserPatch{
		IsActive: &active,
	})
	if err != nil {
		return nil, false, err
	}

	s.emitter.Emit(ctx, domain.EventReactivationCompleted, map[string]any{
		"user_id": updated.ID,
		"email":   updated.Email,
	})
	return updated, false, nil
}

// resolveToken verifies a purpose token and resolves its account. A valid
// token for a vanished account reads the same as a bad token.
func (s *service) resolveToken(ctx context.Context, token string) (*domain.User, error) {
	claims := s.tokens.Verify(token)
	if claims == nil {
		return nil, domain.ErrInvalidToken
	}
	u, err := s.directory.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}
