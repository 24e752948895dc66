package jwtinfra

import (
	"errors"
	"time"

	"github.com/go-auth-gateway/internal/config"
	"github.com/go-auth-gateway/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the JWT payload fields. Session tokens carry the full set;
// purpose tokens (reset, verify, reactivate) carry only what their flow needs.
type Claims struct {
	Email         string   `json:"email,omitempty"`
	Name          string   `json:"name,omitempty"`
	Roles         []string `json:"roles,omitempty"`
	EmailVerified bool     `json:"email_verified,omitempty"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims carry the given role.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// VerifyStatus tags the outcome of a detailed verification.
type VerifyStatus int

const (
	TokenValid VerifyStatus = iota
	TokenExpired
	TokenMalformed
	TokenMissing
)

// Message returns the caller-facing description for a failed status.
func (s VerifyStatus) Message() string {
	switch s {
	case TokenMissing:
		return "missing authorization token"
	case TokenExpired:
		return "token has expired"
	default:
		return "invalid token"
	}
}

// Provider signs and verifies HS256 JWTs. It is constructed once at startup
// from an immutable config snapshot and is safe for concurrent use.
type Provider struct {
	secret     []byte
	issuer     string
	audience   string
	sessionTTL time.Duration
}

func NewProvider(cfg config.JWT) (*Provider, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt: signing secret is empty")
	}
	return &Provider{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		sessionTTL: cfg.SessionTTL,
	}, nil
}

// SessionTTL returns the configured session token lifetime. The transport
// layer uses it as the cookie max-age.
func (p *Provider) SessionTTL() time.Duration {
	return p.sessionTTL
}

// Algorithm returns the signing algorithm name.
func (p *Provider) Algorithm() string {
	return jwt.SigningMethodHS256.Alg()
}

// Sign merges the supplied claims with issuer/audience/issued-at (pre-set
// iss/aud win) and signs with expiry = now + ttl. A ttl <= 0 falls back to the
// configured session TTL.
func (p *Provider) Sign(claims *Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = p.sessionTTL
	}
	now := time.Now()
	if claims.Issuer == "" {
		claims.Issuer = p.issuer
	}
	if len(claims.Audience) == 0 {
		claims.Audience = jwt.ClaimStrings{p.audience}
	}
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// Verify checks signature, issuer, audience and expiry, collapsing every
// failure to nil. Workflows must treat nil uniformly regardless of cause so
// transitions like password reset cannot be used as a token oracle.
func (p *Provider) Verify(tokenStr string) *Claims {
	claims, status := p.VerifyDetailed(tokenStr)
	if status != TokenValid {
		return nil
	}
	return claims
}

// VerifyDetailed is the single source of verification truth. It returns the
// decoded claims together with a tagged status so call sites can choose
// whether to preserve the failure reason (authorization guard) or collapse it
// (workflow-facing Verify).
func (p *Provider) VerifyDetailed(tokenStr string) (*Claims, VerifyStatus) {
	if tokenStr == "" {
		return nil, TokenMissing
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	}, jwt.WithIssuer(p.issuer), jwt.WithAudience(p.audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, TokenExpired
		}
		return nil, TokenMalformed
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, TokenMalformed
	}
	return claims, TokenValid
}

// SessionClaims builds the full-identity claim set for a session token.
func SessionClaims(u *domain.User) *Claims {
	return &Claims{
		Email:         u.Email,
		Name:          u.FullName(),
		Roles:         u.Roles,
		EmailVerified: u.IsEmailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: u.ID,
		},
	}
}

// PurposeClaims builds the minimal claim set for reset/verify/reactivate
// purpose tokens: just the email.
func PurposeClaims(email string) *Claims {
	return &Claims{Email: email}
}

// InternalClaims builds the claim set for short-lived tokens the gateway mints
// to authorize its own directory calls.
func InternalClaims(u *domain.User) *Claims {
	return &Claims{
		Email: u.Email,
		Roles: u.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: u.ID,
		},
	}
}
