package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-auth-gateway/internal/domain"
	jwtinfra "github.com/go-auth-gateway/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockDirectory struct{ mock.Mock }

func (m *mockDirectory) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(claims *jwtinfra.Claims, ttl time.Duration) (string, error) {
	args := m.Called(claims, ttl)
	return args.String(0), args.Error(1)
}

func (m *mockSigner) SessionTTL() time.Duration { return time.Hour }

type mockEmitter struct{ mock.Mock }

func (m *mockEmitter) Emit(ctx context.Context, eventType string, data map[string]any) {
	m.Called(ctx, eventType, data)
}

// --- helpers ---

func hashOf(t *testing.T, plain string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func activeUser(t *testing.T, password string) *domain.User {
	return &domain.User{
		ID:              "u1",
		Email:           "a@x.com",
		FirstName:       "A",
		LastName:        "B",
		PasswordHash:    hashOf(t, password),
		Roles:           []string{domain.RoleUser},
		IsActive:        true,
		IsEmailVerified: true,
	}
}

// --- Login ---

func TestLogin_MissingFields(t *testing.T) {
	svc := NewService(&mockDirectory{}, &mockSigner{}, &mockEmitter{})

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestLogin_UnknownEmailAndWrongPassword_Indistinguishable(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("FindByEmail", mock.Anything, "missing@x.com").Return(nil, domain.ErrNotFound)
	dir.On("FindByEmail", mock.Anything, "a@x.com").Return(activeUser(t, "Secure1!"), nil)

	svc := NewService(dir, &mockSigner{}, &mockEmitter{})

	_, errUnknown := svc.Login(context.Background(), domain.LoginRequest{Email: "missing@x.com", Password: "whatever"})
	_, errWrongPw := svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "wrong"})

	require.Error(t, errUnknown)
	require.Error(t, errWrongPw)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
	assert.True(t, errors.Is(errUnknown, domain.ErrInvalidCredentials))
	assert.True(t, errors.Is(errWrongPw, domain.ErrInvalidCredentials))
}

func TestLogin_Deactivated_NoTokenNoEvent(t *testing.T) {
	u := activeUser(t, "Secure1!")
	u.IsActive = false

	dir := &mockDirectory{}
	dir.On("FindByEmail", mock.Anything, "a@x.com").Return(u, nil)
	signer := &mockSigner{}
	emitter := &mockEmitter{}

	svc := NewService(dir, signer, emitter)
	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "Secure1!"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.Contains(t, err.Error(), "account is deactivated")
	signer.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything)
	emitter.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_EmailNotVerified(t *testing.T) {
	u := activeUser(t, "Secure1!")
	u.IsEmailVerified = false

	dir := &mockDirectory{}
	dir.On("FindByEmail", mock.Anything, "a@x.com").Return(u, nil)

	svc := NewService(dir, &mockSigner{}, &mockEmitter{})
	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "Secure1!"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.Contains(t, err.Error(), "verify your email")
}

func TestLogin_DeactivationCheckedBeforePassword(t *testing.T) {
	u := activeUser(t, "Secure1!")
	u.IsActive = false

	dir := &mockDirectory{}
	dir.On("FindByEmail", mock.Anything, "a@x.com").Return(u, nil)

	svc := NewService(dir, &mockSigner{}, &mockEmitter{})
	// Wrong password and deactivated account: deactivation wins.
	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "wrong"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestLogin_DirectoryDown(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, domain.ErrUnavailable)

	svc := NewService(dir, &mockSigner{}, &mockEmitter{})
	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "Secure1!"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}

func TestLogin_HappyPath(t *testing.T) {
	u := activeUser(t, "Secure1!")

	dir := &mockDirectory{}
	dir.On("FindByEmail", mock.Anything, "a@x.com").Return(u, nil)
	signer := &mockSigner{}
	signer.On("Sign", mock.AnythingOfType("*jwtinfra.Claims"), time.Duration(0)).Return("signed-token", nil)
	emitter := &mockEmitter{}
	emitter.On("Emit", mock.Anything, domain.EventLogin, mock.Anything)

	svc := NewService(dir, signer, emitter)
	result, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "Secure1!"})

	require.NoError(t, err)
	assert.Equal(t, "signed-token", result.Token)
	assert.Equal(t, time.Hour, result.TokenTTL)
	assert.Equal(t, "u1", result.User.ID)

	signer.AssertExpectations(t)
	emitter.AssertCalled(t, "Emit", mock.Anything, domain.EventLogin, map[string]any{
		"user_id": "u1",
		"email":   "a@x.com",
	})

	claims := signer.Calls[0].Arguments.Get(0).(*jwtinfra.Claims)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "A B", claims.Name)
	assert.True(t, claims.EmailVerified)
}
