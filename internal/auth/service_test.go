package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aura-survey/backend/internal/apperr"
	"github.com/aura-survey/backend/internal/models"
	"github.com/aura-survey/backend/internal/testutil"
)

func newLocalService(t *testing.T) *Service {
	t.Helper()
	repo := NewSQLiteRepository(testutil.SetupSQLite(t))
	return NewService(repo, NewJWTService("test-secret", 168), zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newLocalService(t)
	ctx := context.Background()
	name := "  Alice "

	reg, err := svc.Register(ctx, "Alice@Example.com", "secret1", &name)
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice@example.com", reg.User.Email)
	require.NotNil(t, reg.User.Name)
	assert.Equal(t, "Alice", *reg.User.Name)

	login, err := svc.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	user, err := svc.Resolve(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, user.ID)
}

func TestRegisterDuplicate(t *testing.T) {
	svc := newLocalService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "secret1", nil)
	require.NoError(t, err)

	res, err := svc.Register(ctx, "ALICE@example.com", "another1", nil)
	assert.Nil(t, res, "no token on conflict")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, "user already exists", apperr.Message(err))
}

func TestRegisterValidation(t *testing.T) {
	svc := newLocalService(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "secret1"},
		{"not an email", "alice", "secret1"},
		{"display name form", "Alice <alice@example.com>", "secret1"},
		{"short password", "alice@example.com", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.email, tt.password, nil)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newLocalService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice@example.com", "secret1", nil)
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "alice@example.com", "wrong-password")
	_, unknownEmail := svc.Login(ctx, "nobody@example.com", "secret1")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, apperr.KindOf(wrongPassword), apperr.KindOf(unknownEmail))
	assert.Equal(t, apperr.Message(wrongPassword), apperr.Message(unknownEmail))
	assert.Equal(t, "invalid credentials", apperr.Message(unknownEmail))
}

func TestResolveRejectsBadTokens(t *testing.T) {
	svc := newLocalService(t)
	ctx := context.Background()

	_, err := svc.Resolve(ctx, "garbage")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	orphan, err := NewJWTService("test-secret", 1).IssueToken(&models.User{ID: 999, Email: "ghost@example.com"})
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, orphan)
	assert.True(t, apperr.Is(err, apperr.KindForbidden), "token for a missing user")
}

func TestResolveExternalLinksOnce(t *testing.T) {
	key, pub := newRSAKey(t)
	verifier, err := NewExternalVerifier(pub, "")
	require.NoError(t, err)
	svc := NewService(NewSQLiteRepository(testutil.SetupSQLite(t)), verifier, zap.NewNop())
	ctx := context.Background()

	token := providerToken(t, key, Claims{
		Email: "carol@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_carol",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	first, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	second, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, first.ExternalID)
	assert.Equal(t, "user_carol", *first.ExternalID)
	assert.Equal(t, "carol@example.com", first.Email)
}
