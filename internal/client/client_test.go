package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aura-survey/backend/config"
	"github.com/aura-survey/backend/internal/apperr"
	"github.com/aura-survey/backend/internal/auth"
	"github.com/aura-survey/backend/internal/router"
	"github.com/aura-survey/backend/internal/testutil"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(router.New(router.Deps{
		Logger:        zap.NewNop(),
		Server:        config.ServerConfig{Development: true},
		AuthMode:      config.AuthModeLocal,
		Stores:        router.SQLiteStores(testutil.SetupSQLite(t)),
		Authenticator: auth.NewJWTService("test-secret", 1),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientAgainstServer(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	c := New(srv.URL + "/")

	_, err := c.Answers(ctx)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	assert.Equal(t, "no token provided", apperr.Message(err))

	reg, err := c.Register(ctx, "alice@example.com", "secret1", nil)
	require.NoError(t, err)
	c.SetToken(reg.Token)

	qs, err := c.Questions(ctx)
	require.NoError(t, err)
	require.Len(t, qs, 3)

	opt := int64(2)
	res, err := c.SubmitAnswer(ctx, 1, &opt, nil)
	require.NoError(t, err)
	assert.True(t, res.Inserted)

	prediction := "42"
	res, err = c.SubmitAnswer(ctx, 1, &opt, &prediction)
	require.NoError(t, err)
	assert.True(t, res.Updated)

	answers, err := c.Answers(ctx)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "42", *answers[0].FreeAnswer)

	counts, err := c.Counts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 1, counts[0].Count)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, me.ID)

	_, err = c.Register(ctx, "alice@example.com", "secret1", nil)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = c.Counts(ctx, 99)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	c.SetToken("expired-or-bogus")
	_, err = c.Answers(ctx)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.True(t, apperr.IsAuth(err))
}

func TestStatusErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Questions(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
	assert.Equal(t, "Bad Gateway", apperr.Message(err))
}
