package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aura-survey/backend/config"
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

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTakeSurvey(t *testing.T) {
	srv := newServer(t)
	state := filepath.Join(t.TempDir(), "progress.json")
	common := []string{"--server", srv.URL, "--state", state}

	_, err := run(t, "", append([]string{"take"}, common...)...)
	assert.ErrorIs(t, err, errNotSignedIn)

	out, err := run(t, "secret1\n", append([]string{"register", "--email", "alice@example.com"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Registered and signed in as alice@example.com")

	out, err = run(t, "2\np 40\nn\n9\nq\n", append([]string{"take"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Question 1 of 3: Which fruit do you like best?")
	assert.Contains(t, out, "* 2) Banana")
	assert.Contains(t, out, "Feedback: 100% of 1 respondents chose the same option; you predicted 40% (off by 60)")
	assert.Contains(t, out, "Question 2 of 3")
	assert.Contains(t, out, "Error: choose an option between 1 and 4")

	out, err = run(t, "", append([]string{"summary"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Your answer: Banana")
	assert.Contains(t, out, "Your prediction: 40%")
	assert.Contains(t, out, "Your answer: No answer")

	out, err = run(t, "", append([]string{"logout"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	_, err = run(t, "", append([]string{"login", "--email", "alice@example.com", "--password", "wrong1"}, common...)...)
	assert.Error(t, err)
}
