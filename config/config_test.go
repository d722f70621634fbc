package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("AUTH_MODE", "")
	t.Setenv("JWT_EXPIRE_HOURS", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, AuthModeLocal, cfg.Auth.Mode)
	assert.Equal(t, 168, cfg.JWT.ExpireHours)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	_, err := Load()
	require.Error(t, err)
}

func TestProductionNeedsJWTSecret(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("AUTH_MODE", "")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-real-production-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Server.Development)
}

func TestExternalModeNeedsKey(t *testing.T) {
	t.Setenv("AUTH_MODE", "external")
	t.Setenv("AUTH_EXTERNAL_PUBLIC_KEY", "")
	_, err := Load()
	require.Error(t, err)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "5432", DBName: "survey", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/survey?sslmode=disable", c.DSN())

	c.URL = "postgres://x"
	assert.Equal(t, "postgres://x", c.DSN())
}

func TestExternalPublicKeyPEM(t *testing.T) {
	inline := AuthConfig{ExternalPublicKey: "-----BEGIN PUBLIC KEY-----\nabc\n-----END PUBLIC KEY-----"}
	b, err := inline.ExternalPublicKeyPEM()
	require.NoError(t, err)
	assert.Contains(t, string(b), "BEGIN PUBLIC KEY")

	path := filepath.Join(t.TempDir(), "key.pem")
	require.NoError(t, os.WriteFile(path, []byte("pem-from-file"), 0o600))
	fromFile := AuthConfig{ExternalPublicKey: path}
	b, err = fromFile.ExternalPublicKeyPEM()
	require.NoError(t, err)
	assert.Equal(t, "pem-from-file", string(b))
}

func TestSplitOrigins(t *testing.T) {
	s := ServerConfig{CORSAllowedOrigins: " http://a , ,http://b"}
	assert.Equal(t, []string{"http://a", "http://b"}, s.SplitOrigins())
}
