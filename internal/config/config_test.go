package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/alphabot-ai/qna/internal/auth"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("QNA_ADDR", "")
	t.Setenv("PORT", "")
	t.Setenv("QNA_STORE", "")
	t.Setenv("QNA_JWT_ALG", "")
	t.Setenv("QNA_JWT_SECRET", "")
	t.Setenv("QNA_JWT_SECRET_FILE", "")
	t.Setenv("QNA_LOG_LEVEL", "")
	t.Setenv("QNA_TOKEN_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, StoreMemory, cfg.Store)
	require.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
	require.Equal(t, "HS256", cfg.JWT.Method.Alg())
	require.Equal(t, []byte("dev-jwt-secret"), cfg.JWT.Sign)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("QNA_ADDR", "")
	t.Setenv("PORT", "9000")
	t.Setenv("QNA_STORE", "SQLite")
	t.Setenv("QNA_DB", "/tmp/x.db")
	t.Setenv("QNA_LOG_LEVEL", "debug")
	t.Setenv("QNA_TOKEN_TTL", "15m")
	t.Setenv("QNA_RL_WRITE_PER_MIN", "5")
	t.Setenv("QNA_JWT_ALG", "")
	t.Setenv("QNA_JWT_SECRET_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Addr)
	require.Equal(t, StoreSQLite, cfg.Store)
	require.Equal(t, "/tmp/x.db", cfg.DBPath)
	require.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	require.Equal(t, 15*time.Minute, cfg.TokenTTL)
	require.Equal(t, 5, cfg.RateLimits.WritePerMinute)
}

func TestSecretFileWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(path, []byte("  from-file\n"), 0o600))
	t.Setenv("QNA_JWT_ALG", "")
	t.Setenv("QNA_JWT_SECRET", "inline")
	t.Setenv("QNA_JWT_SECRET_FILE", path)
	t.Setenv("QNA_STORE", "")
	t.Setenv("QNA_LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []byte("from-file"), cfg.JWT.Sign)
}

func TestES256KKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("ab", 32)+"\n"), 0o600))
	t.Setenv("QNA_JWT_ALG", "es256k")
	t.Setenv("QNA_JWT_KEY_FILE", path)
	t.Setenv("QNA_STORE", "")
	t.Setenv("QNA_LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, auth.SigningMethodES256K.Alg(), cfg.JWT.Method.Alg())
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown store":       {"QNA_STORE": "redis"},
		"bad log level":       {"QNA_LOG_LEVEL": "loud"},
		"unknown algorithm":   {"QNA_JWT_ALG": "RS256"},
		"missing key file":    {"QNA_JWT_ALG": "ES256K", "QNA_JWT_KEY_FILE": ""},
		"unreadable secret":   {"QNA_JWT_SECRET_FILE": "/nonexistent/secret"},
		"unreadable key file": {"QNA_JWT_ALG": "ES256K", "QNA_JWT_KEY_FILE": "/nonexistent/key"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"QNA_STORE", "QNA_LOG_LEVEL", "QNA_JWT_ALG", "QNA_JWT_SECRET_FILE", "QNA_JWT_KEY_FILE"} {
				t.Setenv(key, "")
			}
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestEmptySecretFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))
	t.Setenv("QNA_JWT_ALG", "")
	t.Setenv("QNA_JWT_SECRET_FILE", path)
	t.Setenv("QNA_STORE", "")
	t.Setenv("QNA_LOG_LEVEL", "")

	_, err := Load()
	require.ErrorContains(t, err, "empty")
}
