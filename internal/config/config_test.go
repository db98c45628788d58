package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSecret() string {
	return strings.Repeat("a", 32)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("INBOXHUB_SESSION_SECRET", validSecret())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 8081, cfg.Server.OpsPort)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "memory", cfg.Database.Type)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "inboxhub", cfg.Session.Issuer)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("INBOXHUB_SESSION_SECRET", validSecret())
	t.Setenv("INBOXHUB_SERVER_PORT", "9090")
	t.Setenv("INBOXHUB_SERVER_BASE_URL", "https://mail.example.com/")
	t.Setenv("INBOXHUB_CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("INBOXHUB_DATABASE_TYPE", "postgres")
	t.Setenv("INBOXHUB_DATABASE_DSN", "postgres://localhost/inboxhub")
	t.Setenv("INBOXHUB_SESSION_TTL", "12h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	// 末尾斜杠被规整掉
	assert.Equal(t, "https://mail.example.com", cfg.Server.BaseURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
}

func TestLoad_RequiresSessionSecret(t *testing.T) {
	t.Setenv("INBOXHUB_SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session secret")

	t.Setenv("INBOXHUB_SESSION_SECRET", "too-short")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownDatabaseType(t *testing.T) {
	t.Setenv("INBOXHUB_SESSION_SECRET", validSecret())
	t.Setenv("INBOXHUB_DATABASE_TYPE", "oracle")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestLoad_RequiresDSNForSQLBackends(t *testing.T) {
	t.Setenv("INBOXHUB_SESSION_SECRET", validSecret())
	t.Setenv("INBOXHUB_DATABASE_TYPE", "mysql")
	t.Setenv("INBOXHUB_DATABASE_DSN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DSN is required")
}
