package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 3, cfg.API.Retries)
	assert.Equal(t, 30, cfg.Cache.StaleSeconds)
	assert.Equal(t, "file", cfg.Prefs.Driver)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, 60, cfg.Alerts.PollSeconds)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, int64(30), int64(cfg.Cache.StaleTime().Seconds()))
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
server:
  port: 9090
api:
  base_url: https://fraud.example.com/api
auth:
  jwt_secret: s3cret
  users:
    - email: ana@example.com
      name: Ana
      role: analyst
      password_hash: $2a$10$abcdefghijklmnopqrstuv
prefs:
  driver: sqlite
  path: prefs.db
storage:
  driver: r2
  r2:
    bucket: reports
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://fraud.example.com/api", cfg.API.BaseURL)
	require.Len(t, cfg.Auth.Users, 1)
	assert.Equal(t, "analyst", cfg.Auth.Users[0].Role)
	assert.Equal(t, "reports", cfg.Storage.R2.Bucket)
	assert.Equal(t, 12, cfg.Auth.TokenTTLHours, "defaults still apply")
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: 9090\n"), 0o644))
	t.Setenv("FRAUD_DASHBOARD_SERVER_PORT", "7070")
	t.Setenv("FRAUD_DASHBOARD_API_TOKEN", "tok")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "tok", cfg.API.Token)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FRAUD_DASHBOARD_AUTH_JWT_SECRET=from-dotenv\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("FRAUD_DASHBOARD_AUTH_JWT_SECRET") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Auth.JWTSecret)
}

func TestValidate(t *testing.T) {
	chdirTemp(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Error(t, cfg.Validate(), "jwt secret is required")

	cfg.Auth.JWTSecret = "x"
	assert.NoError(t, cfg.Validate())

	cfg.Prefs.Driver = "postgres"
	assert.Error(t, cfg.Validate())
	cfg.Prefs.DatabaseURL = "postgres://localhost/prefs"
	assert.NoError(t, cfg.Validate())

	cfg.Storage.Driver = "ftp"
	assert.Error(t, cfg.Validate())
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	assert.Error(t, InitLogger(LogConfig{Level: "loud"}))
}
