package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaultsWithSecretFromEnv(t *testing.T) {
	t.Setenv("STOCKWATCH_AUTH_JWT_SECRET", testSecret)

	cfg, err := Load(LoadOptions{ConfigPaths: []string{t.TempDir()}})
	require.NoError(t, err)

	assert.Equal(t, "stockwatch", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "stockwatch.db", cfg.Database.DSN)
	assert.Equal(t, testSecret, cfg.Auth.JWT.Secret)
	assert.Equal(t, "0 0 * * *", cfg.Jobs.RefreshCron)
	assert.Equal(t, "0 8 * * *", cfg.Jobs.DigestCron)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
app:
  name: stockwatch-test
server:
  port: 9090
auth:
  jwt:
    secret: "`+testSecret+`"
`)

	cfg, err := Load(LoadOptions{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, "stockwatch-test", cfg.App.Name)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
server:
  port: 9090
auth:
  jwt:
    secret: "`+testSecret+`"
`)
	t.Setenv("STOCKWATCH_SERVER_PORT", "9191")

	cfg, err := Load(LoadOptions{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestLoadRejectsShortJWTSecret(t *testing.T) {
	t.Setenv("STOCKWATCH_AUTH_JWT_SECRET", "too-short")

	_, err := Load(LoadOptions{ConfigPaths: []string{t.TempDir()}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth")
}

func TestLoadRejectsMissingExplicitFile(t *testing.T) {
	_, err := Load(LoadOptions{ConfigFile: "/no/such/config.yml"})
	assert.Error(t, err)
}

func TestEnvKeyVariants(t *testing.T) {
	variants := envKeyVariants("AUTH_JWT_SECRET")
	assert.Contains(t, variants, "auth.jwt.secret")
	assert.Contains(t, variants, "auth.jwt_secret")
}
