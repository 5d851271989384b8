package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tekus/provider-console/internal/api"
)

func withHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvSuccessMarker, "")
	return dir
}

func writeConfig(t *testing.T, home, body string) {
	t.Helper()
	cfgDir := filepath.Join(home, ".tekus")
	require.NoError(t, os.MkdirAll(cfgDir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config"), []byte(body), 0600))
}

func TestSaveConfigCreatesDirectories(t *testing.T) {
	withHome(t)

	cfg := Default()
	require.NoError(t, cfg.Save())

	info, err := os.Stat(Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadConfigNonExistent(t *testing.T) {
	withHome(t)

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSaveLoadRoundtripWithAllFields(t *testing.T) {
	withHome(t)

	original := Config{
		APIURL:         "http://tekus.internal/api",
		Email:          "admin@tekus.co",
		SuccessMarker:  "successfully",
		LogLevel:       "debug",
		RequestTimeout: 5 * time.Second,
	}
	require.NoError(t, original.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, original, *loaded)
}

func TestLoadFillsDefaults(t *testing.T) {
	home := withHome(t)
	writeConfig(t, home, "email: admin@tekus.co\n")

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, api.DefaultBaseURL, loaded.APIURL)
	assert.Equal(t, api.DefaultSuccessMarker, loaded.SuccessMarker)
	assert.Equal(t, 30*time.Second, loaded.Timeout())
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	home := withHome(t)
	writeConfig(t, home, "invalid: yaml: content:")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBlankAPIURL(t *testing.T) {
	home := withHome(t)
	writeConfig(t, home, "api_url: \"  \"\n")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "api_url")
}

func TestConfigPermissionsStrictlyEnforced(t *testing.T) {
	withHome(t)

	cfg := Default()
	require.NoError(t, cfg.Save())
	require.NoError(t, os.Chmod(Path(), 0644))

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "permissions")

	_, err = Resolve()
	assert.Error(t, err, "insecure file is not silently replaced by defaults")
}

func TestResolveWithoutFileUsesDefaults(t *testing.T) {
	withHome(t)
	t.Chdir(t.TempDir())

	cfg, err := Resolve()
	require.NoError(t, err)
	assert.Equal(t, api.DefaultBaseURL, cfg.APIURL)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	home := withHome(t)
	writeConfig(t, home, "api_url: http://from-file\nlog_level: info\n")
	t.Chdir(t.TempDir())
	t.Setenv(EnvAPIURL, "http://from-env")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Resolve()
	require.NoError(t, err)
	assert.Equal(t, "http://from-env", cfg.APIURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestApplyEnvReadsDotEnv(t *testing.T) {
	withHome(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(EnvSuccessMarker+"=successfully\n"), 0600))
	// godotenv never overrides a variable that is already set, even to "".
	require.NoError(t, os.Unsetenv(EnvSuccessMarker))

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envFile))
	assert.Equal(t, "successfully", cfg.SuccessMarker)
}

func TestApplyEnvMissingFileIsFine(t *testing.T) {
	withHome(t)
	cfg := Default()
	assert.NoError(t, cfg.ApplyEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestClientUsesConfig(t *testing.T) {
	cfg := Config{APIURL: "http://tekus.internal/api/", RequestTimeout: time.Second}
	client := cfg.Client()
	assert.Equal(t, "http://tekus.internal/api", client.BaseURL())
}

func TestPathReturnsCorrectLocation(t *testing.T) {
	path := Path()
	assert.Contains(t, path, ".tekus")
	assert.Contains(t, path, "config")
}
