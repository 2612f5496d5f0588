package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadWithEnv_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadWithEnv(path, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "v19.0", cfg.Graph.APIVersion)
	assert.Equal(t, 0.4, cfg.Thresholds.Optimal)
	assert.Equal(t, 0.9, cfg.Thresholds.Regular)
	assert.Len(t, cfg.Products, 4)
	assert.Equal(t, "OTROS", cfg.Fallback.Code)
	assert.Empty(t, cfg.Accounts.IDs)
}

func TestLoadWithEnv_EnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[graph]
access_token = "from-file"

[accounts]
ids = ["act_file"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadWithEnv(path, envMap(map[string]string{
		EnvAccessToken:        " from-env ",
		EnvAccountPrefix + "1": "111",
		EnvAccountPrefix + "3": "333",
		EnvAccountIDs:         "444, 111 ,,555",
	}))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Graph.AccessToken)
	assert.Equal(t, []string{"111", "333", "444", "555"}, cfg.Accounts.IDs)
}

func TestLoadWithEnv_FileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[accounts]
ids = [" 1 ", "2", "1", ""]

[[products]]
prefix = "zz"
code = "ZZ"
label = "Zeta"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadWithEnv(path, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, cfg.Accounts.IDs)
	require.Len(t, cfg.Products, 1)
	assert.Equal(t, "ZZ", cfg.Products[0].Code)
}

func TestLoadWithEnv_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[graph\n"), 0o600))

	_, err := LoadWithEnv(path, envMap(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()

	err := cfg.Validate()
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.True(t, errors.Is(err, ErrMissingToken))
	assert.True(t, errors.Is(err, ErrNoAccounts))
	assert.Contains(t, err.Error(), "missing credentials")

	cfg.Graph.AccessToken = "tok"
	err = cfg.Validate()
	assert.False(t, errors.Is(err, ErrMissingToken))
	assert.True(t, errors.Is(err, ErrNoAccounts))

	cfg.Accounts.IDs = []string{"act_1"}
	assert.NoError(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.Graph.AccessToken = "tok"
	cfg.Accounts.IDs = []string{"act_1", "act_2"}
	cfg.Appearance.Theme = "tokyo-night"

	require.NoError(t, Save(path, cfg))
	assert.True(t, Exists(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := LoadWithEnv(path, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, cfg.Accounts.IDs, got.Accounts.IDs)
	assert.Equal(t, "tokyo-night", got.Appearance.Theme)
	assert.Equal(t, "tok", got.Graph.AccessToken)
}
