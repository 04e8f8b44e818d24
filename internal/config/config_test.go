package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "curl", cfg.DefaultTarget)
	assert.Equal(t, ":8090", cfg.ServerAddr)
	assert.Zero(t, cfg.TimeoutMillis)
	assert.False(t, cfg.History.Disabled)
	assert.True(t, filepath.IsAbs(cfg.History.Path))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`default_target: python
server:
  addr: "127.0.0.1:9000"
timeout_ms: 5000
history:
  path: /tmp/custom.db
  disabled: true
vars:
  host: api.example.com
  auth:
    token: secret
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "python", cfg.DefaultTarget)
	assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddr)
	assert.EqualValues(t, 5000, cfg.TimeoutMillis)
	assert.Equal(t, "/tmp/custom.db", cfg.History.Path)
	assert.True(t, cfg.History.Disabled)
	assert.Equal(t, "api.example.com", cfg.Vars["host"])
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("REQFORGE_DEFAULT_TARGET", "go")
	t.Setenv("REQFORGE_HISTORY_DISABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "go", cfg.DefaultTarget)
	assert.True(t, cfg.History.Disabled)
}
