package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 200, cfg.SuggestionCap)
	assert.Equal(t, 1200, cfg.MaxDimension)
	assert.Equal(t, 85, cfg.JPEGQuality)
	assert.Equal(t, "shipcam.db", filepath.Base(cfg.DBPath))
	assert.True(t, cfg.IsLocal())
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SHIPCAM_ENV", EnvProd)
	t.Setenv("SHIPCAM_JPEG_QUALITY", "70")
	t.Setenv("SHIPCAM_DB_PATH", "/tmp/x.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, EnvProd, cfg.Env)
	assert.Equal(t, 70, cfg.JPEGQuality)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.False(t, cfg.IsLocal())
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_dimension: 800\nsuggestion_cap: 10\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.MaxDimension)
	assert.Equal(t, 10, cfg.SuggestionCap)
}

func TestLoadRejectsInvalid(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SHIPCAM_JPEG_QUALITY", "0")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jpeg_quality")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
