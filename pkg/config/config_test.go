package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 100, cfg.Fit.K)
	assert.True(t, cfg.Fit.ForcePositive)
	assert.False(t, cfg.Mask.Extrapolate)
	assert.Equal(t, 0.05, cfg.Mask.Dist)
	assert.False(t, cfg.Output.Verbose)
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoadConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gamsurface.yaml")

	cfg := DefaultConfig()
	cfg.Fit.K = 25
	cfg.Mask.Extrapolate = true
	cfg.Mask.Dist = 0.1
	cfg.Output.Verbose = true

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fit: ["), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
