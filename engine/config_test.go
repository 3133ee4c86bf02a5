package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamstor/team-stor-engine/clock"
	"github.com/teamstor/team-stor-engine/engine"
)

func TestDefaultConfig(t *testing.T) {
	cfg := engine.DefaultConfig()

	assert.Equal(t, float64(clock.DefaultFixedHz), cfg.FixedUpdatesPerSecond)
	assert.Equal(t, "data", cfg.DataDir)
	assert.True(t, cfg.ShowIntro)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := engine.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, engine.DefaultConfig(), cfg)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"fixed_updates_per_second: 30\ndata_dir: content\nshow_intro: false\n",
	), 0o644))

	cfg, err := engine.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.FixedUpdatesPerSecond)
	assert.Equal(t, "content", cfg.DataDir)
	assert.False(t, cfg.ShowIntro)
	// Untouched knobs keep their defaults.
	assert.Equal(t, engine.DefaultConfig().WindowWidth, cfg.WindowWidth)
}

func TestLoadConfigRejectsInvalidRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fixed_updates_per_second: -60\n"), 0o644))

	_, err := engine.LoadConfig(path)
	assert.ErrorIs(t, err, clock.ErrInvalidRate)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\t not yaml ["), 0o644))

	_, err := engine.LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("empty data dir", func(t *testing.T) {
		cfg := engine.DefaultConfig()
		cfg.DataDir = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero window", func(t *testing.T) {
		cfg := engine.DefaultConfig()
		cfg.WindowWidth = 0
		assert.Error(t, cfg.Validate())
	})
}
