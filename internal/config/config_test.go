package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), AppName), nil)
	require.NoError(t, err)
	return m
}

func TestLoadMissingFile(t *testing.T) {
	m := newTestManager(t)

	assert.False(t, m.IsSetup())
	assert.ErrorIs(t, m.Load(), ErrNotFound)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := newTestManager(t)

	cfg := DefaultConfig()
	cfg.Instructions = Instructions{
		UnlockChest:     Coordinates{X: 120, Y: 840},
		CharacterSwitch: Coordinates{X: 300, Y: 700},
	}
	cfg.Remote = &Remote{URL: "https://codes.example/api", MaxRetries: 3, TimeoutMS: 2000}
	cfg.Slow = true
	m.Set(cfg)
	require.NoError(t, m.Save())
	assert.True(t, m.IsSetup())

	loaded, err := NewManager(m.Dir(), nil)
	require.NoError(t, err)
	require.NoError(t, loaded.Load())

	assert.Equal(t, cfg, loaded.Get())
}

func TestLoadAppliesDefaults(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.MkdirAll(m.Dir(), 0755))
	require.NoError(t, os.WriteFile(m.Path(), []byte("instructions:\n  unlock_chest: {x: 10, y: 20}\n"), 0644))

	require.NoError(t, m.Load())
	cfg := m.Get()

	assert.Equal(t, StrategyLocal, cfg.DefaultStrategy)
	assert.Equal(t, Coordinates{X: 10, Y: 20}, cfg.Instructions.UnlockChest)
	assert.Equal(t, "auto", cfg.Input.Backend)
	assert.Equal(t, ProgressBar, cfg.Progress)
	assert.True(t, cfg.Cache.Enabled)
	assert.Nil(t, cfg.Remote)
}

func TestEnvOverrides(t *testing.T) {
	m := newTestManager(t)
	m.Set(DefaultConfig())
	require.NoError(t, m.Save())

	t.Setenv("ICREDEEMER_SLOW", "true")
	t.Setenv("ICREDEEMER_PROGRESS", "log")

	require.NoError(t, m.Load())
	assert.True(t, m.Get().Slow)
	assert.Equal(t, ProgressLog, m.Get().Progress)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"strategy": "default_strategy: sideways\n",
		"backend":  "input: {backend: xdotool}\n",
		"progress": "progress: spinner\n",
		"remote":   "remote: {max_retries: 2}\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			m := newTestManager(t)
			require.NoError(t, os.MkdirAll(m.Dir(), 0755))
			require.NoError(t, os.WriteFile(m.Path(), []byte(content), 0644))

			assert.ErrorIs(t, m.Load(), ErrInvalid)
		})
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.MkdirAll(m.Dir(), 0755))
	require.NoError(t, os.WriteFile(m.Path(), []byte("instructions: [unclosed"), 0644))

	assert.ErrorIs(t, m.Load(), ErrParse)
}

func TestSaveKeepsBackup(t *testing.T) {
	m := newTestManager(t)

	first := DefaultConfig()
	first.Instructions.UnlockChest = Coordinates{X: 1, Y: 1}
	m.Set(first)
	require.NoError(t, m.Save())

	second := DefaultConfig()
	second.Instructions.UnlockChest = Coordinates{X: 2, Y: 2}
	m.Set(second)
	require.NoError(t, m.Save())

	bak, err := os.ReadFile(m.backupPath())
	require.NoError(t, err)
	assert.Contains(t, string(bak), "x: 1")

	cur, err := os.ReadFile(m.Path())
	require.NoError(t, err)
	assert.Contains(t, string(cur), "x: 2")
}

func TestRemove(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Remove(), "removing a missing file is fine")

	m.Set(DefaultConfig())
	require.NoError(t, m.Save())
	require.NoError(t, m.Remove())
	assert.False(t, m.IsSetup())
}

func TestDefaultDirHonoursOverride(t *testing.T) {
	t.Setenv("ICREDEEMER_CONFIG_DIR", "/tmp/somewhere")

	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/somewhere", dir)
}

func TestCoordinatesString(t *testing.T) {
	assert.Equal(t, "(X:10, Y:-4)", Coordinates{X: 10, Y: -4}.String())
}
