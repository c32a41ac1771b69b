package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	f := Default()

	assert.Equal(t, "affect.db", f.DBPath)
	assert.Equal(t, ".affect_key", f.KeyPath)
	assert.False(t, f.Debug)
	assert.Equal(t, 100, f.Engine.TickIntervalMs)
	assert.Equal(t, uint64(100), f.Engine.PersistEvery)
	assert.Equal(t, 300, f.Engine.LongingOnsetSec)
	assert.Equal(t, 3600, f.Engine.LongingWindowSec)
	assert.Equal(t, 0.85, f.Thresholds.ZeroNoiseCoherence)
	assert.Equal(t, 0.75, f.Thresholds.ZeroNoiseIntensity)
	assert.Equal(t, 2.0, f.Gate.MaxDeltaAbs)
	assert.Equal(t, 64, f.Log.RecentCapacity)
	assert.Equal(t, uint64(50), f.Orchestrator.LogEvery)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), f)
}

func TestLoadOverridesOverDefaults(t *testing.T) {
	doc := `
db_path: /var/lib/affect/state.db
debug: true
engine:
  tick_interval_ms: 250
  longing_onset_sec: 60
thresholds:
  zero_noise_coherence: 0.9
noise:
  seed: 7
orchestrator:
  log_every: 20
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	f, err := Load(path)
	require.NoError(t, err)

	// Overridden keys.
	assert.Equal(t, "/var/lib/affect/state.db", f.DBPath)
	assert.True(t, f.Debug)
	assert.Equal(t, 250, f.Engine.TickIntervalMs)
	assert.Equal(t, 60, f.Engine.LongingOnsetSec)
	assert.Equal(t, 0.9, f.Thresholds.ZeroNoiseCoherence)
	assert.Equal(t, int64(7), f.Noise.Seed)
	assert.Equal(t, uint64(20), f.Orchestrator.LogEvery)

	// Untouched keys keep their defaults.
	assert.Equal(t, ".affect_key", f.KeyPath)
	assert.Equal(t, 0.75, f.Thresholds.ZeroNoiseIntensity)
	assert.Equal(t, 3600, f.Engine.LongingWindowSec)
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEngineConfigConversion(t *testing.T) {
	f := Default()
	f.Engine.TickIntervalMs = 250
	f.Engine.LongingOnsetSec = 120

	ec := f.EngineConfig()
	assert.Equal(t, 250*time.Millisecond, ec.TickInterval)
	assert.Equal(t, time.Second, ec.ReferenceDt)
	assert.Equal(t, 2*time.Minute, ec.LongingOnset)
	assert.Equal(t, f.Thresholds, ec.Thresholds)
	assert.Equal(t, f.Gate, ec.Gate)
}
