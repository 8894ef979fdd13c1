package rangeconfig

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/internal/marker"
)

const sample = `
defaults:
  beta: {min: 0, max: 1.5}
  sharpe_ratio: {min: -.inf, max: .inf}
presets:
  conservative:
    sharpe_ratio: {min: 1}
    max_losing_streak: {max: 5}
  loose:
    win_rate: {}
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	defaults := cfg.DefaultRanges()
	assert.Equal(t, marker.Range{Min: 0, Max: 1.5}, defaults[contracts.MetricBeta])
	assert.True(t, math.IsInf(defaults[contracts.MetricSharpeRatio].Min, -1))
	// untouched metrics keep the built-in bands
	assert.Equal(t, marker.Range{Min: 0, Max: 1}, defaults[contracts.MetricWinRate])

	preset, ok := cfg.Preset("conservative")
	require.True(t, ok)
	assert.Len(t, preset, 2)
	assert.Equal(t, 1.0, preset[contracts.MetricSharpeRatio].Min)
	assert.True(t, math.IsInf(preset[contracts.MetricSharpeRatio].Max, 1))
	assert.Equal(t, 5.0, preset[contracts.MetricMaxLosingStreak].Max)

	loose, ok := cfg.Preset("loose")
	require.True(t, ok)
	assert.Equal(t, marker.Unbounded(), loose[contracts.MetricWinRate])

	_, ok = cfg.Preset("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"conservative", "loose"}, cfg.PresetNames())
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown field":  "defaults: {}\nextra: 1\n",
		"unknown metric": "defaults:\n  alpha: {min: 0}\n",
		"unknown bound":  "defaults:\n  beta: {low: 0}\n",
		"nan":            "defaults:\n  beta: {min: .nan}\n",
		"bad preset":     "presets:\n  Bad Name:\n    beta: {max: 1}\n",
		"empty preset":   "presets:\n  empty: {}\n",
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestNilConfigFallsBackToBuiltIns(t *testing.T) {
	var cfg *Config

	assert.Equal(t, marker.DefaultRanges(), cfg.DefaultRanges())
	assert.Empty(t, cfg.PresetNames())
	_, ok := cfg.Preset("any")
	assert.False(t, ok)
}

func TestLoadAndHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranges.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	h1, err := Hash(cfg)
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	again, err := Load(path)
	require.NoError(t, err)
	h2, err := Hash(again)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
