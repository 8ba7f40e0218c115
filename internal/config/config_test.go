package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, CriticalClearReplace, cfg.Weights.CriticalPolicy)
	assert.Equal(t, 2, cfg.Ensemble.LocalSearchK)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	content := `
weights:
  cap: 50
  critical_policy: accumulate_decay
recency:
  window: 9
ensemble:
  num_seeds: 4
  pool_size: 100
`
	path := filepath.Join(t.TempDir(), "drawrun.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50.0, cfg.Weights.Cap)
	assert.Equal(t, CriticalAccumulateDecay, cfg.Weights.CriticalPolicy)
	assert.Equal(t, 9, cfg.Recency.Window)
	assert.Equal(t, 4, cfg.Ensemble.NumSeeds)
	// Untouched keys keep their defaults.
	assert.Equal(t, Defaults().Scoring.PairMultiplier, cfg.Scoring.PairMultiplier)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad window", "recency:\n  window: 99\n"},
		{"bad policy", "weights:\n  critical_policy: sometimes\n"},
		{"bad pool", "ensemble:\n  pool_size: 0\n"},
		{"bad k", "ensemble:\n  local_search_k: 9\n"},
		{"bad threshold", "ensemble:\n  diversity_threshold: 1.5\n"},
		{"negative cold", "recency:\n  cold_count: -1\n"},
		{"negative hot", "recency:\n  hot_count: -3\n"},
		{"bad decay", "weights:\n  decay_rate: 1.5\n"},
		{"not yaml", "{{{{"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestValidate_NegativeRecencyCounts(t *testing.T) {
	// A negative count must fail validation here, not surface later as a
	// slice bounds panic inside the recency window.
	cfg := Defaults()
	cfg.Recency.ColdCount = -1
	require.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Recency.HotCount = -1
	require.Error(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestSeedList(t *testing.T) {
	cfg := Defaults()
	cfg.Ensemble.NumSeeds = 3
	cfg.Ensemble.BaseSeed = 100
	assert.Equal(t, []int64{100, 101, 102}, cfg.SeedList())

	cfg.Ensemble.Seeds = []int64{7, 11}
	assert.Equal(t, []int64{7, 11}, cfg.SeedList())
}
