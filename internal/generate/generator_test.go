package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/drawrun/internal/config"
	"github.com/sawpanic/drawrun/internal/domain"
	"github.com/sawpanic/drawrun/internal/recency"
	"github.com/sawpanic/drawrun/internal/weights"
)

func emptyWindow() *recency.Window {
	w := recency.Compute(nil, config.Defaults().Recency)
	return &w
}

func TestGenerate_ValidEvents(t *testing.T) {
	gen := New(config.Defaults().Scoring, 42)
	store := weights.NewStore(config.Defaults().Weights)

	pool := gen.Generate(store, emptyWindow(), 200)
	require.Len(t, pool, 200)

	for _, ev := range pool {
		require.Len(t, ev, domain.EventSize)
		seen := map[int]bool{}
		for _, n := range ev {
			assert.GreaterOrEqual(t, n, 1)
			assert.LessOrEqual(t, n, domain.DomainSize)
			assert.False(t, seen[n], "duplicate number %d in %v", n, ev)
			seen[n] = true
		}
	}
}

func TestGenerate_DeterministicPerSeed(t *testing.T) {
	store := weights.NewStore(config.Defaults().Weights)
	ev, err := domain.NewEvent([]int{1, 2, 4, 5, 6, 7, 8, 9, 11, 12, 16, 17, 18, 21})
	require.NoError(t, err)
	store.UpdateSingles(ev, 20.0)
	win := emptyWindow()

	a := New(config.Defaults().Scoring, 99).Generate(store.Snapshot(), win, 50)
	b := New(config.Defaults().Scoring, 99).Generate(store.Snapshot(), win, 50)
	require.Len(t, b, len(a))
	for i := range a {
		assert.True(t, domain.Equal(a[i], b[i]), "pool diverged at index %d", i)
	}

	c := New(config.Defaults().Scoring, 100).Generate(store.Snapshot(), win, 50)
	diverged := false
	for i := range a {
		if !domain.Equal(a[i], c[i]) {
			diverged = true
			break
		}
	}
	assert.True(t, diverged, "different seeds should not produce identical pools")
}

func TestGenerate_BiasFollowsWeights(t *testing.T) {
	store := weights.NewStore(config.Defaults().Weights)
	heavy, err := domain.NewEvent([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14})
	require.NoError(t, err)
	store.UpdateSingles(heavy, 100.0)

	gen := New(config.Defaults().Scoring, 7)
	pool := gen.Generate(store, emptyWindow(), 300)

	var heavyHits, lightHits int
	for _, ev := range pool {
		for _, n := range ev {
			if n <= 14 {
				heavyHits++
			} else {
				lightHits++
			}
		}
	}
	assert.Greater(t, heavyHits, lightHits*3,
		"numbers at the weight cap should dominate draws")
}

func TestGenerate_UniformFallbackOnEmptyHistory(t *testing.T) {
	gen := New(config.Defaults().Scoring, 11)
	store := weights.NewStore(config.Defaults().Weights)

	pool := gen.Generate(store, emptyWindow(), 500)

	counts := map[int]int{}
	for _, ev := range pool {
		for _, n := range ev {
			counts[n]++
		}
	}
	// Every number should appear; expected count per number is
	// 500*14/25 = 280. A wide tolerance still catches structural bias.
	for n := 1; n <= domain.DomainSize; n++ {
		assert.Greater(t, counts[n], 180, "number %d undersampled", n)
		assert.Less(t, counts[n], 380, "number %d oversampled", n)
	}
}
