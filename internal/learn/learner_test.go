package learn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/drawrun/internal/config"
	"github.com/sawpanic/drawrun/internal/domain"
	"github.com/sawpanic/drawrun/internal/weights"
)

func mustEvent(t *testing.T, nums []int) domain.Event {
	t.Helper()
	ev, err := domain.NewEvent(nums)
	require.NoError(t, err)
	return ev
}

func mustSeries(t *testing.T, id int, last domain.Event) domain.Series {
	t.Helper()
	filler := mustEvent(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14})
	events := make([]domain.Event, domain.SeriesLength)
	for i := range events {
		events[i] = filler
	}
	events[domain.SeriesLength-1] = last
	s, err := domain.NewSeries(id, events)
	require.NoError(t, err)
	return s
}

func TestCriticalSet(t *testing.T) {
	actual := mustEvent(t, []int{1, 2, 4, 5, 6, 7, 8, 9, 11, 12, 16, 17, 18, 21})
	predicted := mustEvent(t, []int{1, 2, 4, 5, 6, 7, 8, 9, 11, 12, 16, 17, 19, 22})

	got := CriticalSet(predicted, actual)
	assert.Equal(t, []int{18, 19, 21, 22}, got,
		"missed numbers and wrong inclusions both become critical")

	assert.Empty(t, CriticalSet(actual, actual), "perfect prediction has no criticals")
}

func TestObserve_CriticalPinnedToCap(t *testing.T) {
	cfg := config.Defaults().Weights
	store := weights.NewStore(cfg)
	l := New(cfg, store)

	actual := mustEvent(t, []int{1, 2, 4, 5, 6, 7, 8, 9, 11, 12, 16, 17, 18, 21})
	predicted := mustEvent(t, []int{1, 2, 4, 5, 6, 7, 8, 9, 11, 12, 16, 17, 19, 22})

	critical := l.Observe(predicted, mustSeries(t, 1, actual))
	require.Equal(t, []int{18, 19, 21, 22}, critical)

	for _, n := range critical {
		assert.Equal(t, cfg.Cap, store.Number(n),
			"number %d must sit at the cap right after the critical boost", n)
		assert.True(t, store.IsCritical(n))
	}
	assert.Equal(t, 1, l.Steps())
}

func TestObserve_AccumulatesWholeSeries(t *testing.T) {
	cfg := config.Defaults().Weights
	store := weights.NewStore(cfg)
	l := New(cfg, store)

	actual := mustEvent(t, []int{1, 2, 4, 5, 6, 7, 8, 9, 11, 12, 16, 17, 18, 21})
	l.Observe(actual, mustSeries(t, 1, actual))

	// Filler events carried number 1 in all seven draws.
	assert.Greater(t, store.Number(1), 0.0)
	// Pair {1,2} co-occurred in every event of the series.
	assert.Equal(t, float64(domain.SeriesLength)*cfg.PairIncrement, store.Pair(1, 2))
}

func TestObserve_DecayCadence(t *testing.T) {
	cfg := config.Defaults().Weights
	cfg.DecayRate = 0.5
	cfg.DecayCadence = 2
	store := weights.NewStore(cfg)
	l := New(cfg, store)

	actual := mustEvent(t, []int{1, 2, 4, 5, 6, 7, 8, 9, 11, 12, 16, 17, 18, 21})
	perfect := actual

	l.Observe(perfect, mustSeries(t, 1, actual))
	ratio := store.Pair(1, 2) / store.Number(1)
	l.Observe(perfect, mustSeries(t, 2, actual))

	// Step 2 accumulated another series then decayed and renormalized: the
	// number maximum returns to cap and pairs keep their magnitude relative
	// to the numbers.
	assert.InDelta(t, cfg.Cap, store.Number(1), 1e-9)
	assert.InDelta(t, ratio, store.Pair(1, 2)/store.Number(1), 1e-9)
}

func TestObserve_BoundedWeightsAlways(t *testing.T) {
	cfg := config.Defaults().Weights
	store := weights.NewStore(cfg)
	l := New(cfg, store)

	actual := mustEvent(t, []int{1, 2, 4, 5, 6, 7, 8, 9, 11, 12, 16, 17, 18, 21})
	wrong := mustEvent(t, []int{3, 10, 13, 14, 15, 19, 20, 22, 23, 24, 25, 1, 2, 4})

	for i := 1; i <= 30; i++ {
		l.Observe(wrong, mustSeries(t, i, actual))
		for n := 1; n <= domain.DomainSize; n++ {
			w := store.Number(n)
			require.GreaterOrEqual(t, w, 0.0)
			require.LessOrEqual(t, w, cfg.Cap)
		}
	}
}
