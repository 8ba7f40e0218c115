// Package learn applies the online learning step. A Learner is the sole
// mutator of its weight store and must observe series strictly in id order;
// the critical-number semantics depend on "most recent" actually being most
// recent.
package learn

import (
	"sort"

	"github.com/sawpanic/drawrun/internal/config"
	"github.com/sawpanic/drawrun/internal/domain"
	"github.com/sawpanic/drawrun/internal/weights"
)

// Learner drives weight updates from revealed series.
type Learner struct {
	cfg   config.WeightsConfig
	store *weights.Store
	steps int
}

// New wraps store with a learner. The store must not be mutated by anyone
// else for the learner's lifetime.
func New(cfg config.WeightsConfig, store *weights.Store) *Learner {
	return &Learner{cfg: cfg, store: store}
}

// Store exposes the owned store for snapshotting after replay.
func (l *Learner) Store() *weights.Store {
	return l.store
}

// Steps returns how many series have been observed.
func (l *Learner) Steps() int {
	return l.steps
}

// Observe ingests one revealed series. Frequency structure (singles, pairs,
// triplets) accumulates from every event in the series; the critical set is
// the symmetric difference between the prediction made before the reveal
// and the series' freshest event. Returns the critical set ascending.
func (l *Learner) Observe(predicted domain.Event, actual domain.Series) []int {
	for _, ev := range actual.Events {
		l.store.UpdateSingles(ev, l.cfg.SingleBoost)
		l.store.UpdatePairs(ev)
		l.store.UpdateTriples(ev)
	}

	critical := CriticalSet(predicted, actual.Last())
	l.store.BoostCritical(critical)

	l.steps++
	if l.cfg.DecayRate > 0 && l.cfg.DecayCadence > 0 && l.steps%l.cfg.DecayCadence == 0 {
		l.store.Decay(l.cfg.DecayRate)
		l.store.Normalize(l.cfg.Cap)
	}

	return critical
}

// CriticalSet unions the numbers the prediction missed with the ones it
// wrongly included.
func CriticalSet(predicted, actual domain.Event) []int {
	var out []int
	for _, n := range actual {
		if !predicted.Contains(n) {
			out = append(out, n) // missed
		}
	}
	for _, n := range predicted {
		if !actual.Contains(n) {
			out = append(out, n) // wrongly included
		}
	}
	sort.Ints(out)
	return out
}
