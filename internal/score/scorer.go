// Package score evaluates candidate events against the learned weights and
// the recency window. Score is a pure function: the same inputs always
// produce the same value, and summation order never changes the result.
package score

import (
	"math"
	"math/bits"

	"github.com/sawpanic/drawrun/internal/config"
	"github.com/sawpanic/drawrun/internal/domain"
	"github.com/sawpanic/drawrun/internal/recency"
	"github.com/sawpanic/drawrun/internal/weights"
)

// rangeWidth splits the domain into five equal bands for the soft
// distribution penalty.
const rangeWidth = domain.DomainSize / 5

// Scorer computes the additive composite score.
type Scorer struct {
	cfg config.ScoringConfig
}

// New creates a scorer with the given multipliers.
func New(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score sums per-number weights, pair and triplet affinities, hot/cold and
// critical boosts, minus the soft range-imbalance penalty. Every term is
// additive, so partial evaluation and summation order do not change the
// result beyond float tolerance.
func (s *Scorer) Score(ev domain.Event, store *weights.Store, win *recency.Window) float64 {
	var total float64

	for _, n := range ev {
		total += store.Number(n)
	}

	var pairs float64
	for i := 0; i < len(ev); i++ {
		for j := i + 1; j < len(ev); j++ {
			pairs += store.Pair(ev[i], ev[j])
		}
	}
	total += pairs * s.cfg.PairMultiplier

	if s.cfg.TripleMultiplier != 0 {
		var triples float64
		for i := 0; i < len(ev); i++ {
			for j := i + 1; j < len(ev); j++ {
				for k := j + 1; k < len(ev); k++ {
					triples += store.Triple(ev[i], ev[j], ev[k])
				}
			}
		}
		total += triples * s.cfg.TripleMultiplier
	}

	mask := ev.Mask()
	total += float64(bits.OnesCount32(mask&win.HotMask())) * s.cfg.HotBoost
	total += float64(bits.OnesCount32(mask&win.ColdMask())) * s.cfg.ColdBoost

	for _, n := range ev {
		total += store.CriticalWeight(n) * s.cfg.CriticalBoost
	}

	total -= s.imbalancePenalty(ev)

	return total
}

// imbalancePenalty softly discourages candidates that pile into one band of
// the domain. It is bounded and never excludes a candidate: hard
// distribution filters measurably hurt quality, so only this soft form is
// allowed.
func (s *Scorer) imbalancePenalty(ev domain.Event) float64 {
	if s.cfg.ImbalancePenalty == 0 {
		return 0
	}

	var counts [5]int
	for _, n := range ev {
		band := (n - 1) / rangeWidth
		if band > 4 {
			band = 4
		}
		counts[band]++
	}

	expected := float64(domain.EventSize) / 5.0
	var deviation float64
	for _, c := range counts {
		deviation += math.Abs(float64(c) - expected)
	}

	return deviation * s.cfg.ImbalancePenalty
}
