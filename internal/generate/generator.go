// Package generate produces candidate events by weighted sampling without
// replacement. It is the only component in the engine that consumes
// randomness; everything downstream of a generated pool is deterministic.
package generate

import (
	"math/rand"

	"github.com/sawpanic/drawrun/internal/config"
	"github.com/sawpanic/drawrun/internal/domain"
	"github.com/sawpanic/drawrun/internal/recency"
	"github.com/sawpanic/drawrun/internal/weights"
)

// Generator draws events biased by the learned weights and the recency
// window. One generator belongs to one ensemble seed; its rng stream is
// private, so a fixed seed over a frozen store reproduces the pool exactly.
type Generator struct {
	cfg config.ScoringConfig
	rng *rand.Rand
}

// New creates a seeded generator.
func New(cfg config.ScoringConfig, seed int64) *Generator {
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Generate draws poolSize events. Duplicates inside the pool are allowed;
// scoring treats each draw independently.
func (g *Generator) Generate(store *weights.Store, win *recency.Window, poolSize int) []domain.Event {
	pool := make([]domain.Event, 0, poolSize)
	for i := 0; i < poolSize; i++ {
		pool = append(pool, g.drawOne(store, win))
	}
	return pool
}

// drawOne samples EventSize distinct numbers, each draw proportional to the
// composite weight of the remaining numbers.
func (g *Generator) drawOne(store *weights.Store, win *recency.Window) domain.Event {
	cum := make([]float64, domain.DomainSize+1)
	taken := make([]bool, domain.DomainSize+1)

	picked := make([]int, 0, domain.EventSize)
	for len(picked) < domain.EventSize {
		var total float64
		for n := 1; n <= domain.DomainSize; n++ {
			if !taken[n] {
				total += g.compositeWeight(n, store, win)
			}
			cum[n] = total
		}

		target := g.rng.Float64() * total
		choice := 0
		for n := 1; n <= domain.DomainSize; n++ {
			if taken[n] {
				continue
			}
			if cum[n] > target {
				choice = n
				break
			}
		}
		if choice == 0 {
			// Float edge at the top of the cumulative range: take the last
			// free number.
			for n := domain.DomainSize; n >= 1; n-- {
				if !taken[n] {
					choice = n
					break
				}
			}
		}

		taken[choice] = true
		picked = append(picked, choice)
	}

	ev, _ := domain.NewEvent(picked)
	return ev
}

// compositeWeight blends the learned base weight with multiplicative
// hot/cold/critical boosts. The +1 smoothing keeps every number drawable,
// which doubles as the uniform fallback when no history has been learned.
func (g *Generator) compositeWeight(n int, store *weights.Store, win *recency.Window) float64 {
	w := store.Number(n) + 1.0
	// A window over zero series carries no signal; with an empty store the
	// draw then degrades to uniform sampling.
	if win.SeriesCounted > 0 {
		if win.IsHot(n) {
			w *= g.cfg.GeneratorHotBoost
		}
		if win.IsCold(n) {
			w *= g.cfg.GeneratorColdBoost
		}
	}
	if store.IsCritical(n) {
		w *= g.cfg.GeneratorCriticalBoost
	}
	return w
}
