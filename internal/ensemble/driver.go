// Package ensemble orchestrates independent per-seed training and search
// runs and merges their best candidates into one diversity-filtered
// ranking. Seeds share no mutable state: each owns its weight store, rng
// stream and replay, which is what lets them run task-parallel without
// locks.
package ensemble

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/drawrun/internal/config"
	"github.com/sawpanic/drawrun/internal/domain"
	"github.com/sawpanic/drawrun/internal/generate"
	"github.com/sawpanic/drawrun/internal/learn"
	"github.com/sawpanic/drawrun/internal/recency"
	"github.com/sawpanic/drawrun/internal/refine"
	"github.com/sawpanic/drawrun/internal/score"
	"github.com/sawpanic/drawrun/internal/weights"
)

// ErrEmptyResult means no candidate survived generation and refinement.
// It signals a configuration problem, not a transient condition.
var ErrEmptyResult = errors.New("no candidates produced")

// ErrAllSeedsFailed means every seed of the run failed; individual seed
// failures are otherwise isolated.
var ErrAllSeedsFailed = errors.New("all ensemble seeds failed")

// Candidate is a generated event with provenance.
type Candidate struct {
	Event      domain.Event `json:"event"`
	Score      float64      `json:"score"`
	Seed       int64        `json:"seed"`
	Generation int          `json:"generation"` // index within the seed's pool
	Refined    bool         `json:"refined"`    // improved by local search
}

// SeedResult is one seed's complete outcome, success or failure. Weights
// holds the trained store in exported form so callers can persist what the
// seed learned.
type SeedResult struct {
	Seed          int64                   `json:"seed"`
	Best          Candidate               `json:"best"`
	TrainingSteps int                     `json:"training_steps"`
	Variants      int                     `json:"variants"`
	Weights       weights.ExportedWeights `json:"-"`
	Elapsed       time.Duration           `json:"elapsed"`
	Err           error                   `json:"-"`
}

// Result is the merged, diversity-filtered run outcome.
type Result struct {
	RunID       uuid.UUID     `json:"run_id"`
	Ranked      []Candidate   `json:"ranked"`
	SeedResults []SeedResult  `json:"seed_results"`
	FailedSeeds int           `json:"failed_seeds"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Recorder receives engine counters. The metrics server implements it;
// tests use a stub; nil disables recording.
type Recorder interface {
	SeedCompleted(outcome string)
	CandidatesGenerated(n int)
	VariantsEvaluated(n int)
}

// Driver runs the full ensemble.
type Driver struct {
	cfg      *config.Config
	recorder Recorder

	// oracle, when set, enables early stop: a refined candidate matching
	// it exactly cancels the remaining seeds.
	oracle domain.Event
}

// New creates a driver. recorder may be nil.
func New(cfg *config.Config, recorder Recorder) *Driver {
	return &Driver{cfg: cfg, recorder: recorder}
}

// SetOracle arms early stop against a known target event (backtesting).
func (d *Driver) SetOracle(target domain.Event) {
	d.oracle = target
}

// Run trains one weight store per seed over the stream, generates and
// refines candidates, and merges per-seed bests into the final ranking.
// A failing seed is logged and excluded; the run only fails when no seed
// survives or nothing was produced.
func (d *Driver) Run(ctx context.Context, stream []domain.Series) (*Result, error) {
	start := time.Now()
	seeds := d.cfg.SeedList()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := d.cfg.Ensemble.Workers
	if workers <= 0 || workers > len(seeds) {
		workers = len(seeds)
	}

	results := make([]SeedResult, len(seeds))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = d.runSeed(runCtx, seeds[idx], stream)
				if results[idx].Err == nil && d.oracle != nil &&
					domain.Equal(results[idx].Best.Event, d.oracle) {
					log.Info().Int64("seed", results[idx].Seed).
						Msg("exact match found, stopping remaining seeds")
					cancel()
				}
			}
		}()
	}

	for i := range seeds {
		select {
		case jobs <- i:
		case <-runCtx.Done():
			// Mark undispatched seeds as abandoned.
			results[i] = SeedResult{Seed: seeds[i], Err: runCtx.Err()}
		}
	}
	close(jobs)
	wg.Wait()

	res := &Result{RunID: uuid.New(), SeedResults: results}

	var pool []Candidate
	for _, sr := range results {
		if sr.Err != nil {
			res.FailedSeeds++
			if !errors.Is(sr.Err, context.Canceled) {
				log.Warn().Int64("seed", sr.Seed).Err(sr.Err).Msg("seed failed, excluded from aggregation")
			}
			if d.recorder != nil {
				d.recorder.SeedCompleted("failed")
			}
			continue
		}
		pool = append(pool, sr.Best)
		if d.recorder != nil {
			d.recorder.SeedCompleted("ok")
		}
	}

	if len(pool) == 0 {
		if res.FailedSeeds == len(seeds) && len(seeds) > 0 {
			return nil, ErrAllSeedsFailed
		}
		return nil, ErrEmptyResult
	}

	res.Ranked = SelectDiverse(pool, d.cfg.Ensemble.TopN, d.cfg.Ensemble.DiversityThreshold)
	res.Elapsed = time.Since(start)

	log.Info().
		Str("run_id", res.RunID.String()).
		Int("seeds", len(seeds)).
		Int("failed", res.FailedSeeds).
		Int("ranked", len(res.Ranked)).
		Dur("elapsed", res.Elapsed).
		Msg("ensemble run complete")

	return res, nil
}

// runSeed replays training, generates a pool, and refines the best draw.
// Panics are converted into a per-seed error so a crashing seed cannot
// take down its siblings.
func (d *Driver) runSeed(ctx context.Context, seed int64, stream []domain.Series) (sr SeedResult) {
	start := time.Now()
	sr.Seed = seed

	defer func() {
		if r := recover(); r != nil {
			sr.Err = fmt.Errorf("seed %d panicked: %v", seed, r)
		}
		sr.Elapsed = time.Since(start)
	}()

	store := weights.NewStore(d.cfg.Weights)
	learner := learn.New(d.cfg.Weights, store)
	gen := generate.New(d.cfg.Scoring, seed)
	scorer := score.New(d.cfg.Scoring)

	// Sequential replay: each step's mutation feeds the next prediction.
	for i, series := range stream {
		if err := ctx.Err(); err != nil {
			sr.Err = err
			return sr
		}

		win := recency.Compute(stream[:i], d.cfg.Recency)
		predicted := bestOf(gen.Generate(store, &win, d.cfg.Ensemble.TrainingPoolSize), scorer, store, &win, seed)
		if predicted.Event == nil {
			sr.Err = fmt.Errorf("training pool empty at series %d", series.ID)
			return sr
		}
		learner.Observe(predicted.Event, series)
	}
	sr.TrainingSteps = learner.Steps()

	// Training is done: freeze the store, then generation and scoring read
	// the snapshot without further coordination.
	snap := store.Snapshot()
	sr.Weights = snap.Export()
	win := recency.Compute(stream, d.cfg.Recency)

	events := gen.Generate(snap, &win, d.cfg.Ensemble.PoolSize)
	if d.recorder != nil {
		d.recorder.CandidatesGenerated(len(events))
	}

	base := bestOf(events, scorer, snap, &win, seed)
	if base.Event == nil {
		sr.Err = ErrEmptyResult
		return sr
	}

	refined := refine.RefineParallel(base.Event, d.cfg.Ensemble.LocalSearchK, d.cfg.Ensemble.Workers,
		func(ev domain.Event) float64 { return scorer.Score(ev, snap, &win) })
	sr.Variants = refined.Variants
	if d.recorder != nil {
		d.recorder.VariantsEvaluated(refined.Variants)
	}

	best := base
	if !domain.Equal(refined.Best, base.Event) {
		best = Candidate{
			Event:      refined.Best,
			Score:      refined.Score,
			Seed:       seed,
			Generation: base.Generation,
			Refined:    true,
		}
	}

	sr.Best = best
	return sr
}

// bestOf scores a pool and keeps the top candidate. Earlier pool index wins
// ties so a seed's outcome is reproducible.
func bestOf(events []domain.Event, scorer *score.Scorer, store *weights.Store, win *recency.Window, seed int64) Candidate {
	best := Candidate{}
	for i, ev := range events {
		s := scorer.Score(ev, store, win)
		if best.Event == nil || s > best.Score {
			best = Candidate{Event: ev, Score: s, Seed: seed, Generation: i}
		}
	}
	return best
}

// SelectDiverse sorts candidates by score descending and greedily keeps up
// to topN of them such that every kept pair differs by at least the given
// Jaccard distance. Exact set duplicates always collapse.
func SelectDiverse(pool []Candidate, topN int, threshold float64) []Candidate {
	sorted := append([]Candidate(nil), pool...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Seed < sorted[j].Seed
	})

	var kept []Candidate
	for _, c := range sorted {
		if len(kept) >= topN {
			break
		}
		tooClose := false
		for _, k := range kept {
			if domain.Equal(c.Event, k.Event) || domain.Jaccard(c.Event, k.Event) < threshold {
				tooClose = true
				break
			}
		}
		if !tooClose {
			kept = append(kept, c)
		}
	}
	return kept
}
