// Package refine implements bounded k-swap local search around a base
// candidate. The neighborhood is enumerated exhaustively and evaluated with
// a caller-supplied function, so the same machinery serves both
// score-driven refinement and exact-match validation against known history.
// Refinement never touches the weight store.
package refine

import (
	"math/bits"
	"sync"

	"github.com/sawpanic/drawrun/internal/domain"
)

// EvalFunc scores one candidate variant. It must be pure: variants are
// evaluated concurrently.
type EvalFunc func(domain.Event) float64

// ExactMatchEval returns an evaluator counting overlap with a revealed
// event, used when validating against known history.
func ExactMatchEval(target domain.Event) EvalFunc {
	mask := target.Mask()
	return func(ev domain.Event) float64 {
		return float64(bits.OnesCount32(ev.Mask() & mask))
	}
}

// Result is the outcome of one neighborhood sweep.
type Result struct {
	Best     domain.Event
	Score    float64
	Variants int // distinct k-swap variants enumerated, excluding the base
}

// Refine enumerates every way to drop k numbers from base and add k from
// the complement (C(K,k) x C(D-K,k) variants), evaluates each, and returns
// the best event found. The base itself is kept when no variant beats it,
// so the returned score never regresses. Ties resolve to the earliest
// variant in enumeration order, keeping the search deterministic.
func Refine(base domain.Event, k int, evaluate EvalFunc) Result {
	return refine(base, k, evaluate, 1)
}

// RefineParallel is Refine with the removal combinations fanned out over
// workers. Evaluation is pure, so this changes wall time, not the result.
func RefineParallel(base domain.Event, k int, workers int, evaluate EvalFunc) Result {
	if workers < 1 {
		workers = 1
	}
	return refine(base, k, evaluate, workers)
}

type variantBest struct {
	score float64
	mask  uint32
	ord   int64 // enumeration order, for deterministic tie-breaks
	valid bool
}

func (b *variantBest) consider(score float64, mask uint32, ord int64) {
	if !b.valid || score > b.score || (score == b.score && ord < b.ord) {
		b.score = score
		b.mask = mask
		b.ord = ord
		b.valid = true
	}
}

func refine(base domain.Event, k int, evaluate EvalFunc, workers int) Result {
	baseScore := evaluate(base)
	if k <= 0 {
		return Result{Best: base, Score: baseScore}
	}

	complement := make([]int, 0, domain.DomainSize-domain.EventSize)
	baseMask := base.Mask()
	for n := 1; n <= domain.DomainSize; n++ {
		if baseMask&(1<<uint(n-1)) == 0 {
			complement = append(complement, n)
		}
	}

	removals := combinations(len(base), k)
	additions := combinations(len(complement), k)
	total := len(removals) * len(additions)

	if workers > len(removals) {
		workers = len(removals)
	}

	bests := make([]variantBest, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			local := &bests[w]
			for ri := w; ri < len(removals); ri += workers {
				var removeMask uint32
				for _, idx := range removals[ri] {
					removeMask |= 1 << uint(base[idx]-1)
				}
				stripped := baseMask &^ removeMask

				for ai, add := range additions {
					variantMask := stripped
					for _, idx := range add {
						variantMask |= 1 << uint(complement[idx]-1)
					}
					ev := domain.FromMask(variantMask)
					ord := int64(ri)*int64(len(additions)) + int64(ai)
					local.consider(evaluate(ev), variantMask, ord)
				}
			}
		}(w)
	}
	wg.Wait()

	best := variantBest{}
	for i := range bests {
		if bests[i].valid {
			best.consider(bests[i].score, bests[i].mask, bests[i].ord)
		}
	}

	res := Result{Best: base, Score: baseScore, Variants: total}
	if best.valid && best.score > baseScore {
		res.Best = domain.FromMask(best.mask)
		res.Score = best.score
	}
	return res
}

// combinations enumerates all k-subsets of [0,n) in lexicographic order.
func combinations(n, k int) [][]int {
	if k > n || k <= 0 {
		return nil
	}
	var out [][]int
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		out = append(out, append([]int(nil), idx...))

		// Advance to the next lexicographic combination.
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
