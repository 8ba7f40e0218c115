// Package weights holds the learned weight model for one ensemble seed.
//
// A Store is exclusively owned: exactly one learner mutates it, strictly in
// series order, and scoring only ever sees a snapshot taken after replay
// completes. There is no cross-seed sharing, so the package needs no locks.
package weights

import (
	"sort"

	"github.com/sawpanic/drawrun/internal/config"
	"github.com/sawpanic/drawrun/internal/domain"
)

// PairKey is an unordered number pair, stored low-high.
type PairKey [2]int

// TripleKey is an unordered number triple, stored ascending.
type TripleKey [3]int

// NewPairKey normalizes an unordered pair.
func NewPairKey(a, b int) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{a, b}
}

// NewTripleKey normalizes an unordered triple.
func NewTripleKey(a, b, c int) TripleKey {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return TripleKey{a, b, c}
}

// Store accumulates per-number, pair and triplet weights plus the bounded
// critical-number set.
type Store struct {
	number   [domain.DomainSize + 1]float64
	pairs    map[PairKey]float64
	triples  map[TripleKey]float64
	critical map[int]float64

	cfg config.WeightsConfig
}

// NewStore creates an empty store bounded by cfg.
func NewStore(cfg config.WeightsConfig) *Store {
	return &Store{
		pairs:    make(map[PairKey]float64),
		triples:  make(map[TripleKey]float64),
		critical: make(map[int]float64),
		cfg:      cfg,
	}
}

// Number returns the learned weight of n, zero for unseen numbers.
func (s *Store) Number(n int) float64 {
	if n < 1 || n > domain.DomainSize {
		return 0
	}
	return s.number[n]
}

// Pair returns the accumulated co-occurrence weight for {a,b}.
func (s *Store) Pair(a, b int) float64 {
	return s.pairs[NewPairKey(a, b)]
}

// Triple returns the accumulated co-occurrence weight for {a,b,c}.
func (s *Store) Triple(a, b, c int) float64 {
	return s.triples[NewTripleKey(a, b, c)]
}

// IsCritical reports whether n sits in the current critical set.
func (s *Store) IsCritical(n int) bool {
	return s.critical[n] > 0
}

// CriticalWeight returns n's critical intensity (1.0 right after a boost,
// decaying under the accumulate policy).
func (s *Store) CriticalWeight(n int) float64 {
	return s.critical[n]
}

// CriticalNumbers returns the critical set sorted ascending.
func (s *Store) CriticalNumbers() []int {
	out := make([]int, 0, len(s.critical))
	for n := range s.critical {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// UpdateSingles raises each revealed number's weight by boost, clamped
// to [0, cap].
func (s *Store) UpdateSingles(seen []int, boost float64) {
	for _, n := range seen {
		w := s.number[n] + boost
		if w > s.cfg.Cap {
			w = s.cfg.Cap
		}
		if w < 0 {
			w = 0
		}
		s.number[n] = w
	}
}

// UpdatePairs accumulates the pair increment for every unordered pair in ev.
func (s *Store) UpdatePairs(ev domain.Event) {
	for i := 0; i < len(ev); i++ {
		for j := i + 1; j < len(ev); j++ {
			s.pairs[NewPairKey(ev[i], ev[j])] += s.cfg.PairIncrement
		}
	}
}

// UpdateTriples accumulates the triplet increment for every unordered triple
// in ev, then prunes the table if it outgrew the configured bound.
func (s *Store) UpdateTriples(ev domain.Event) {
	for i := 0; i < len(ev); i++ {
		for j := i + 1; j < len(ev); j++ {
			for k := j + 1; k < len(ev); k++ {
				s.triples[NewTripleKey(ev[i], ev[j], ev[k])] += s.cfg.TripleIncrement
			}
		}
	}
	s.pruneTriples()
}

// pruneTriples keeps only the MaxTriples heaviest entries. Ties resolve by
// key order so pruning stays deterministic.
func (s *Store) pruneTriples() {
	max := s.cfg.MaxTriples
	if max <= 0 || len(s.triples) <= max {
		return
	}

	type entry struct {
		key TripleKey
		w   float64
	}
	entries := make([]entry, 0, len(s.triples))
	for k, w := range s.triples {
		entries = append(entries, entry{k, w})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].w != entries[j].w {
			return entries[i].w > entries[j].w
		}
		a, b := entries[i].key, entries[j].key
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})

	kept := make(map[TripleKey]float64, max)
	for _, e := range entries[:max] {
		kept[e.key] = e.w
	}
	s.triples = kept
}

// BoostCritical installs the newest mismatch numbers as critical and pins
// their per-number weight to the cap: they were just proven important.
// Under ClearReplace the previous set is dropped first; under
// AccumulateDecay prior entries survive with decayed intensity.
func (s *Store) BoostCritical(criticalSet []int) {
	switch s.cfg.CriticalPolicy {
	case config.CriticalAccumulateDecay:
		for n, w := range s.critical {
			decayed := w * s.cfg.CriticalDecay
			if decayed < 1e-3 {
				delete(s.critical, n)
				continue
			}
			s.critical[n] = decayed
		}
	default: // clear_replace
		for n := range s.critical {
			delete(s.critical, n)
		}
	}

	for _, n := range criticalSet {
		s.critical[n] = 1.0
		s.number[n] = s.cfg.Cap
	}
}

// Decay multiplies every learned weight by rate, pulling stale eras back
// toward zero.
func (s *Store) Decay(rate float64) {
	if rate <= 0 || rate >= 1 {
		return
	}
	for n := 1; n <= domain.DomainSize; n++ {
		s.number[n] *= rate
	}
	for k := range s.pairs {
		s.pairs[k] *= rate
	}
	for k := range s.triples {
		s.triples[k] *= rate
	}
}

// Normalize rescales every learned weight so the maximum per-number weight
// equals cap. Pairs and triplets scale by the same factor, keeping their
// magnitude relative to the number weights. Critical intensities live in
// [0,1] and are not rescaled. No-op on an empty store.
func (s *Store) Normalize(cap float64) {
	var max float64
	for n := 1; n <= domain.DomainSize; n++ {
		if s.number[n] > max {
			max = s.number[n]
		}
	}
	if max <= 0 {
		return
	}
	scale := cap / max
	for n := 1; n <= domain.DomainSize; n++ {
		s.number[n] *= scale
	}
	for k := range s.pairs {
		s.pairs[k] *= scale
	}
	for k := range s.triples {
		s.triples[k] *= scale
	}
}

// Snapshot deep-copies the store. Scoring and generation work on snapshots
// so a frozen view can be read from many goroutines.
func (s *Store) Snapshot() *Store {
	cp := &Store{
		number:   s.number,
		pairs:    make(map[PairKey]float64, len(s.pairs)),
		triples:  make(map[TripleKey]float64, len(s.triples)),
		critical: make(map[int]float64, len(s.critical)),
		cfg:      s.cfg,
	}
	for k, w := range s.pairs {
		cp.pairs[k] = w
	}
	for k, w := range s.triples {
		cp.triples[k] = w
	}
	for n, w := range s.critical {
		cp.critical[n] = w
	}
	return cp
}

// Export flattens the store for JSON persistence.
func (s *Store) Export() ExportedWeights {
	out := ExportedWeights{
		Numbers:  make(map[int]float64),
		Critical: s.CriticalNumbers(),
	}
	for n := 1; n <= domain.DomainSize; n++ {
		if s.number[n] != 0 {
			out.Numbers[n] = s.number[n]
		}
	}
	for k, w := range s.pairs {
		out.Pairs = append(out.Pairs, ExportedPair{A: k[0], B: k[1], Weight: w})
	}
	for k, w := range s.triples {
		out.Triples = append(out.Triples, ExportedTriple{A: k[0], B: k[1], C: k[2], Weight: w})
	}
	sort.Slice(out.Pairs, func(i, j int) bool {
		if out.Pairs[i].A != out.Pairs[j].A {
			return out.Pairs[i].A < out.Pairs[j].A
		}
		return out.Pairs[i].B < out.Pairs[j].B
	})
	sort.Slice(out.Triples, func(i, j int) bool {
		a, b := out.Triples[i], out.Triples[j]
		if a.A != b.A {
			return a.A < b.A
		}
		if a.B != b.B {
			return a.B < b.B
		}
		return a.C < b.C
	})
	return out
}

// ExportedWeights is the serialization form of a Store.
type ExportedWeights struct {
	Numbers  map[int]float64  `json:"numbers"`
	Pairs    []ExportedPair   `json:"pairs,omitempty"`
	Triples  []ExportedTriple `json:"triples,omitempty"`
	Critical []int            `json:"critical,omitempty"`
}

// ExportedPair is one serialized pair weight.
type ExportedPair struct {
	A      int     `json:"a"`
	B      int     `json:"b"`
	Weight float64 `json:"w"`
}

// ExportedTriple is one serialized triplet weight.
type ExportedTriple struct {
	A      int     `json:"a"`
	B      int     `json:"b"`
	C      int     `json:"c"`
	Weight float64 `json:"w"`
}
