// Package recency derives hot and cold number sets from the tail of the
// training stream. It reads the stream, owns nothing, and feeds the
// generator and scorer signals that are independent of the learned weights.
package recency

import (
	"sort"

	"github.com/sawpanic/drawrun/internal/config"
	"github.com/sawpanic/drawrun/internal/domain"
)

// Window is the derived hot/cold view over the most recent series.
type Window struct {
	Cold []int // least frequent, ascending by number
	Hot  []int // most frequent, ascending by number

	SeriesCounted int
	counts        [domain.DomainSize + 1]int
	coldMask      uint32
	hotMask       uint32
}

// Compute builds the window from the last cfg.Window series of the stream.
// With a shorter stream it degrades to whatever is available; an empty
// stream yields frequency zero for every number, so the cold/hot split is
// decided purely by the ascending-number tie-break and stays deterministic.
func Compute(stream []domain.Series, cfg config.RecencyConfig) Window {
	w := Window{}

	start := len(stream) - cfg.Window
	if start < 0 {
		start = 0
	}
	tail := stream[start:]
	w.SeriesCounted = len(tail)

	for _, series := range tail {
		for _, ev := range series.Events {
			for _, n := range ev {
				w.counts[n]++
			}
		}
	}

	order := make([]int, domain.DomainSize)
	for i := range order {
		order[i] = i + 1
	}
	// Ascending frequency, ties broken by number ascending for
	// reproducibility across runs.
	sort.SliceStable(order, func(i, j int) bool {
		if w.counts[order[i]] != w.counts[order[j]] {
			return w.counts[order[i]] < w.counts[order[j]]
		}
		return order[i] < order[j]
	})

	cold := cfg.ColdCount
	if cold > len(order) {
		cold = len(order)
	}
	w.Cold = append([]int(nil), order[:cold]...)
	sort.Ints(w.Cold)

	hot := cfg.HotCount
	if hot > len(order)-cold {
		hot = len(order) - cold
	}
	w.Hot = append([]int(nil), order[len(order)-hot:]...)
	sort.Ints(w.Hot)

	for _, n := range w.Cold {
		w.coldMask |= 1 << uint(n-1)
	}
	for _, n := range w.Hot {
		w.hotMask |= 1 << uint(n-1)
	}

	return w
}

// Count returns n's occurrence count inside the window.
func (w *Window) Count(n int) int {
	if n < 1 || n > domain.DomainSize {
		return 0
	}
	return w.counts[n]
}

// IsCold reports cold-set membership.
func (w *Window) IsCold(n int) bool {
	return w.coldMask&(1<<uint(n-1)) != 0
}

// IsHot reports hot-set membership.
func (w *Window) IsHot(n int) bool {
	return w.hotMask&(1<<uint(n-1)) != 0
}

// ColdMask exposes the cold set as a bitmask for fast intersection counts.
func (w *Window) ColdMask() uint32 { return w.coldMask }

// HotMask exposes the hot set as a bitmask for fast intersection counts.
func (w *Window) HotMask() uint32 { return w.hotMask }
