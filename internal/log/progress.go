// Package log provides console progress feedback for long ensemble runs.
package log

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// ProgressIndicator provides visual feedback while seeds train and search.
type ProgressIndicator struct {
	mu        sync.Mutex
	name      string
	total     int
	current   int
	startTime time.Time
	plain     bool // no carriage-return redraws (non-TTY output)
	done      bool
}

// NewProgressIndicator tracks total steps under the given label. Set plain
// for log-file friendly output without terminal control characters.
func NewProgressIndicator(name string, total int, plain bool) *ProgressIndicator {
	return &ProgressIndicator{
		name:      name,
		total:     total,
		startTime: time.Now(),
		plain:     plain,
	}
}

// Increment advances progress by one step.
func (pi *ProgressIndicator) Increment() {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	pi.current++
	pi.print()
}

// Update sets the current progress value.
func (pi *ProgressIndicator) Update(current int) {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	pi.current = current
	pi.print()
}

// Finish completes the indicator.
func (pi *ProgressIndicator) Finish() {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	if pi.done {
		return
	}
	pi.done = true

	duration := time.Since(pi.startTime).Round(time.Millisecond)
	if pi.plain {
		fmt.Printf("%s completed (%d items, %v)\n", pi.name, pi.total, duration)
		return
	}
	fmt.Printf("\r%s completed (%d items, %v)\n", pi.name, pi.total, duration)
}

// Fail marks the run as failed.
func (pi *ProgressIndicator) Fail(reason string) {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	if pi.done {
		return
	}
	pi.done = true

	duration := time.Since(pi.startTime).Round(time.Millisecond)
	if pi.plain {
		fmt.Printf("%s failed: %s (%v)\n", pi.name, reason, duration)
		return
	}
	fmt.Printf("\r%s failed: %s (%v)\n", pi.name, reason, duration)
}

func (pi *ProgressIndicator) print() {
	if pi.total <= 0 {
		return
	}

	pct := float64(pi.current) / float64(pi.total) * 100
	if pi.plain {
		fmt.Printf("%s: %d/%d (%.0f%%)\n", pi.name, pi.current, pi.total, pct)
		return
	}

	const width = 30
	filled := int(float64(width) * float64(pi.current) / float64(pi.total))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("=", filled) + strings.Repeat("-", width-filled)

	eta := ""
	if pi.current > 0 && pi.current < pi.total {
		perStep := time.Since(pi.startTime) / time.Duration(pi.current)
		eta = fmt.Sprintf(" eta %v", (perStep * time.Duration(pi.total-pi.current)).Round(time.Second))
	}

	fmt.Printf("\r%s [%s] %d/%d (%.0f%%)%s", pi.name, bar, pi.current, pi.total, pct, eta)
}
