package domain

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
)

const (
	// DomainSize is the number of distinct values a draw can pick from.
	DomainSize = 25
	// EventSize is how many distinct numbers one draw reveals.
	EventSize = 14
	// SeriesLength is how many draws make up one series.
	SeriesLength = 7
)

// ErrInvalidEvent is returned for events that violate the size, range or
// distinctness rules. Malformed records are rejected at the ingestion
// boundary and never reach the weight model.
var ErrInvalidEvent = errors.New("invalid event")

// Event is one revealed draw: EventSize distinct numbers in [1, DomainSize],
// kept sorted ascending.
type Event []int

// NewEvent validates and normalizes a raw number list into an Event.
// The input slice is not retained.
func NewEvent(numbers []int) (Event, error) {
	if len(numbers) != EventSize {
		return nil, fmt.Errorf("%w: got %d numbers, want %d", ErrInvalidEvent, len(numbers), EventSize)
	}

	ev := make(Event, EventSize)
	copy(ev, numbers)
	sort.Ints(ev)

	for i, n := range ev {
		if n < 1 || n > DomainSize {
			return nil, fmt.Errorf("%w: number %d out of range [1,%d]", ErrInvalidEvent, n, DomainSize)
		}
		if i > 0 && ev[i-1] == n {
			return nil, fmt.Errorf("%w: duplicate number %d", ErrInvalidEvent, n)
		}
	}

	return ev, nil
}

// Mask packs the event into a bitmask (bit n-1 set for number n).
// With DomainSize <= 32 every set operation reduces to integer ops.
func (e Event) Mask() uint32 {
	var m uint32
	for _, n := range e {
		m |= 1 << uint(n-1)
	}
	return m
}

// Contains reports whether n is part of the event.
func (e Event) Contains(n int) bool {
	i := sort.SearchInts(e, n)
	return i < len(e) && e[i] == n
}

// Overlap counts the numbers two events share.
func Overlap(a, b Event) int {
	return bits.OnesCount32(a.Mask() & b.Mask())
}

// Jaccard returns the Jaccard distance 1 - |A∩B|/|A∪B| between two events.
func Jaccard(a, b Event) float64 {
	am, bm := a.Mask(), b.Mask()
	union := bits.OnesCount32(am | bm)
	if union == 0 {
		return 0
	}
	inter := bits.OnesCount32(am & bm)
	return 1 - float64(inter)/float64(union)
}

// Equal reports set equality between two events.
func Equal(a, b Event) bool {
	return a.Mask() == b.Mask()
}

// FromMask rebuilds a sorted Event from a bitmask. The mask must carry
// exactly EventSize bits; this is an internal invariant, not user input.
func FromMask(m uint32) Event {
	ev := make(Event, 0, EventSize)
	for n := 1; n <= DomainSize; n++ {
		if m&(1<<uint(n-1)) != 0 {
			ev = append(ev, n)
		}
	}
	return ev
}

// Series is an ordered group of SeriesLength events sharing one draw id.
// Series ids are the system's only clock: training consumes them strictly
// ascending.
type Series struct {
	ID     int     `json:"id"`
	Events []Event `json:"events"`
}

// NewSeries validates event count and id.
func NewSeries(id int, events []Event) (Series, error) {
	if id <= 0 {
		return Series{}, fmt.Errorf("%w: series id %d must be positive", ErrInvalidEvent, id)
	}
	if len(events) != SeriesLength {
		return Series{}, fmt.Errorf("%w: series %d has %d events, want %d", ErrInvalidEvent, id, len(events), SeriesLength)
	}
	return Series{ID: id, Events: events}, nil
}

// Last returns the freshest event of the series.
func (s Series) Last() Event {
	return s.Events[len(s.Events)-1]
}
