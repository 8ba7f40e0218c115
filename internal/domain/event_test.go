package domain

import (
	"errors"
	"testing"
)

func validNumbers() []int {
	return []int{1, 2, 4, 5, 6, 7, 8, 9, 11, 12, 16, 17, 18, 21}
}

func TestNewEvent_Valid(t *testing.T) {
	ev, err := NewEvent([]int{21, 18, 17, 16, 12, 11, 9, 8, 7, 6, 5, 4, 2, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ev) != EventSize {
		t.Fatalf("expected %d numbers, got %d", EventSize, len(ev))
	}
	for i := 1; i < len(ev); i++ {
		if ev[i-1] >= ev[i] {
			t.Errorf("event not sorted ascending at index %d: %v", i, ev)
		}
	}
}

func TestNewEvent_Rejects(t *testing.T) {
	cases := []struct {
		name    string
		numbers []int
	}{
		{"too short", []int{1, 2, 3}},
		{"too long", append(validNumbers(), 22)},
		{"out of range high", []int{1, 2, 4, 5, 6, 7, 8, 9, 11, 12, 16, 17, 18, 26}},
		{"out of range low", []int{0, 2, 4, 5, 6, 7, 8, 9, 11, 12, 16, 17, 18, 21}},
		{"duplicate", []int{1, 1, 4, 5, 6, 7, 8, 9, 11, 12, 16, 17, 18, 21}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEvent(tc.numbers)
			if !errors.Is(err, ErrInvalidEvent) {
				t.Fatalf("expected ErrInvalidEvent, got %v", err)
			}
		})
	}
}

func TestMaskRoundTrip(t *testing.T) {
	ev, err := NewEvent(validNumbers())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	back := FromMask(ev.Mask())
	if !Equal(ev, back) {
		t.Errorf("mask round trip changed event: %v vs %v", ev, back)
	}
}

func TestOverlapAndJaccard(t *testing.T) {
	a, _ := NewEvent([]int{1, 2, 4, 5, 6, 7, 8, 9, 11, 12, 16, 17, 18, 21})
	b, _ := NewEvent([]int{1, 2, 4, 5, 6, 7, 8, 9, 11, 12, 16, 17, 19, 22})

	if got := Overlap(a, b); got != 12 {
		t.Errorf("expected overlap 12, got %d", got)
	}
	if got := Overlap(a, a); got != EventSize {
		t.Errorf("expected self overlap %d, got %d", EventSize, got)
	}

	// |A∩B|=12, |A∪B|=16 → distance 1 - 12/16 = 0.25
	if got := Jaccard(a, b); got != 0.25 {
		t.Errorf("expected Jaccard distance 0.25, got %f", got)
	}
	if got := Jaccard(a, a); got != 0 {
		t.Errorf("expected zero self distance, got %f", got)
	}
}

func TestNewSeries(t *testing.T) {
	events := make([]Event, SeriesLength)
	for i := range events {
		ev, err := NewEvent(validNumbers())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		events[i] = ev
	}

	s, err := NewSeries(3, events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID != 3 {
		t.Errorf("expected id 3, got %d", s.ID)
	}
	if !Equal(s.Last(), events[SeriesLength-1]) {
		t.Error("Last() did not return final event")
	}

	if _, err := NewSeries(4, events[:3]); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent for short series, got %v", err)
	}
	if _, err := NewSeries(0, events); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent for zero id, got %v", err)
	}
}
