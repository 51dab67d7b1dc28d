package clock

import (
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	clock := &RealClock{}

	before := time.Now()
	actual := clock.Now()
	after := time.Now()

	if actual.Before(before) || actual.After(after) {
		t.Errorf("RealClock.Now() returned time outside expected range: got %v, expected between %v and %v", actual, before, after)
	}
}

func TestStepClock(t *testing.T) {
	start := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	t.Run("zero step is fixed", func(t *testing.T) {
		clock := NewStepClock(start, 0)
		if !clock.Now().Equal(start) || !clock.Now().Equal(start) {
			t.Error("StepClock with zero step should always return start")
		}
	})

	t.Run("advances after each call", func(t *testing.T) {
		clock := NewStepClock(start, time.Second)
		first := clock.Now()
		second := clock.Now()

		if !first.Equal(start) {
			t.Errorf("first Now() = %v, want %v", first, start)
		}
		if got := second.Sub(first); got != time.Second {
			t.Errorf("step = %v, want 1s", got)
		}
	})
}

func TestSince(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewStepClock(start.Add(90*time.Second), 0)

	if got := Since(clock, start); got != 90*time.Second {
		t.Errorf("Since() = %v, want 90s", got)
	}
}
