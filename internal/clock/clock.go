// Package clock abstracts time so run timing is deterministic in tests.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system time.
type RealClock struct{}

// Now returns the current system time.
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// StepClock is a fake Clock that starts at a fixed time and advances by Step
// after every call to Now.
type StepClock struct {
	current time.Time
	Step    time.Duration
}

// NewStepClock creates a StepClock starting at start.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{current: start, Step: step}
}

// Now returns the current fake time, then advances it by Step.
func (c *StepClock) Now() time.Time {
	now := c.current
	c.current = c.current.Add(c.Step)
	return now
}

// Since returns the elapsed time between start and now on clk.
func Since(clk Clock, start time.Time) time.Duration {
	return clk.Now().Sub(start)
}
