package core

import (
	"fmt"
	"time"
)

// StallPolicy decides what happens to the accumulator when a frame needed
// more fixed steps than a single frame is allowed to run.
type StallPolicy string

const (
	// StallRetain keeps the whole backlog; later frames pay it down.
	StallRetain StallPolicy = "retain"
	// StallDiscard drops the whole steps that did not fit, keeping only
	// the fraction of a step.
	StallDiscard StallPolicy = "discard"
)

const (
	DefaultFixedStep      float64 = 1.0 / 60.0
	DefaultMaxTicks       int     = 10
	DefaultMaxFrameDelta  float64 = 0.25
	DefaultStallPolicy            = StallRetain
	minimumFixedStepValue float64 = 1e-6
)

// ParseStallPolicy accepts "retain", "discard" or an empty string (retain).
func ParseStallPolicy(s string) (StallPolicy, error) {
	switch StallPolicy(s) {
	case "", StallRetain:
		return StallRetain, nil
	case StallDiscard:
		return StallDiscard, nil
	}
	return "", fmt.Errorf("unknown stall policy %q", s)
}

// FrameClock measures frame time and converts it into a number of fixed
// physics steps using an accumulator.
type FrameClock struct {
	fixedStep     float64
	maxTicks      int
	maxFrameDelta float64
	policy        StallPolicy

	last        time.Time
	accumulator float64
}

// NewFrameClock creates a clock. Non positive values fall back to the defaults.
func NewFrameClock(fixedStep float64, maxTicks int, maxFrameDelta float64, policy StallPolicy) *FrameClock {
	if fixedStep < minimumFixedStepValue {
		fixedStep = DefaultFixedStep
	}
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTicks
	}
	if maxFrameDelta <= 0 {
		maxFrameDelta = DefaultMaxFrameDelta
	}
	if policy == "" {
		policy = DefaultStallPolicy
	}
	return &FrameClock{
		fixedStep:     fixedStep,
		maxTicks:      maxTicks,
		maxFrameDelta: maxFrameDelta,
		policy:        policy,
	}
}

// Start marks now as the last frame instant and empties the accumulator.
func (c *FrameClock) Start(now time.Time) {
	c.last = now
	c.accumulator = 0
}

// Sample returns the seconds since the previous sample and moves the last
// instant to now. Time going backwards yields zero.
func (c *FrameClock) Sample(now time.Time) float64 {
	if c.last.IsZero() {
		c.last = now
		return 0
	}
	elapsed := now.Sub(c.last).Seconds()
	c.last = now
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Advance feeds one frame's elapsed seconds into the accumulator and returns
// how many fixed steps are due this frame. The elapsed time is capped before
// accumulating; ticks stop at the per frame maximum.
func (c *FrameClock) Advance(elapsed float64) int {
	if elapsed < 0 {
		elapsed = 0
	}
	capped := elapsed
	if capped > c.maxFrameDelta {
		capped = c.maxFrameDelta
	}
	c.accumulator += capped

	ticks := 0
	for c.accumulator > c.fixedStep && ticks < c.maxTicks {
		c.accumulator -= c.fixedStep
		ticks++
	}

	if ticks == c.maxTicks && c.policy == StallDiscard {
		for c.accumulator > c.fixedStep {
			c.accumulator -= c.fixedStep
		}
	}
	return ticks
}

func (c *FrameClock) FixedStep() float64 {
	return c.fixedStep
}

func (c *FrameClock) MaxTicks() int {
	return c.maxTicks
}

// Accumulator returns the unconsumed simulation time in seconds.
func (c *FrameClock) Accumulator() float64 {
	return c.accumulator
}

// Alpha is the fraction of a fixed step left in the accumulator, useful to
// interpolate between the last two physics states when rendering.
func (c *FrameClock) Alpha() float64 {
	return c.accumulator / c.fixedStep
}
