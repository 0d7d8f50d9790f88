package core

import (
	m "math"
	"testing"
	"time"
)

const fixed = 1.0 / 60.0

func TestFrameClockFractionalSteps(t *testing.T) {
	c := NewFrameClock(fixed, 10, 1.0, StallRetain)

	ticks := c.Advance(fixed * 2.5)
	if ticks != 2 {
		t.Errorf("ticks = %d, want 2", ticks)
	}
	if got, want := c.Accumulator(), fixed*0.5; m.Abs(got-want) > 1e-9 {
		t.Errorf("remainder = %f, want ~%f", got, want)
	}
}

func TestFrameClockStallRetainsBacklog(t *testing.T) {
	const maxTicks = 10
	c := NewFrameClock(fixed, maxTicks, 1.0, StallRetain)

	ticks := c.Advance(fixed * (maxTicks + 5))
	if ticks != maxTicks {
		t.Errorf("ticks = %d, want %d", ticks, maxTicks)
	}
	if got, want := c.Accumulator(), fixed*5; m.Abs(got-want) > 1e-9 {
		t.Errorf("remainder = %f, want ~%f", got, want)
	}

	// the backlog is paid down on the next frame
	ticks = c.Advance(fixed * 0.5)
	if ticks != 5 {
		t.Errorf("ticks on the following frame = %d, want 5", ticks)
	}
}

func TestFrameClockStallDiscard(t *testing.T) {
	const maxTicks = 10
	c := NewFrameClock(fixed, maxTicks, 1.0, StallDiscard)

	ticks := c.Advance(fixed * (maxTicks + 5.5))
	if ticks != maxTicks {
		t.Errorf("ticks = %d, want %d", ticks, maxTicks)
	}
	if got, want := c.Accumulator(), fixed*0.5; m.Abs(got-want) > 1e-9 {
		t.Errorf("remainder = %f, want ~%f", got, want)
	}
}

func TestFrameClockCapsDelta(t *testing.T) {
	c := NewFrameClock(fixed, 100, 0.25, StallRetain)

	ticks := c.Advance(5.0)
	// 0.25s of simulation at most, i.e. 15 steps minus the strict comparison
	if ticks < 14 || ticks > 15 {
		t.Errorf("ticks = %d, want 14 or 15", ticks)
	}
	if c.Accumulator() > fixed+1e-9 {
		t.Errorf("accumulator = %f, exceeds one step after a capped frame", c.Accumulator())
	}
}

func TestFrameClockSample(t *testing.T) {
	c := NewFrameClock(0, 0, 0, "")
	start := time.Unix(100, 0)
	c.Start(start)

	if got := c.Sample(start.Add(20 * time.Millisecond)); m.Abs(got-0.02) > 1e-9 {
		t.Errorf("Sample = %f, want 0.02", got)
	}
	if got := c.Sample(start); got != 0 {
		t.Errorf("Sample going backwards = %f, want 0", got)
	}
}

func TestFrameClockDefaults(t *testing.T) {
	c := NewFrameClock(0, 0, 0, "")
	if c.FixedStep() != DefaultFixedStep {
		t.Errorf("FixedStep = %f, want %f", c.FixedStep(), DefaultFixedStep)
	}
	if c.MaxTicks() != DefaultMaxTicks {
		t.Errorf("MaxTicks = %d, want %d", c.MaxTicks(), DefaultMaxTicks)
	}
}

func TestParseStallPolicy(t *testing.T) {
	for in, want := range map[string]StallPolicy{"": StallRetain, "retain": StallRetain, "discard": StallDiscard} {
		got, err := ParseStallPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseStallPolicy(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseStallPolicy("reset"); err == nil {
		t.Error("ParseStallPolicy(reset) should fail")
	}
}
