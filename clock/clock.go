// Package clock measures per-frame wall-clock time and accumulates
// fractional fixed-step simulation time for the frame loop.
package clock

import (
	"errors"
	"time"
)

// DefaultFixedHz is the fixed-update rate used when none is configured.
const DefaultFixedHz = 60

// ErrInvalidRate is returned when a non-positive fixed-update rate is configured.
var ErrInvalidRate = errors.New("clock: fixed update rate must be positive")

// Clock tracks elapsed time per variable frame and drains accumulated
// time into fixed simulation steps. It is purely arithmetic: the caller
// feeds it time.Now() once per frame via Advance.
//
// There is no cap on how many fixed steps a single frame may produce; a
// long stall yields a burst of steps. Callers that need a guard against
// that can set a delta clamp with SetMaxDelta.
type Clock struct {
	fixedStep   float64
	delta       float64
	total       float64
	accumulated float64
	maxDelta    float64

	variableTicks uint64
	fixedTicks    uint64

	last    time.Time
	started bool
}

// New creates a clock running at the default fixed-update rate.
func New() *Clock {
	return &Clock{fixedStep: 1.0 / DefaultFixedHz}
}

// SetFixedUpdatesPerSecond changes the fixed-update rate. The rate must
// be positive; anything else is rejected before it can poison the
// accumulator.
func (c *Clock) SetFixedUpdatesPerSecond(hz float64) error {
	if hz <= 0 {
		return ErrInvalidRate
	}
	c.fixedStep = 1.0 / hz
	return nil
}

// SetMaxDelta clamps the per-frame delta to at most max seconds.
// Zero disables the clamp (the default).
func (c *Clock) SetMaxDelta(max float64) {
	c.maxDelta = max
}

// Advance feeds the clock the current wall-clock time. The first call
// establishes the baseline and yields a zero delta rather than a
// meaningless huge one.
func (c *Clock) Advance(now time.Time) {
	if !c.started {
		c.started = true
		c.last = now
		c.delta = 0
		return
	}

	c.delta = now.Sub(c.last).Seconds()
	c.last = now

	if c.maxDelta > 0 && c.delta > c.maxDelta {
		c.delta = c.maxDelta
	}

	c.total += c.delta
	c.accumulated += c.delta
}

// PendingFixed reports whether at least one full fixed step has accumulated.
func (c *Clock) PendingFixed() bool {
	return c.accumulated >= c.fixedStep
}

// ConsumeFixed removes one fixed step from the accumulator. The frame
// loop calls this once per fixed update it runs.
func (c *Clock) ConsumeFixed() {
	c.accumulated -= c.fixedStep
}

// CountVariableTick increments the variable tick counter.
func (c *Clock) CountVariableTick() {
	c.variableTicks++
}

// CountFixedTick increments the fixed tick counter.
func (c *Clock) CountFixedTick() {
	c.fixedTicks++
}

// Delta returns the seconds elapsed during the last variable frame.
func (c *Clock) Delta() float64 { return c.delta }

// Total returns the seconds elapsed since the first Advance.
func (c *Clock) Total() float64 { return c.total }

// Accumulated returns the fractional fixed-step time not yet consumed.
func (c *Clock) Accumulated() float64 { return c.accumulated }

// FixedStep returns the current fixed step length in seconds.
func (c *Clock) FixedStep() float64 { return c.fixedStep }

// VariableTicks returns the number of variable updates counted so far.
func (c *Clock) VariableTicks() uint64 { return c.variableTicks }

// FixedTicks returns the number of fixed updates counted so far.
func (c *Clock) FixedTicks() uint64 { return c.fixedTicks }

// Alpha returns the interpolation fraction of the partially accumulated
// fixed step, in [0, 1). Renderers can use it to blend between the last
// two fixed states.
func (c *Clock) Alpha() float64 {
	return c.accumulated / c.fixedStep
}
