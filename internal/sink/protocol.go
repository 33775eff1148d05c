package sink

import (
	"time"

	"github.com/coreman2200/funtimes-lightsink/model"
)

// MinPulseWidth is the shortest clock phase and data settle time the
// slowest M5451 parts accept.
const MinPulseWidth = 2 * time.Microsecond

// Spin busy-waits for d. The scheduler cannot sleep for microseconds.
func Spin(d time.Duration) {
	for start := time.Now(); time.Since(start) < d; {
	}
}

// idle drives the clock and both data lines low.
func (c *Controller) idle() {
	c.view.Out(c.clk, false)
	c.view.Out(c.a, false)
	c.view.Out(c.b, false)
}

func (c *Controller) wait() { c.delay(c.pulse) }

// safeSet shifts v out one pin write at a time with a settle delay around
// every transition.
func (c *Controller) safeSet(v model.Vector, by32 bool) {
	ch := split(v, by32)

	// a pending edge is consumed by this frame's start signature
	c.held = false
	c.idle()

	// start signature
	c.wait()
	c.view.Out(c.clk, true)
	c.wait()
	c.view.Out(c.clk, false)
	c.wait()
	c.view.Out(c.a, true)
	c.view.Out(c.b, true)
	c.wait()
	c.view.Out(c.clk, true)
	c.wait()
	c.view.Out(c.clk, false)

	ch.each(func(_ int, a, b uint64) {
		c.view.Out(c.a, a == 1)
		c.view.Out(c.b, b == 1)
		c.wait()
		c.view.Out(c.clk, true)
		c.wait()
		c.view.Out(c.clk, false)
		c.wait()
	})
}

// fastSet shifts v out through a lookup table with no delays: one register
// write per data register and one to raise the clock, per bit.
func (c *Controller) fastSet(v model.Vector, by32 bool) {
	ch := split(v, by32)

	c.held = false
	c.idle()
	lut := buildLookup(c.view.Bank(), c.clk, c.a, c.b)

	c.view.Out(c.clk, true)
	c.view.Out(c.clk, false)
	c.view.Out(c.a, true)
	c.view.Out(c.b, true)
	c.view.Out(c.clk, true)
	c.view.Out(c.clk, false)

	last := ch.clocks() - 1
	hold := c.deferFinish
	ch.each(func(i int, a, b uint64) {
		lut.shift(a|b<<1, i != last || !hold)
	})
	c.held = hold && last >= 0
}
