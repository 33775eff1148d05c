// Package sink drives two daisy-chained M5451 constant-current sink chains
// sharing one clock line, each fed by its own data line.
package sink

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-lightsink/internal/port"
	"github.com/coreman2200/funtimes-lightsink/model"
)

// DefaultPWMFrequency matches the AVR analogWrite rate on the brightness pin.
const DefaultPWMFrequency = 490 * physic.Hertz

var (
	ErrPinRange    = errors.New("sink: pin out of range")
	ErrPinConflict = errors.New("sink: pin used for more than one role")
)

// Pins assigns the sink roles to digital pins. Brightness may be
// port.NoPin.
type Pins struct {
	Clock      uint8
	ChainA     uint8
	ChainB     uint8
	Brightness uint8
}

// Lines resolves the clock and data pins.
func (p Pins) Lines() (clk, a, b port.Line, err error) {
	if err = p.validate(); err != nil {
		return
	}
	clk, _ = port.Resolve(p.Clock)
	a, _ = port.Resolve(p.ChainA)
	b, _ = port.Resolve(p.ChainB)
	return
}

func (p Pins) validate() error {
	roles := []struct {
		name string
		pin  uint8
	}{
		{"clock", p.Clock},
		{"chain A", p.ChainA},
		{"chain B", p.ChainB},
		{"brightness", p.Brightness},
	}
	seen := map[uint8]string{}
	for _, r := range roles {
		if r.name == "brightness" && r.pin == port.NoPin {
			continue
		}
		if r.pin > port.MaxPin {
			return fmt.Errorf("%w: %s pin %d", ErrPinRange, r.name, r.pin)
		}
		if other, ok := seen[r.pin]; ok {
			return fmt.Errorf("%w: pin %d is both %s and %s", ErrPinConflict, r.pin, other, r.name)
		}
		seen[r.pin] = r.name
	}
	return nil
}

// Dimmer is a PWM-capable output. Any periph gpio.PinOut is one.
type Dimmer interface {
	PWM(duty gpio.Duty, f physic.Frequency) error
}

type Option func(*Controller)

// WithLogger sets the logger used for construction and mode changes.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithDelay replaces the busy-wait used by the safe path.
func WithDelay(f func(time.Duration)) Option {
	return func(c *Controller) { c.delay = f }
}

// WithPulseWidth sets the safe path's delay unit. Values below
// MinPulseWidth are raised to it.
func WithPulseWidth(d time.Duration) Option {
	return func(c *Controller) {
		if d > MinPulseWidth {
			c.pulse = d
		}
	}
}

// WithDimmer drives brightness through hardware PWM on p instead of the
// brightness pin's register bit.
func WithDimmer(p Dimmer) Option {
	return func(c *Controller) { c.dimmer = p }
}

func WithPWMFrequency(f physic.Frequency) Option {
	return func(c *Controller) {
		if f > 0 {
			c.freq = f
		}
	}
}

// Controller owns the sink pins and shifts output vectors into the chains.
// Callers must not touch the sink's registers while a transmission runs.
type Controller struct {
	mu   sync.Mutex
	view port.View
	pins Pins

	clk, a, b port.Line
	bright    port.Line
	hasBright bool
	dimmer    Dimmer
	freq      physic.Frequency

	fast        bool
	by32        bool
	deferFinish bool
	// held is set while a fast frame's last clock edge is withheld.
	held bool

	pulse time.Duration
	delay func(time.Duration)
	log   zerolog.Logger
}

// New resolves pins on bank, clears both chains and sets full brightness.
// There is no read-back from the chips, so their presence is not checked.
func New(bank port.Bank, pins Pins, opts ...Option) (*Controller, error) {
	clk, a, b, err := pins.Lines()
	if err != nil {
		return nil, err
	}
	c := &Controller{
		view:  port.NewView(bank),
		pins:  pins,
		clk:   clk,
		a:     a,
		b:     b,
		freq:  DefaultPWMFrequency,
		fast:  true,
		pulse: MinPulseWidth,
		delay: Spin,
		log:   zerolog.Nop(),
	}
	if pins.Brightness != port.NoPin {
		c.bright, _ = port.Resolve(pins.Brightness)
		c.hasBright = true
	}
	for _, o := range opts {
		o(c)
	}
	if !c.hasBright {
		c.dimmer = nil
	}

	c.log.Debug().
		Stringer("clock", clk).
		Stringer("chain_a", a).
		Stringer("chain_b", b).
		Bool("brightness", c.hasBright).
		Bool("pwm", c.dimmer != nil).
		Msg("sink controller ready")

	c.Set(model.Vector{})
	if err := c.SetBrightness(255); err != nil {
		c.log.Warn().Err(err).Msg("initial brightness")
	}
	return c, nil
}

// Set shifts v into the chains using the current mode.
func (c *Controller) Set(v model.Vector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fast {
		c.fastSet(v, c.by32)
	} else {
		c.safeSet(v, c.by32)
	}
}

// SetBytes is Set for the byte-packed form, see model.Unpack.
func (c *Controller) SetBytes(b []byte) {
	c.Set(model.Unpack(b))
}

// SafeSet shifts v out on the delay-paced path regardless of mode.
func (c *Controller) SafeSet(v model.Vector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.safeSet(v, c.by32)
}

// FastSet shifts v out on the lookup-table path with the default wiring.
func (c *Controller) FastSet(v model.Vector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fastSet(v, false)
}

// FastSetBy32 shifts v out on the lookup-table path with the by-32 wiring.
func (c *Controller) FastSetBy32(v model.Vector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fastSet(v, true)
}

// Finish raises the clock edge withheld by a deferred fast frame. It does
// nothing if no edge is pending.
func (c *Controller) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.held {
		return
	}
	c.view.Out(c.clk, true)
	c.held = false
}

// SetBrightness dims every output. It is a no-op when no brightness pin is
// configured. Without a Dimmer the pin is only switched fully on or off.
func (c *Controller) SetBrightness(level uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasBright {
		return nil
	}
	c.log.Debug().Uint8("level", level).Msg("brightness")
	if c.dimmer != nil {
		duty := gpio.Duty(int64(gpio.DutyMax) * int64(level) / 255)
		if err := c.dimmer.PWM(duty, c.freq); err != nil {
			return fmt.Errorf("brightness pwm: %w", err)
		}
		return nil
	}
	c.view.Out(c.bright, level != 0)
	return nil
}

func (c *Controller) SetFast(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fast = on
	c.log.Debug().Bool("fast", on).Msg("mode")
}

func (c *Controller) SetBy32(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.by32 = on
	c.log.Debug().Bool("by32", on).Msg("mode")
}

// SetDeferFinish makes fast frames withhold their last clock edge, see
// Finish.
func (c *Controller) SetDeferFinish(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deferFinish = on
	c.log.Debug().Bool("defer_finish", on).Msg("mode")
}

func (c *Controller) Fast() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fast
}

func (c *Controller) By32() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.by32
}

func (c *Controller) DeferFinish() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deferFinish
}

// Pins returns the pin assignment the controller was built with.
func (c *Controller) Pins() Pins { return c.pins }
