package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-lightsink/internal/port"
	"github.com/coreman2200/funtimes-lightsink/internal/sequence"
	"github.com/coreman2200/funtimes-lightsink/internal/sink"
	"github.com/coreman2200/funtimes-lightsink/model"
)

type Pins struct {
	Clock  uint8 `yaml:"clock"`
	ChainA uint8 `yaml:"chain_a"`
	ChainB uint8 `yaml:"chain_b"`
	// Brightness is a digital pin number; leave unset (or 255) for none.
	Brightness *uint8 `yaml:"brightness,omitempty"`
}

type MMap struct {
	Device string `yaml:"device"` // e.g. /dev/mem
	Offset int64  `yaml:"offset"` // physical address of the I/O window
	Ports  Ports  `yaml:"ports"`
}

// Ports are register offsets from MMap.Offset.
type Ports struct {
	B int64 `yaml:"b"`
	C int64 `yaml:"c"`
	D int64 `yaml:"d"`
}

type Frame struct {
	On      []int  `yaml:"on"`
	DelayMS uint16 `yaml:"delay_ms"`
}

type Animation struct {
	PingPong bool    `yaml:"ping_pong"`
	Frames   []Frame `yaml:"frames,omitempty"`
}

type Config struct {
	Driver      string `yaml:"driver"` // "sim" | "mmap"
	Pins        Pins   `yaml:"pins"`
	PWMPin      string `yaml:"pwm_pin,omitempty"` // periph pin name, e.g. GPIO18
	PWMHz       int    `yaml:"pwm_hz,omitempty"`
	Brightness  uint8  `yaml:"brightness"`
	Fast        bool   `yaml:"fast"`
	By32        bool   `yaml:"by32"`
	DeferFinish bool   `yaml:"defer_finish"`
	PulseNS     int    `yaml:"pulse_ns,omitempty"`

	MMap      MMap      `yaml:"mmap,omitempty"`
	Animation Animation `yaml:"animation"`
}

// Default is the Lightuino shield wiring on an ATmega328 I/O window.
func Default() *Config {
	return &Config{
		Driver:     "sim",
		Pins:       Pins{Clock: 7, ChainA: 5, ChainB: 6},
		PWMHz:      490,
		Brightness: 255,
		Fast:       true,
		MMap: MMap{
			Device: "/dev/mem",
			Ports:  Ports{B: 0x25, C: 0x28, D: 0x2b},
		},
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// SinkPins converts the pin section for sink.New.
func (c *Config) SinkPins() sink.Pins {
	p := sink.Pins{
		Clock:      c.Pins.Clock,
		ChainA:     c.Pins.ChainA,
		ChainB:     c.Pins.ChainB,
		Brightness: port.NoPin,
	}
	if c.Pins.Brightness != nil {
		p.Brightness = *c.Pins.Brightness
	}
	return p
}

func (c *Config) PWMFrequency() physic.Frequency {
	if c.PWMHz <= 0 {
		return sink.DefaultPWMFrequency
	}
	return physic.Frequency(c.PWMHz) * physic.Hertz
}

func (c *Config) PulseWidth() time.Duration {
	return time.Duration(c.PulseNS) * time.Nanosecond
}

// PortOffsets orders the register offsets for port.MapBank.
func (c *Config) PortOffsets() [port.NumPorts]int64 {
	var o [port.NumPorts]int64
	o[port.PortB] = c.MMap.Ports.B
	o[port.PortC] = c.MMap.Ports.C
	o[port.PortD] = c.MMap.Ports.D
	return o
}

// Table builds the configured animation, or a chase across every output
// when none is configured.
func (c *Config) Table() (sequence.Table, error) {
	var flags uint8
	if c.Animation.PingPong {
		flags |= sequence.PingPong
	}
	if len(c.Animation.Frames) == 0 {
		return Chase(flags)
	}
	frames := make([]model.Vector, len(c.Animation.Frames))
	delays := make([]uint16, len(c.Animation.Frames))
	for i, f := range c.Animation.Frames {
		for _, o := range f.On {
			if o < 0 || o >= model.FrameSize*8 {
				return sequence.Table{}, fmt.Errorf("animation frame %d: output %d does not fit a frame record", i, o)
			}
		}
		frames[i] = model.NewVector(f.On...)
		delays[i] = f.DelayMS
	}
	return sequence.NewTable(frames, delays, flags)
}

// Chase lights each output a frame-record can carry in turn.
func Chase(flags uint8) (sequence.Table, error) {
	const n = model.FrameSize * 8
	frames := make([]model.Vector, n)
	delays := make([]uint16, n)
	for i := range frames {
		frames[i] = model.NewVector(i)
		delays[i] = 50
	}
	return sequence.NewTable(frames, delays, flags)
}
