// Package port is the byte-wide output register layer the sink lines are
// driven through. Registers are injected so the protocol can run against
// real hardware (MappedBank) or memory (MemBank).
package port

import (
	"errors"
	"fmt"
)

// ID names one 8-bit output register.
type ID uint8

const (
	PortB ID = iota
	PortC
	PortD
	NumPorts
)

func (id ID) String() string {
	switch id {
	case PortB:
		return "PORTB"
	case PortC:
		return "PORTC"
	case PortD:
		return "PORTD"
	}
	return fmt.Sprintf("PORT(%d)", uint8(id))
}

// Register is a single output register.
type Register interface {
	Read() byte
	Write(v byte)
}

// Bank exposes the registers of one host.
type Bank interface {
	Register(id ID) Register
}

// Line is one output pin resolved to the register bit that drives it.
type Line struct {
	Port ID
	Bit  uint8
}

// Mask returns the register bit of l.
func (l Line) Mask() byte { return 1 << l.Bit }

func (l Line) String() string { return fmt.Sprintf("%s.%d", l.Port, l.Bit) }

const (
	// NoPin marks an unconfigured pin role.
	NoPin uint8 = 0xff
	// MaxPin is the highest addressable digital pin.
	MaxPin uint8 = 19
)

var ErrNoSuchPin = errors.New("port: pin out of range")

// Resolve maps a digital pin number onto its register bit: pins 0-7 live on
// PORTD, 8-13 on PORTB and 14-19 on PORTC.
func Resolve(pin uint8) (Line, error) {
	switch {
	case pin < 8:
		return Line{Port: PortD, Bit: pin}, nil
	case pin < 14:
		return Line{Port: PortB, Bit: pin - 8}, nil
	case pin <= MaxPin:
		return Line{Port: PortC, Bit: pin - 14}, nil
	}
	return Line{}, fmt.Errorf("%w: %d", ErrNoSuchPin, pin)
}

// View does read/modify/write access to single lines of a Bank, leaving
// every other bit of the register untouched.
type View struct {
	bank Bank
}

func NewView(b Bank) View { return View{bank: b} }

// Bank returns the underlying register bank.
func (v View) Bank() Bank { return v.bank }

// Out drives l high or low.
func (v View) Out(l Line, high bool) {
	r := v.bank.Register(l.Port)
	cur := r.Read()
	if high {
		r.Write(cur | l.Mask())
	} else {
		r.Write(cur &^ l.Mask())
	}
}

// Level reads back the value last written to l.
func (v View) Level(l Line) bool {
	return v.bank.Register(l.Port).Read()&l.Mask() != 0
}
