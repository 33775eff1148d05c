package port

import (
	"periph.io/x/conn/v3/gpio"
)

// WriteFunc observes a register write. prev is the value before the write.
type WriteFunc func(id ID, prev, cur byte)

// MemBank is a Bank held in memory. It stands in for the hardware in the
// simulator and in tests.
type MemBank struct {
	regs   [NumPorts]byte
	writes int
	watch  []WriteFunc
}

func NewMemBank() *MemBank { return &MemBank{} }

// Register implements Bank.
func (m *MemBank) Register(id ID) Register {
	return memReg{bank: m, id: id}
}

// Preset sets a register without counting or reporting it as a write.
func (m *MemBank) Preset(id ID, v byte) { m.regs[id] = v }

// Value returns the current content of a register.
func (m *MemBank) Value(id ID) byte { return m.regs[id] }

// Writes returns the number of register writes seen so far.
func (m *MemBank) Writes() int { return m.writes }

// Watch registers f to be called after every write.
func (m *MemBank) Watch(f WriteFunc) { m.watch = append(m.watch, f) }

type memReg struct {
	bank *MemBank
	id   ID
}

func (r memReg) Read() byte { return r.bank.regs[r.id] }

func (r memReg) Write(v byte) {
	prev := r.bank.regs[r.id]
	r.bank.regs[r.id] = v
	r.bank.writes++
	for _, f := range r.bank.watch {
		f(r.id, prev, v)
	}
}

// Edge is the state of both data lines sampled on a rising clock edge.
type Edge struct {
	A, B gpio.Level
}

// Trace records every rising edge of a clock line on a MemBank together with
// the data lines at that instant, which is what the chips latch.
type Trace struct {
	bank  *MemBank
	clk   Line
	a, b  Line
	Edges []Edge
}

// NewTrace starts recording clock edges on bank.
func NewTrace(bank *MemBank, clk, a, b Line) *Trace {
	t := &Trace{bank: bank, clk: clk, a: a, b: b}
	bank.Watch(t.observe)
	return t
}

func (t *Trace) observe(id ID, prev, cur byte) {
	if id != t.clk.Port {
		return
	}
	m := t.clk.Mask()
	if prev&m != 0 || cur&m == 0 {
		return
	}
	t.Edges = append(t.Edges, Edge{
		A: gpio.Level(t.bank.regs[t.a.Port]&t.a.Mask() != 0),
		B: gpio.Level(t.bank.regs[t.b.Port]&t.b.Mask() != 0),
	})
}

// Reset forgets every recorded edge.
func (t *Trace) Reset() { t.Edges = t.Edges[:0] }

// Take returns the recorded edges and resets the trace.
func (t *Trace) Take() []Edge {
	e := make([]Edge, len(t.Edges))
	copy(e, t.Edges)
	t.Reset()
	return e
}
