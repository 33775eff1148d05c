package sink

import (
	"github.com/coreman2200/funtimes-lightsink/internal/port"
)

// lutReg holds, for one register carrying a data line, the byte to write for
// each (A, B) combination, indexed A | B<<1.
type lutReg struct {
	reg port.Register
	val [4]byte
}

// lookupTable is built at the start of every fast frame from a snapshot of
// the registers, so every bit not owned by the sink keeps its value.
type lookupTable struct {
	data    []lutReg
	clk     port.Register
	clkMask byte
	// shared is set when the clock lives on data[0]; writing a data byte
	// then also drops the clock.
	shared  bool
	clkIdle byte
}

func buildLookup(bank port.Bank, clk, a, b port.Line) lookupTable {
	t := lookupTable{
		clk:     bank.Register(clk.Port),
		clkMask: clk.Mask(),
	}

	ids := []port.ID{a.Port}
	if b.Port != a.Port {
		ids = append(ids, b.Port)
	}
	// the clock's register goes first so it drops before the other
	// register changes
	if len(ids) == 2 && ids[1] == clk.Port {
		ids[0], ids[1] = ids[1], ids[0]
	}

	for _, id := range ids {
		r := bank.Register(id)
		cur := r.Read()
		if id == clk.Port {
			cur &^= t.clkMask
			t.shared = true
		}
		e := lutReg{reg: r}
		for k := 0; k < 4; k++ {
			v := cur
			if a.Port == id {
				v = with(v, a.Mask(), k&1 != 0)
			}
			if b.Port == id {
				v = with(v, b.Mask(), k&2 != 0)
			}
			e.val[k] = v
		}
		t.data = append(t.data, e)
	}
	if !t.shared {
		t.clkIdle = t.clk.Read() &^ t.clkMask
	}
	return t
}

func with(v, mask byte, on bool) byte {
	if on {
		return v | mask
	}
	return v &^ mask
}

// shift presents combination k on the data lines and, if latch is set,
// raises the clock.
func (t *lookupTable) shift(k uint64, latch bool) {
	if !t.shared {
		t.clk.Write(t.clkIdle)
	}
	for i := range t.data {
		t.data[i].reg.Write(t.data[i].val[k])
	}
	if !latch {
		return
	}
	if t.shared {
		t.clk.Write(t.data[0].val[k] | t.clkMask)
	} else {
		t.clk.Write(t.clkIdle | t.clkMask)
	}
}
