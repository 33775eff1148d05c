package sink

import (
	"periph.io/x/conn/v3/gpio"

	"github.com/coreman2200/funtimes-lightsink/model"
)

const (
	// ChainShift is how far chain B trails chain A in the default wiring.
	ChainShift = 3
	// By32Width is the number of outputs of one M5451, and so the frame
	// length of the by-32 wiring.
	By32Width = 35

	lo  = int(model.LO_WIDTH)
	mid = int(model.MID_OFFSET)
	hi  = int(model.HI_OFFSET)
)

// chains is a frame split into the words shifted out on each data line.
// Words go out low to high, each LSB first, width[i] bits from word i.
type chains struct {
	a, b  [3]uint64
	width [3]int
}

func (c chains) clocks() int {
	return c.width[0] + c.width[1] + c.width[2]
}

// split derives both chain bitstreams from v.
//
// Default wiring: chain A is v itself and chain B is v shifted down by
// ChainShift, one clock per output. By-32 wiring: chain A is Lo followed by
// the low three bits of Hi, chain B is Mid followed by the next three bits
// of Hi, By32Width clocks in all.
func split(v model.Vector, by32 bool) chains {
	v = v.Masked()
	if by32 {
		return chains{
			a:     [3]uint64{uint64(v.Lo), v.Hi},
			b:     [3]uint64{uint64(v.Mid), v.Hi >> ChainShift},
			width: [3]int{lo, By32Width - lo},
		}
	}
	s := v.Shr(ChainShift)
	return chains{
		a:     [3]uint64{uint64(v.Lo), uint64(v.Mid), v.Hi},
		b:     [3]uint64{uint64(s.Lo), uint64(s.Mid), s.Hi},
		width: [3]int{lo, int(model.MID_WIDTH), int(model.HI_WIDTH)},
	}
}

// each calls f once per clock with the bit of each chain, in shift order.
func (c chains) each(f func(i int, a, b uint64)) {
	i := 0
	for w := range c.width {
		a, b := c.a[w], c.b[w]
		for n := 0; n < c.width[w]; n++ {
			f(i, a&1, b&1)
			a >>= 1
			b >>= 1
			i++
		}
	}
}

// Streams is a frame as the chips see it: one level per clock on each data
// line.
type Streams struct {
	A, B []gpio.Level
}

// Split returns the two bitstreams v is shifted out as.
func Split(v model.Vector, by32 bool) Streams {
	c := split(v, by32)
	s := Streams{
		A: make([]gpio.Level, c.clocks()),
		B: make([]gpio.Level, c.clocks()),
	}
	c.each(func(i int, a, b uint64) {
		s.A[i] = a == 1
		s.B[i] = b == 1
	})
	return s
}

// Vector rebuilds the output vector the streams were split from. Under the
// default wiring chain A alone carries every output; chain B is only
// consulted for the by-32 wiring.
func (s Streams) Vector(by32 bool) model.Vector {
	var v model.Vector
	if by32 {
		for i, l := range s.A {
			if !l {
				continue
			}
			if i < lo {
				v.Set(i)
			} else if i < By32Width {
				v.Set(hi + i - lo)
			}
		}
		for i, l := range s.B {
			if !l {
				continue
			}
			if i < lo {
				v.Set(mid + i)
			} else if i < By32Width {
				v.Set(hi + ChainShift + i - lo)
			}
		}
		return v
	}
	for i, l := range s.A {
		if l {
			v.Set(i)
		}
	}
	return v
}
