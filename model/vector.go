package model

import (
	"encoding/binary"
	"math/bits"
)

const (
	// Len is the number of sink outputs addressed by a Vector.
	Len = 99

	LO_WIDTH  uint8 = 32
	MID_WIDTH uint8 = 32
	HI_WIDTH  uint8 = Len - 64

	LO_OFFSET  uint8 = 0
	MID_OFFSET uint8 = 32
	HI_OFFSET  uint8 = 64
)

const HI_MASK uint64 = 1<<HI_WIDTH - 1

// Vector holds the on/off state of every sink output. Lo carries outputs
// 0-31, Mid 32-63 and Hi the remaining 35. Bits at or above Len are never
// set.
type Vector struct {
	Lo  uint32
	Mid uint32
	Hi  uint64
}

// NewVector returns a Vector with the given outputs switched on. Indices
// outside [0, Len) are dropped.
func NewVector(on ...int) Vector {
	var v Vector
	for _, i := range on {
		v.Set(i)
	}
	return v
}

// FromWords builds a Vector from its three words, masking Hi.
func FromWords(lo, mid uint32, hi uint64) Vector {
	return Vector{Lo: lo, Mid: mid, Hi: hi & HI_MASK}
}

func setbit(w uint64, off uint8, on bool) uint64 {
	var mask uint64 = 1 << off
	if on {
		return w | mask
	}
	return w &^ mask
}

func getbit(w uint64, off uint8) bool {
	return (w>>off)&1 == 1
}

func (v *Vector) put(i int, on bool) {
	if i < 0 || i >= Len {
		return
	}
	o := uint8(i)
	switch {
	case o < MID_OFFSET:
		v.Lo = uint32(setbit(uint64(v.Lo), o-LO_OFFSET, on))
	case o < HI_OFFSET:
		v.Mid = uint32(setbit(uint64(v.Mid), o-MID_OFFSET, on))
	default:
		v.Hi = setbit(v.Hi, o-HI_OFFSET, on)
	}
}

// Set switches output i on.
func (v *Vector) Set(i int) { v.put(i, true) }

// Clear switches output i off.
func (v *Vector) Clear(i int) { v.put(i, false) }

// Bit reports whether output i is on. Out of range indices read as off.
func (v Vector) Bit(i int) bool {
	if i < 0 || i >= Len {
		return false
	}
	o := uint8(i)
	switch {
	case o < MID_OFFSET:
		return getbit(uint64(v.Lo), o-LO_OFFSET)
	case o < HI_OFFSET:
		return getbit(uint64(v.Mid), o-MID_OFFSET)
	default:
		return getbit(v.Hi, o-HI_OFFSET)
	}
}

// Masked returns v with every bit at or above Len cleared.
func (v Vector) Masked() Vector {
	v.Hi &= HI_MASK
	return v
}

// Shr shifts the whole vector n bits towards output 0, carrying bits down
// across word boundaries.
func (v Vector) Shr(n uint) Vector {
	if n == 0 {
		return v.Masked()
	}
	if n >= Len {
		return Vector{}
	}
	lo, hi := v.wide()
	// 128-bit right shift over (hi:lo) where lo = Mid<<32|Lo.
	var nlo, nhi uint64
	if n < 64 {
		nlo = lo>>n | hi<<(64-n)
		nhi = hi >> n
	} else {
		nlo = hi >> (n - 64)
	}
	return Vector{
		Lo:  uint32(nlo),
		Mid: uint32(nlo >> 32),
		Hi:  nhi & HI_MASK,
	}
}

func (v Vector) wide() (lo, hi uint64) {
	return uint64(v.Mid)<<32 | uint64(v.Lo), v.Hi & HI_MASK
}

// IsZero reports whether every output is off.
func (v Vector) IsZero() bool {
	return v.Lo == 0 && v.Mid == 0 && v.Hi&HI_MASK == 0
}

// Count returns the number of outputs switched on.
func (v Vector) Count() int {
	return bits.OnesCount32(v.Lo) + bits.OnesCount32(v.Mid) + bits.OnesCount64(v.Hi&HI_MASK)
}

// On lists the indices of outputs switched on, in ascending order.
func (v Vector) On() []int {
	on := make([]int, 0, v.Count())
	for i := 0; i < Len; i++ {
		if v.Bit(i) {
			on = append(on, i)
		}
	}
	return on
}

const (
	// PackedLen is the size of the full byte-packed form of a Vector.
	PackedLen = (Len + 7) / 8
	// FrameSize is the size of an animation frame record: Lo, Mid and the
	// first byte of Hi.
	FrameSize = 9
)

// Unpack decodes the byte-packed form: bytes 0-3 are Lo and 4-7 are Mid,
// little endian, and bytes from 8 on fill Hi starting at its low byte.
// Short input leaves the remaining outputs off; extra input is ignored.
func Unpack(b []byte) Vector {
	var buf [16]byte
	copy(buf[:], b)
	return Vector{
		Lo:  binary.LittleEndian.Uint32(buf[0:4]),
		Mid: binary.LittleEndian.Uint32(buf[4:8]),
		Hi:  binary.LittleEndian.Uint64(buf[8:16]) & HI_MASK,
	}
}

// Pack encodes v into its PackedLen-byte form.
func Pack(v Vector) []byte {
	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:4], v.Lo)
	binary.LittleEndian.PutUint32(buf[4:8], v.Mid)
	binary.LittleEndian.PutUint64(buf[8:16], v.Hi&HI_MASK)
	out := make([]byte, PackedLen)
	copy(out, buf[:PackedLen])
	return out
}

// PackFrame encodes v as a FrameSize-byte animation record. Outputs 72 and
// above do not fit and are dropped.
func PackFrame(v Vector) []byte {
	return Pack(v)[:FrameSize]
}
