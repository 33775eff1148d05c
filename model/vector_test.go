package model_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/coreman2200/funtimes-lightsink/model"
)

var TestSetBitLandsInExpectedWord = []struct {
	Index int
	Lo    uint32
	Mid   uint32
	Hi    uint64
}{
	{0, 0x00000001, 0, 0},
	{31, 0x80000000, 0, 0},
	{32, 0, 0x00000001, 0},
	{50, 0, 0x00040000, 0},
	{63, 0, 0x80000000, 0},
	{64, 0, 0, 0x1},
	{98, 0, 0, 1 << 34},
	{99, 0, 0, 0},
	{-1, 0, 0, 0},
}

func TestVectorSet(t *testing.T) {
	for _, v := range TestSetBitLandsInExpectedWord {
		t.Run("Index"+strconv.Itoa(v.Index), func(t *testing.T) {
			vec := NewVector(v.Index)
			assert.Equal(t, v.Lo, vec.Lo)
			assert.Equal(t, v.Mid, vec.Mid)
			assert.Equal(t, v.Hi, vec.Hi)
			assert.Equal(t, v.Index >= 0 && v.Index < Len, vec.Bit(v.Index))
		})
	}
}

func TestVectorClear(t *testing.T) {
	vec := NewVector(3, 40, 90)
	vec.Clear(40)
	assert.Equal(t, []int{3, 90}, vec.On())
	vec.Clear(200)
	assert.Equal(t, 2, vec.Count())
}

func TestFromWordsMasksHighWord(t *testing.T) {
	vec := FromWords(0, 0, ^uint64(0))
	assert.Equal(t, HI_MASK, vec.Hi)
	assert.Equal(t, int(HI_WIDTH), vec.Count())
	assert.False(t, vec.Bit(Len))
}

func TestShr(t *testing.T) {
	vec := NewVector(50)
	assert.Equal(t, []int{47}, vec.Shr(3).On())

	// bits cross both word boundaries on the way down
	vec = NewVector(0, 1, 2, 3, 32, 34, 64, 66, 98)
	assert.Equal(t, []int{0, 29, 31, 61, 63, 95}, vec.Shr(3).On())

	assert.Equal(t, []int{0, 34}, NewVector(64, 98).Shr(64).On())
	assert.True(t, NewVector(98).Shr(Len).IsZero())
	assert.Equal(t, vec, vec.Shr(0))
}

func TestShrMatchesBitwiseDefinition(t *testing.T) {
	vec := FromWords(0xdeadbeef, 0x01234567, 0x5a5a5a5a5)
	for _, n := range []uint{1, 3, 31, 32, 33, 63, 64, 65, 98} {
		got := vec.Shr(n)
		for i := 0; i < Len; i++ {
			want := i+int(n) < Len && vec.Bit(i+int(n))
			require.Equal(t, want, got.Bit(i), "shift %d bit %d", n, i)
		}
	}
}

func TestPackUnpack(t *testing.T) {
	vec := NewVector(0, 9, 33, 71, 72, 98)
	b := Pack(vec)
	require.Len(t, b, PackedLen)
	assert.Equal(t, byte(0x01), b[0])
	assert.Equal(t, byte(0x02), b[1])
	assert.Equal(t, byte(0x02), b[4])
	assert.Equal(t, byte(0x80), b[8])
	assert.Equal(t, byte(0x01), b[9])
	assert.Equal(t, vec, Unpack(b))

	frame := PackFrame(vec)
	require.Len(t, frame, FrameSize)
	assert.Equal(t, []int{0, 9, 33, 71}, Unpack(frame).On())
}

func TestUnpackMasksExcessBits(t *testing.T) {
	b := make([]byte, 20)
	for i := range b {
		b[i] = 0xff
	}
	vec := Unpack(b)
	assert.Equal(t, Len, vec.Count())
	assert.True(t, Unpack(nil).IsZero())
}
