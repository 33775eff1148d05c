package port

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

var TestPinResolvesToLine = []struct {
	Pin    uint8
	Expect Line
}{
	{0, Line{PortD, 0}},
	{2, Line{PortD, 2}},
	{7, Line{PortD, 7}},
	{8, Line{PortB, 0}},
	{13, Line{PortB, 5}},
	{14, Line{PortC, 0}},
	{19, Line{PortC, 5}},
}

func TestResolve(t *testing.T) {
	for _, v := range TestPinResolvesToLine {
		t.Run("Pin"+strconv.Itoa(int(v.Pin)), func(t *testing.T) {
			l, err := Resolve(v.Pin)
			require.NoError(t, err)
			assert.Equal(t, v.Expect, l)
		})
	}

	_, err := Resolve(20)
	assert.True(t, errors.Is(err, ErrNoSuchPin))
	_, err = Resolve(NoPin)
	assert.True(t, errors.Is(err, ErrNoSuchPin))
}

func TestViewPreservesOtherBits(t *testing.T) {
	bank := NewMemBank()
	bank.Preset(PortD, 0b1010_0001)
	v := NewView(bank)

	v.Out(Line{PortD, 2}, true)
	assert.Equal(t, byte(0b1010_0101), bank.Value(PortD))
	assert.True(t, v.Level(Line{PortD, 2}))

	v.Out(Line{PortD, 7}, false)
	assert.Equal(t, byte(0b0010_0101), bank.Value(PortD))
	assert.Equal(t, byte(0), bank.Value(PortB))
	assert.Equal(t, 2, bank.Writes())
}

func TestTraceSamplesOnRisingEdge(t *testing.T) {
	bank := NewMemBank()
	clk, a, b := Line{PortD, 2}, Line{PortD, 3}, Line{PortB, 1}
	tr := NewTrace(bank, clk, a, b)
	v := NewView(bank)

	v.Out(a, true)
	v.Out(clk, true)
	v.Out(clk, true) // already high, not an edge
	v.Out(clk, false)
	v.Out(a, false)
	v.Out(b, true)
	v.Out(clk, true)

	assert.Equal(t, []Edge{{A: gpio.High, B: gpio.Low}, {A: gpio.Low, B: gpio.High}}, tr.Take())
	assert.Empty(t, tr.Edges)
}

func TestMappedBank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "io")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0600))

	bank, err := MapBank(path, 0x20, [NumPorts]int64{PortB: 0x05, PortC: 0x08, PortD: 0x0b})
	require.NoError(t, err)

	v := NewView(bank)
	v.Out(Line{PortD, 4}, true)
	v.Out(Line{PortB, 0}, true)
	assert.Equal(t, byte(0x10), bank.Register(PortD).Read())
	require.NoError(t, bank.Flush())
	require.NoError(t, bank.Close())
	require.NoError(t, bank.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte(0x10), raw[0x2b])
	assert.Equal(t, byte(0x01), raw[0x25])
	assert.Equal(t, byte(0x00), raw[0x28])
}

func TestMapBankMissingFile(t *testing.T) {
	_, err := MapBank(filepath.Join(t.TempDir(), "nope"), 0, [NumPorts]int64{})
	assert.Error(t, err)
}
