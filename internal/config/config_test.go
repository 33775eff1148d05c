package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-lightsink/internal/port"
	"github.com/coreman2200/funtimes-lightsink/internal/sink"
)

const sample = `
driver: mmap
pins:
  clock: 2
  chain_a: 3
  chain_b: 8
  brightness: 9
pwm_hz: 1000
fast: false
by32: true
pulse_ns: 4000
mmap:
  device: /dev/uio0
  offset: 0x1000
animation:
  ping_pong: true
  frames:
    - on: [0, 1]
      delay_ms: 100
    - on: [71]
      delay_ms: 200
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mmap", c.Driver)
	assert.Equal(t, sink.Pins{Clock: 2, ChainA: 3, ChainB: 8, Brightness: 9}, c.SinkPins())
	assert.Equal(t, 1000*physic.Hertz, c.PWMFrequency())
	assert.False(t, c.Fast)
	assert.True(t, c.By32)
	assert.Equal(t, 4*time.Microsecond, c.PulseWidth())
	assert.Equal(t, "/dev/uio0", c.MMap.Device)
	assert.Equal(t, int64(0x1000), c.MMap.Offset)
	// untouched keys keep their defaults
	assert.Equal(t, uint8(255), c.Brightness)
	assert.Equal(t, int64(0x2b), c.PortOffsets()[port.PortD])

	tab, err := c.Table()
	require.NoError(t, err)
	assert.Equal(t, 2, tab.Len())
	assert.True(t, tab.PingPong())
	assert.Equal(t, []int{0, 1}, tab.Frame(0).On())
	assert.Equal(t, 200*time.Millisecond, tab.Delay(1))
}

func TestDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, port.NoPin, c.SinkPins().Brightness)
	assert.Equal(t, sink.DefaultPWMFrequency, c.PWMFrequency())

	tab, err := c.Table()
	require.NoError(t, err)
	assert.Equal(t, 72, tab.Len())
	assert.False(t, tab.PingPong())
	assert.Equal(t, []int{71}, tab.Frame(71).On())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	c := Default()
	c.By32 = true
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pins: [1, 2"), 0644))
	_, err = Load(path)
	assert.Error(t, err)

	c := Default()
	c.Animation.Frames = []Frame{{On: []int{72}, DelayMS: 10}}
	_, err = c.Table()
	assert.Error(t, err)
}
