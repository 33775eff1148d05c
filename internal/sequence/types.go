package sequence

import (
	"errors"
	"fmt"
	"time"

	"github.com/coreman2200/funtimes-lightsink/model"
)

// PingPong is the Table flag bit selecting bounce playback instead of
// wrapping back to the first frame.
const PingPong uint8 = 1 << 0

var (
	ErrEmptyTable    = errors.New("sequence: table has no frames")
	ErrFrameSize     = errors.New("sequence: frame data is not a whole number of records")
	ErrDelayMismatch = errors.New("sequence: delay count does not match frame count")
)

// Table is a read-only animation: model.FrameSize bytes of packed output
// vector per frame, and one delay in milliseconds per frame.
type Table struct {
	Frames []byte
	Delays []uint16
	Flags  uint8
}

// NewTable packs frames and delays into a Table.
func NewTable(frames []model.Vector, delays []uint16, flags uint8) (Table, error) {
	t := Table{
		Frames: make([]byte, 0, len(frames)*model.FrameSize),
		Delays: append([]uint16(nil), delays...),
		Flags:  flags,
	}
	for _, f := range frames {
		t.Frames = append(t.Frames, model.PackFrame(f)...)
	}
	return t, t.Validate()
}

// Validate checks the frame and delay tables agree.
func (t Table) Validate() error {
	if len(t.Frames)%model.FrameSize != 0 {
		return fmt.Errorf("%w: %d bytes", ErrFrameSize, len(t.Frames))
	}
	n := t.Len()
	if n == 0 {
		return ErrEmptyTable
	}
	if len(t.Delays) != n {
		return fmt.Errorf("%w: %d frames, %d delays", ErrDelayMismatch, n, len(t.Delays))
	}
	return nil
}

// Len is the number of frames.
func (t Table) Len() int { return len(t.Frames) / model.FrameSize }

// Frame decodes frame i.
func (t Table) Frame(i int) model.Vector {
	off := i * model.FrameSize
	return model.Unpack(t.Frames[off : off+model.FrameSize])
}

// Delay is how long frame i stays up.
func (t Table) Delay(i int) time.Duration {
	return time.Duration(t.Delays[i]) * time.Millisecond
}

func (t Table) PingPong() bool { return t.Flags&PingPong != 0 }

// Sink is where frames are rendered.
type Sink interface {
	Set(v model.Vector)
}

// Direction is the way the Player's cursor moves.
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}
