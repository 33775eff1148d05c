// Package preview shows what the chains latched as a row of pixels, for
// running without hardware.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"periph.io/x/conn/v3/display"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/funtimes-lightsink/internal/port"
	"github.com/coreman2200/funtimes-lightsink/internal/sink"
	"github.com/coreman2200/funtimes-lightsink/model"
)

var (
	On  = color.NRGBA{R: 255, G: 180, B: 60, A: 255}
	Off = color.NRGBA{A: 255}
)

// Preview decodes frames captured by a port.Trace and draws them.
type Preview struct {
	trace  *port.Trace
	drawer display.Drawer
	by32   func() bool
	out    io.Writer
}

// New draws to the terminal.
func New(trace *port.Trace, by32 func() bool) *Preview {
	return NewWithDrawer(trace, by32, screen.New(model.Len))
}

func NewWithDrawer(trace *port.Trace, by32 func() bool, d display.Drawer) *Preview {
	return &Preview{trace: trace, drawer: d, by32: by32, out: os.Stdout}
}

// Image renders v one pixel per output.
func Image(v model.Vector) *image.NRGBA {
	im := image.NewNRGBA(image.Rect(0, 0, model.Len, 1))
	for x := 0; x < model.Len; x++ {
		c := Off
		if v.Bit(x) {
			c = On
		}
		im.SetNRGBA(x, 0, c)
	}
	return im
}

// Decode rebuilds the most recent frame from trace edges, taking the last
// edge of the frame to be the last edge captured, so a deferred frame must be
// finished before it decodes. ok is false if fewer edges
// than a start signature plus one frame were captured.
func Decode(edges []port.Edge, by32 bool) (v model.Vector, ok bool) {
	n := model.Len
	if by32 {
		n = sink.By32Width
	}
	if len(edges) < n+2 {
		return v, false
	}
	data := edges[len(edges)-n:]
	var s sink.Streams
	for _, e := range data {
		s.A = append(s.A, e.A)
		s.B = append(s.B, e.B)
	}
	return s.Vector(by32), true
}

// Show draws whatever has been shifted out since the last call.
func (p *Preview) Show() error {
	v, ok := Decode(p.trace.Take(), p.by32())
	if !ok {
		return nil
	}
	if err := p.drawer.Draw(p.drawer.Bounds(), Image(v), image.Point{}); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	fmt.Fprintf(p.out, "\n")
	return nil
}

func (p *Preview) Halt() error {
	return p.drawer.Halt()
}
