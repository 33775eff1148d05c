package sequence

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Player walks a Table, rendering one frame per Next.
type Player struct {
	sink Sink
	tab  Table

	frame int
	dir   Direction

	wait  func(ctx context.Context, d time.Duration) error
	shown func(frame int)
	log   zerolog.Logger
}

type Option func(*Player)

// WithWait replaces the per-frame hold. The default sleeps, returning early
// if ctx is done.
func WithWait(f func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Player) { p.wait = f }
}

// WithShown registers f to be called after each frame is rendered.
func WithShown(f func(frame int)) Option {
	return func(p *Player) { p.shown = f }
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Player) { p.log = l }
}

// NewPlayer constructs a Player at frame 0 moving forward.
func NewPlayer(s Sink, t Table, opts ...Option) (*Player, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	p := &Player{
		sink: s,
		tab:  t,
		dir:  Forward,
		wait: sleep,
		log:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Frame returns the frame the next call to Next renders.
func (p *Player) Frame() int { return p.frame }

// Direction returns the way the cursor currently moves.
func (p *Player) Direction() Direction { return p.dir }

// Table returns the animation being played.
func (p *Player) Table() Table { return p.tab }

// Next renders the current frame, holds it for its delay and moves on. A
// failed wait is logged and the cursor still advances.
func (p *Player) Next() {
	if err := p.next(context.Background()); err != nil {
		p.log.Debug().Err(err).Int("frame", p.frame).Msg("wait")
	}
}

func (p *Player) next(ctx context.Context) error {
	p.sink.Set(p.tab.Frame(p.frame))
	if p.shown != nil {
		p.shown(p.frame)
	}
	p.log.Debug().Int("frame", p.frame).Stringer("dir", p.dir).Msg("frame")
	err := p.wait(ctx, p.tab.Delay(p.frame))
	p.advance()
	return err
}

func (p *Player) advance() {
	n := p.tab.Len()
	if n == 1 {
		p.frame = 0
		return
	}
	p.frame += int(p.dir)
	switch {
	case p.frame >= n:
		if p.tab.PingPong() {
			p.dir = Backward
			p.frame = n - 2
		} else {
			p.frame = 0
		}
	case p.frame < 0:
		if p.tab.PingPong() {
			p.dir = Forward
			p.frame = 1
		} else {
			p.frame = n - 1
		}
	}
}

// Run plays frames until ctx is cancelled.
func (p *Player) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.next(ctx); err != nil {
			return err
		}
	}
}
