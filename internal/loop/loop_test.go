package loop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-lightsink/internal/sequence"
	"github.com/coreman2200/funtimes-lightsink/model"
)

type runFunc func(ctx context.Context) error

func (f runFunc) Run(ctx context.Context) error { return f(ctx) }

func TestStartReturnsRunnerError(t *testing.T) {
	boom := errors.New("boom")
	l := New(runFunc(func(context.Context) error { return boom }))
	assert.Equal(t, boom, l.Start(context.Background()))
}

func TestStartStopsOnParentCancel(t *testing.T) {
	block := runFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NoError(t, New(block).Start(ctx))

	ctx, cancel = context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)
	assert.NoError(t, New(block).Start(ctx))
}

type countSink struct{ n int }

func (s *countSink) Set(model.Vector) { s.n++ }

func TestStopHaltsPlayer(t *testing.T) {
	tab, err := sequence.NewTable([]model.Vector{model.NewVector(0), model.NewVector(1)}, []uint16{1, 1}, 0)
	require.NoError(t, err)
	s := &countSink{}
	var l *Looper
	p, err := sequence.NewPlayer(s, tab, sequence.WithShown(func(int) {
		if s.n == 3 {
			l.Stop()
		}
	}))
	require.NoError(t, err)

	l = New(p)
	assert.NoError(t, l.Start(context.Background()))
	assert.Equal(t, 3, s.n)
}
