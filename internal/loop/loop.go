// Package loop runs animation playback until interrupted.
package loop

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/rs/zerolog/log"
)

// Runner is anything that plays until its context is done.
type Runner interface {
	Run(ctx context.Context) error
}

type Looper struct {
	runner Runner
	ctx    context.Context
	cancel context.CancelFunc
	wg     *sync.WaitGroup
	c      chan os.Signal
	err    error
}

func New(r Runner) *Looper {
	return &Looper{runner: r}
}

func (l *Looper) refresh() {
	defer l.wg.Done()
	err := l.runner.Run(l.ctx)
	// a done context, whether cancelled, timed out or interrupted, is a
	// normal stop
	if err != nil && l.ctx.Err() == nil {
		l.err = err
	}
	l.cancel()
}

func (l *Looper) watch() {
	select {
	case sig := <-l.c:
		log.Info().Stringer("signal", sig).Msg("aborting")
		l.cancel()
	case <-l.ctx.Done():
	}
}

// Start blocks until the runner returns, parent is cancelled or the process
// is interrupted.
func (l *Looper) Start(parent context.Context) error {
	l.ctx, l.cancel = context.WithCancel(parent)

	l.wg = &sync.WaitGroup{}
	l.wg.Add(1)

	l.c = make(chan os.Signal, 1)
	signal.Notify(l.c, os.Interrupt)
	defer func() {
		signal.Stop(l.c)
		l.cancel()
	}()

	go l.watch()
	go l.refresh()

	l.wg.Wait()
	return l.err
}

// Stop cancels a running Start.
func (l *Looper) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
}
