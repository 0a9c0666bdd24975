package commands

import (
	"context"
	"sync"
	"sync/atomic"
)

// background runs at most one job at a time under a context that Stop
// cancels. Stop returns only after the running job has finished, so the
// session a job uses can be closed right after it.
type background struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	busy   atomic.Bool
}

func newBackground(parent context.Context) *background {
	ctx, cancel := context.WithCancel(parent)
	return &background{ctx: ctx, cancel: cancel}
}

// Go starts fn unless a job is already running or Stop was called.
func (b *background) Go(fn func(ctx context.Context)) bool {
	if b.ctx.Err() != nil || !b.busy.CompareAndSwap(false, true) {
		return false
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer b.busy.Store(false)
		fn(b.ctx)
	}()
	return true
}

// Stop cancels the running job and waits for it.
func (b *background) Stop() {
	b.cancel()
	b.wg.Wait()
}
