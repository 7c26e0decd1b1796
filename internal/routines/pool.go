// Package routines provides a pool of goroutines that run queued functions.
package routines

import (
	"context"
	"sync"
)

// Pool runs queued functions concurrently in a fixed number of goroutines.
type Pool struct {
	workCh    chan func()
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewPool creates a pool and starts workers goroutines.
func NewPool(workers int) *Pool {
	if workers < 1 {
		panic("routines: number of workers must be positive")
	}

	p := Pool{workCh: make(chan func())}

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}

	return &p
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for fn := range p.workCh {
		fn()
	}
}

// Queue schedules fn to be run by a worker. It blocks until a worker is
// available.
// Calling Queue after Wait panics.
func (p *Pool) Queue(fn func()) {
	p.workCh <- fn
}

// QueueCtx is like Queue but returns ctx.Err() when ctx is done before a
// worker became available. fn is not run in this case.
func (p *Pool) QueueCtx(ctx context.Context, fn func()) error {
	select {
	case p.workCh <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait stops accepting new work and waits until all queued functions
// returned.
func (p *Pool) Wait() {
	p.closeOnce.Do(func() {
		close(p.workCh)
	})

	p.wg.Wait()
}
