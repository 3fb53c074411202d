// File: internal/infra/worker/group.go
package worker

import (
	"context"
	"sync"
	"sync/atomic"
)

// Group tracks fire-and-forget job goroutines so shutdown can drain them.
// There is no mid-flight cancellation: a spawned job always runs to its
// terminal status, and Drain only bounds how long the process waits for
// that to happen.
type Group struct {
	wg       sync.WaitGroup
	inFlight atomic.Int64
	closed   atomic.Bool
}

func NewGroup() *Group {
	return &Group{}
}

// Go runs fn on its own goroutine. After Drain has been called new work is
// dropped; the HTTP layer has stopped accepting submissions by then.
func (g *Group) Go(fn func()) {
	if g.closed.Load() {
		return
	}
	g.wg.Add(1)
	g.inFlight.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.inFlight.Add(-1)
		fn()
	}()
}

// InFlight reports the number of currently running jobs.
func (g *Group) InFlight() int64 { return g.inFlight.Load() }

// Drain stops accepting new work and waits for running jobs until ctx
// expires. It returns ctx.Err() when jobs were still in flight at the
// deadline.
func (g *Group) Drain(ctx context.Context) error {
	g.closed.Store(true)
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
