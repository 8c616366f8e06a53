package ai

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// WorkerPool bounds the number of concurrent blocking provider calls
type WorkerPool struct {
	sem      *semaphore.Weighted
	capacity int64

	inFlight  atomic.Int64
	completed atomic.Int64
	abandoned atomic.Int64 // callers that gave up waiting or stopped waiting for a result
}

// NewWorkerPool creates a pool with the given capacity. Sizes below 1 become 1.
func NewWorkerPool(size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		sem:      semaphore.NewWeighted(int64(size)),
		capacity: int64(size),
	}
}

// Capacity returns the maximum number of concurrent calls
func (p *WorkerPool) Capacity() int { return int(p.capacity) }

// InFlight returns the number of calls currently holding a slot
func (p *WorkerPool) InFlight() int { return int(p.inFlight.Load()) }

// Stats returns pool counters for health reporting
func (p *WorkerPool) Stats() map[string]any {
	return map[string]any{
		"capacity":  p.capacity,
		"in_flight": p.inFlight.Load(),
		"completed": p.completed.Load(),
		"abandoned": p.abandoned.Load(),
	}
}

type poolResult[T any] struct {
	value T
	err   error
}

// Run executes fn on a pool slot. Waiting for a slot honors ctx.
// If ctx ends while fn runs, Run returns ctx.Err() and the slot is
// released only when fn actually returns.
func Run[T any](ctx context.Context, p *WorkerPool, fn func() (T, error)) (T, error) {
	var zero T
	if err := p.sem.Acquire(ctx, 1); err != nil {
		p.abandoned.Add(1)
		return zero, err
	}
	p.inFlight.Add(1)

	done := make(chan poolResult[T], 1)
	go func() {
		value, err := fn()
		// counters settle before the caller can observe the result
		p.inFlight.Add(-1)
		p.completed.Add(1)
		p.sem.Release(1)
		done <- poolResult[T]{value: value, err: err}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-ctx.Done():
		p.abandoned.Add(1)
		return zero, ctx.Err()
	}
}
