package ai

import (
	"context"

	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
)

// PooledProvider offloads a blocking provider onto a WorkerPool
type PooledProvider struct {
	inner Provider
	pool  *WorkerPool
}

var _ Provider = (*PooledProvider)(nil)

// NewPooledProvider wraps inner so that every call takes a pool slot
func NewPooledProvider(inner Provider, pool *WorkerPool) *PooledProvider {
	return &PooledProvider{inner: inner, pool: pool}
}

// Name returns the wrapped provider's name
func (p *PooledProvider) Name() string { return p.inner.Name() }

// Pool exposes the pool for health and metrics reporting
func (p *PooledProvider) Pool() *WorkerPool { return p.pool }

// Complete runs the wrapped call on the pool
func (p *PooledProvider) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	completion, err := Run(ctx, p.pool, func() (Completion, error) {
		return p.inner.Complete(ctx, req)
	})
	if err != nil {
		if apperrors.IsProviderError(err) {
			return Completion{}, err
		}
		// ctx ended while waiting for a slot or for the result
		return Completion{}, toProviderError(p.Name(), req.Operation, err)
	}
	return completion, nil
}

// BreakerStats forwards to the wrapped provider when it reports them
func (p *PooledProvider) BreakerStats() map[string]any {
	stats := map[string]any{"pool": p.pool.Stats()}
	if reporter, ok := p.inner.(BreakerReporter); ok {
		stats["breaker"] = reporter.BreakerStats()
	}
	return stats
}

// Close closes the wrapped provider
func (p *PooledProvider) Close() error {
	return p.inner.Close()
}
