package ai

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	pool := NewWorkerPool(3)
	require.Equal(t, 3, pool.Capacity())

	var current, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Run(context.Background(), pool, func() (int, error) {
				n := current.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				current.Add(-1)
				return 1, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(3))
	assert.Equal(t, 0, pool.InFlight())
	assert.Equal(t, int64(12), pool.Stats()["completed"])
}

func TestWorkerPoolSizeFloor(t *testing.T) {
	assert.Equal(t, 1, NewWorkerPool(0).Capacity())
	assert.Equal(t, 1, NewWorkerPool(-4).Capacity())
}

func TestWorkerPoolCancelWhileWaiting(t *testing.T) {
	pool := NewWorkerPool(1)
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_, _ = Run(context.Background(), pool, func() (int, error) {
			close(started)
			<-release
			return 0, nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := Run(ctx, pool, func() (int, error) { return 1, nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, pool.InFlight())

	close(release)
	assert.Eventually(t, func() bool { return pool.InFlight() == 0 }, time.Second, 5*time.Millisecond)
}

type stubProvider struct {
	name  string
	text  string
	err   error
	delay time.Duration
	calls atomic.Int64
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Complete(ctx context.Context, _ CompletionRequest) (Completion, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Completion{}, ctx.Err()
		}
	}
	if s.err != nil {
		return Completion{}, s.err
	}
	return Completion{Text: s.text}, nil
}

func (s *stubProvider) Close() error { return nil }

func TestPooledProvider(t *testing.T) {
	t.Run("passes completion through", func(t *testing.T) {
		inner := &stubProvider{name: "googleai", text: "hello"}
		p := NewPooledProvider(inner, NewWorkerPool(2))

		out, err := p.Complete(context.Background(), CompletionRequest{Operation: "chat"})
		require.NoError(t, err)
		assert.Equal(t, "hello", out.Text)
		assert.Equal(t, "googleai", p.Name())
	})

	t.Run("context expiry becomes provider error", func(t *testing.T) {
		inner := &stubProvider{name: "vertex", delay: time.Second}
		p := NewPooledProvider(inner, NewWorkerPool(1))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := p.Complete(ctx, CompletionRequest{Operation: "roadmap"})
		require.Error(t, err)
		assert.True(t, apperrors.IsProviderError(err))
		assert.Equal(t, "vertex", apperrors.ProviderName(err))
	})

	t.Run("provider error is kept as is", func(t *testing.T) {
		original := apperrors.NewProviderError("googleai", apperrors.ErrCodeEmptyResponse, "empty", nil)
		p := NewPooledProvider(&stubProvider{name: "googleai", err: original}, NewWorkerPool(1))

		_, err := p.Complete(context.Background(), CompletionRequest{Operation: "chat"})
		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperrors.ErrCodeEmptyResponse, appErr.Code)
	})
}
