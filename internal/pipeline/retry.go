package pipeline

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/ai"
)

// callWithRetry calls one tier, retrying retryable provider errors up to opts.Retries times
func (p *Pipeline) callWithRetry(ctx context.Context, tier Tier, operation string, fn func(context.Context) (ai.Completion, error)) (ai.Completion, error) {
	var lastErr error

	for attempt := 0; attempt <= p.opts.Retries; attempt++ {
		if attempt > 0 {
			p.logger.Warn("Retrying tier",
				"tier", tier,
				"operation", operation,
				"attempt", attempt,
				"max_retries", p.opts.Retries,
				"error", lastErr.Error())

			if err := p.sleep(ctx, p.backoff(attempt)); err != nil {
				return ai.Completion{}, lastErr
			}
		}

		completion, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				p.logger.Info("Tier succeeded after retry",
					"tier", tier,
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return completion, nil
		}
		lastErr = err

		if !ai.IsRetryable(err) {
			break
		}
	}
	return ai.Completion{}, lastErr
}

// backoff is exponential with up to 10% jitter, capped at opts.MaxBackoff
func (p *Pipeline) backoff(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
	jitter := time.Duration(0)
	if jitterMax := int64(float64(baseDelay) * 0.1); jitterMax > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			jitter = time.Duration(n.Int64())
		}
	}
	return min(baseDelay+jitter, p.opts.MaxBackoff)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
