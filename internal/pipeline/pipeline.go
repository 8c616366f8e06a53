// Package pipeline runs a generation through the primary provider, the
// secondary provider and finally a static fallback. It never returns an error.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/ai"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/schemas"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Tier identifies which stage of the ladder produced a result
type Tier string

const (
	TierPrimary   Tier = "primary"
	TierSecondary Tier = "secondary"
	TierFallback  Tier = "fallback"
)

// Attempt records one failed or successful tier
type Attempt struct {
	Tier     Tier          `json:"tier"`
	Provider string        `json:"provider,omitempty"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Result is the value of a pipeline run and the tier that satisfied it
type Result[T any] struct {
	Value    T
	Tier     Tier
	Attempts []Attempt
	Usage    *ai.TokenUsage
}

// Degraded reports whether the value came from the static fallback
func (r Result[T]) Degraded() bool { return r.Tier == TierFallback }

// Prompt is the rendered system instruction and user prompt of a task
type Prompt struct {
	System string
	User   string
}

// Task describes a structured generation
type Task[T any] struct {
	Name            string // operation name for logs, spans and metrics
	Schema          string // schemas.* name the response must satisfy
	Prompt          Prompt
	Sampling        ai.Sampling
	UseSystemPrompt bool

	// Decode turns validated JSON into T. Defaults to json.Unmarshal.
	Decode func([]byte) (T, error)
	// Normalize fixes up a decoded value. Optional.
	Normalize func(T) T
	// Fallback builds the static result. It must be pure.
	Fallback func() T
}

// TextTask describes a free-text generation
type TextTask struct {
	Name            string
	Prompt          Prompt
	Sampling        ai.Sampling
	UseSystemPrompt bool
	Fallback        string
}

// Options tunes retries inside a tier
type Options struct {
	Retries    int
	MaxBackoff time.Duration
}

// Pipeline holds the two provider tiers
type Pipeline struct {
	primary   ai.StructuredProvider
	secondary ai.Provider
	opts      Options
	logger    *apperrors.Logger

	tierCounter  metric.Int64Counter
	tierDuration metric.Float64Histogram

	// sleep waits between retries; replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a pipeline. Either provider may be nil, in which case its tier is skipped.
func New(primary ai.StructuredProvider, secondary ai.Provider, opts Options, logger *apperrors.Logger) *Pipeline {
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 30 * time.Second
	}

	p := &Pipeline{
		primary:   primary,
		secondary: secondary,
		opts:      opts,
		logger:    logger,
		sleep:     sleepContext,
	}

	meter := otel.Meter("careernav.pipeline")
	var err error
	if p.tierCounter, err = meter.Int64Counter("careernav_pipeline_tier_total",
		metric.WithDescription("Pipeline results by satisfying tier")); err != nil {
		logger.LogError(err, "Failed to create pipeline tier counter")
	}
	if p.tierDuration, err = meter.Float64Histogram("careernav_pipeline_duration_seconds",
		metric.WithDescription("Pipeline run duration including fallbacks"),
		metric.WithUnit("s")); err != nil {
		logger.LogError(err, "Failed to create pipeline duration histogram")
	}
	return p
}

// Primary returns the primary provider
func (p *Pipeline) Primary() ai.StructuredProvider { return p.primary }

// Secondary returns the secondary provider
func (p *Pipeline) Secondary() ai.Provider { return p.secondary }

// RunStructured runs a structured task down the ladder. It always returns a value.
func RunStructured[T any](ctx context.Context, p *Pipeline, task Task[T]) Result[T] {
	start := time.Now()
	req := ai.CompletionRequest{
		Operation:       task.Name,
		SystemPrompt:    task.Prompt.System,
		UserPrompt:      task.Prompt.User,
		Sampling:        task.Sampling,
		UseSystemPrompt: task.UseSystemPrompt,
	}

	var result Result[T]
	tiers := []struct {
		tier     Tier
		provider ai.Provider
		call     func(context.Context) (ai.Completion, error)
	}{
		{TierPrimary, p.primary, func(ctx context.Context) (ai.Completion, error) {
			return p.primary.CompleteStructured(ctx, req)
		}},
		{TierSecondary, p.secondary, func(ctx context.Context) (ai.Completion, error) {
			return p.secondary.Complete(ctx, req)
		}},
	}

	for _, t := range tiers {
		if t.provider == nil {
			continue
		}
		tierStart := time.Now()
		completion, err := p.callWithRetry(ctx, t.tier, task.Name, t.call)
		var value T
		if err == nil {
			value, err = parse(task, completion.Text)
		}
		result.Attempts = append(result.Attempts, Attempt{
			Tier:     t.tier,
			Provider: t.provider.Name(),
			Err:      err,
			Duration: time.Since(tierStart),
		})
		if err != nil {
			p.logTierFailure(t.tier, task.Name, t.provider.Name(), err)
			continue
		}

		p.logger.Info("Tier succeeded",
			"tier", t.tier,
			"operation", task.Name,
			"provider", t.provider.Name())
		result.Value = value
		result.Tier = t.tier
		result.Usage = completion.Usage
		p.record(ctx, task.Name, t.tier, start)
		return result
	}

	p.logger.Warn("Falling back to static template", "operation", task.Name)
	result.Value = task.Fallback()
	result.Tier = TierFallback
	p.record(ctx, task.Name, TierFallback, start)
	return result
}

// RunText runs a free-text task down the ladder. It always returns text.
func (p *Pipeline) RunText(ctx context.Context, task TextTask) Result[string] {
	start := time.Now()
	req := ai.CompletionRequest{
		Operation:       task.Name,
		SystemPrompt:    task.Prompt.System,
		UserPrompt:      task.Prompt.User,
		Sampling:        task.Sampling,
		UseSystemPrompt: task.UseSystemPrompt,
	}

	var result Result[string]
	tiers := []struct {
		tier     Tier
		provider ai.Provider
	}{
		{TierPrimary, p.primary},
		{TierSecondary, p.secondary},
	}

	for _, t := range tiers {
		if t.provider == nil {
			continue
		}
		provider := t.provider
		tierStart := time.Now()
		completion, err := p.callWithRetry(ctx, t.tier, task.Name, func(ctx context.Context) (ai.Completion, error) {
			return provider.Complete(ctx, req)
		})
		text := strings.TrimSpace(completion.Text)
		if err == nil && text == "" {
			err = apperrors.NewProviderError(provider.Name(), apperrors.ErrCodeEmptyResponse,
				"provider returned blank text", nil)
		}
		result.Attempts = append(result.Attempts, Attempt{
			Tier:     t.tier,
			Provider: provider.Name(),
			Err:      err,
			Duration: time.Since(tierStart),
		})
		if err != nil {
			p.logTierFailure(t.tier, task.Name, provider.Name(), err)
			continue
		}

		p.logger.Info("Tier succeeded",
			"tier", t.tier,
			"operation", task.Name,
			"provider", provider.Name())
		result.Value = text
		result.Tier = t.tier
		result.Usage = completion.Usage
		p.record(ctx, task.Name, t.tier, start)
		return result
	}

	p.logger.Warn("Falling back to static template", "operation", task.Name)
	result.Value = task.Fallback
	result.Tier = TierFallback
	p.record(ctx, task.Name, TierFallback, start)
	return result
}

// parse turns raw provider text into a validated, normalized value
func parse[T any](task Task[T], text string) (T, error) {
	var zero T
	cleaned := []byte(schemas.CleanJSONBlock(text))

	if task.Schema != "" {
		if err := schemas.Validate(task.Schema, cleaned); err != nil {
			return zero, err
		}
	}

	decode := task.Decode
	if decode == nil {
		decode = func(raw []byte) (T, error) {
			var v T
			err := json.Unmarshal(raw, &v)
			return v, err
		}
	}
	value, err := decode(cleaned)
	if err != nil {
		if apperrors.IsShapeError(err) {
			return zero, err
		}
		return zero, apperrors.NewShapeError(apperrors.ErrCodeInvalidJSON,
			fmt.Sprintf("response for %s does not decode", task.Name), err)
	}

	if task.Normalize != nil {
		value = task.Normalize(value)
	}
	return value, nil
}

func (p *Pipeline) logTierFailure(tier Tier, operation, provider string, err error) {
	errType := "unknown"
	if appErr, ok := apperrors.As(err); ok {
		errType = string(appErr.Type)
	}
	p.logger.Warn("Tier failed",
		"tier", tier,
		"operation", operation,
		"provider", provider,
		"error_type", errType,
		"error", err.Error())
}

func (p *Pipeline) record(ctx context.Context, operation string, tier Tier, start time.Time) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("tier", string(tier)),
	)
	if p.tierCounter != nil {
		p.tierCounter.Add(ctx, 1, attrs)
	}
	if p.tierDuration != nil {
		p.tierDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}
