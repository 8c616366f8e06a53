package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
)

// UnavailableProvider stands in for a tier that has no credentials.
// Every call fails with a provider error so the pipeline moves on.
type UnavailableProvider struct {
	name   string
	reason string
}

var (
	_ StructuredProvider = (*UnavailableProvider)(nil)
	_ ModelReporter      = (*UnavailableProvider)(nil)
)

// NewUnavailableProvider creates a provider that always fails
func NewUnavailableProvider(name, reason string) *UnavailableProvider {
	return &UnavailableProvider{name: name, reason: reason}
}

func (u *UnavailableProvider) Name() string { return u.name }

func (u *UnavailableProvider) Complete(_ context.Context, req CompletionRequest) (Completion, error) {
	return Completion{}, apperrors.NewProviderError(u.name, apperrors.ErrCodeMissingAPIKey, u.reason, nil).
		WithContext("operation", req.Operation)
}

func (u *UnavailableProvider) CompleteStructured(ctx context.Context, req CompletionRequest) (Completion, error) {
	return u.Complete(ctx, req)
}

// ModelInfo reports the tier as unavailable with the configured reason
func (u *UnavailableProvider) ModelInfo(context.Context) *ModelInfo {
	return &ModelInfo{Name: u.name, Provider: u.name, Available: false, Error: u.reason}
}

func (u *UnavailableProvider) Close() error { return nil }

// NewPrimaryProvider creates the structured primary tier from configuration
func NewPrimaryProvider(ctx context.Context, cfg config.ProviderConfig, modelTimeout time.Duration, logger *apperrors.Logger) (StructuredProvider, error) {
	logger.Debug("Initializing primary AI provider",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"timeout", cfg.Timeout,
		"circuit_breaker", cfg.CircuitBreaker.Enabled)

	if !cfg.HasAPIKey() {
		logger.Warn("Primary AI provider has no API key, requests will use lower tiers", "provider", cfg.Provider)
		return NewUnavailableProvider(cfg.Provider, "primary provider API key is not configured"), nil
	}

	switch cfg.Provider {
	case "gemini":
		provider, err := NewGeminiProvider(ctx, cfg, modelTimeout, logger)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported primary AI provider: %s (must be 'gemini')", cfg.Provider), nil)
	}
}

// NewSecondaryProvider creates the free-text secondary tier and wraps it in the worker pool
func NewSecondaryProvider(ctx context.Context, cfg config.ProviderConfig, pool *WorkerPool, logger *apperrors.Logger) (Provider, error) {
	logger.Debug("Initializing secondary AI provider",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"timeout", cfg.Timeout,
		"pool_size", pool.Capacity())

	if !cfg.HasAPIKey() {
		logger.Warn("Secondary AI provider has no API key, requests will use the static fallback", "provider", cfg.Provider)
		return NewUnavailableProvider(cfg.Provider, "secondary provider API key is not configured"), nil
	}

	var inner Provider
	var err error
	switch cfg.Provider {
	case "googleai", "gemini":
		inner, err = NewGoogleAIProvider(ctx, cfg, logger)
	case "vertex":
		inner, err = NewVertexProvider(ctx, cfg, logger)
	default:
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported secondary AI provider: %s", cfg.Provider), nil)
	}
	if err != nil {
		return nil, err
	}
	return NewPooledProvider(inner, pool), nil
}
