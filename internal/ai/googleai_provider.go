package ai

import (
	"context"
	"strings"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"

	googleai "github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"
)

// GoogleAIProvider is a secondary tier backed by the Google AI SDK.
// It answers in free text only and is meant to run behind a WorkerPool.
type GoogleAIProvider struct {
	client  *googleai.Client
	cfg     config.ProviderConfig
	breaker *CircuitBreaker[*googleai.GenerateContentResponse]
	logger  *apperrors.Logger
}

var _ Provider = (*GoogleAIProvider)(nil)

// NewGoogleAIProvider creates a Google AI secondary provider
func NewGoogleAIProvider(ctx context.Context, cfg config.ProviderConfig, logger *apperrors.Logger) (*GoogleAIProvider, error) {
	client, err := googleai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			"Failed to create Google AI client", err)
	}
	return &GoogleAIProvider{
		client:  client,
		cfg:     cfg,
		breaker: NewCircuitBreaker[*googleai.GenerateContentResponse]("secondary", cfg.CircuitBreaker, logger),
		logger:  logger,
	}, nil
}

// Name returns the provider identifier used in errors and logs
func (p *GoogleAIProvider) Name() string { return "googleai" }

// Complete performs a blocking free-text generation
func (p *GoogleAIProvider) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	ctx, span := otel.Tracer("careernav.ai.googleai").Start(ctx, "googleai."+req.Operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", p.Name()),
		attribute.String("ai.model", p.cfg.Model),
	)

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	system, user := req.prompts()
	model := p.client.GenerativeModel(p.cfg.Model)
	if req.Sampling.Temperature > 0 {
		model.SetTemperature(req.Sampling.Temperature)
	}
	if req.Sampling.MaxTokens > 0 {
		model.SetMaxOutputTokens(req.Sampling.MaxTokens)
	}
	if system != "" {
		model.SystemInstruction = &googleai.Content{Parts: []googleai.Part{googleai.Text(system)}}
	}

	resp, err := p.breaker.Execute(func() (*googleai.GenerateContentResponse, error) {
		return model.GenerateContent(ctx, googleai.Text(user))
	})
	if err != nil {
		span.RecordError(err)
		return Completion{}, toProviderError(p.Name(), req.Operation, err)
	}

	text := googleAIText(resp)
	if strings.TrimSpace(text) == "" {
		return Completion{}, emptyResponseError(p.Name(), req.Operation)
	}

	var usage *TokenUsage
	if resp.UsageMetadata != nil {
		usage = &TokenUsage{
			InputTokens:  int64(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int64(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return Completion{Text: text, Usage: usage}, nil
}

// BreakerStats returns circuit breaker statistics
func (p *GoogleAIProvider) BreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":   p.breaker.Stats(),
		"overall_healthy": p.breaker.IsHealthy(),
	}
}

// Close releases the underlying client
func (p *GoogleAIProvider) Close() error {
	return p.client.Close()
}

// googleAIText joins the text parts of the first candidate that has content
func googleAIText(resp *googleai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if text, ok := part.(googleai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}
