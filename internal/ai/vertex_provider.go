package ai

import (
	"context"
	"strings"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"

	vertex "cloud.google.com/go/vertexai/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// VertexProvider is a secondary tier backed by Vertex AI.
// Credentials come from Application Default Credentials.
type VertexProvider struct {
	client  *vertex.Client
	cfg     config.ProviderConfig
	breaker *CircuitBreaker[*vertex.GenerateContentResponse]
	logger  *apperrors.Logger
}

var _ Provider = (*VertexProvider)(nil)

// NewVertexProvider creates a Vertex AI secondary provider
func NewVertexProvider(ctx context.Context, cfg config.ProviderConfig, logger *apperrors.Logger) (*VertexProvider, error) {
	client, err := vertex.NewClient(ctx, cfg.Project, cfg.Location)
	if err != nil {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			"Failed to create Vertex AI client", err)
	}
	return &VertexProvider{
		client:  client,
		cfg:     cfg,
		breaker: NewCircuitBreaker[*vertex.GenerateContentResponse]("secondary", cfg.CircuitBreaker, logger),
		logger:  logger,
	}, nil
}

// Name returns the provider identifier used in errors and logs
func (p *VertexProvider) Name() string { return "vertex" }

// Complete performs a blocking free-text generation
func (p *VertexProvider) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	ctx, span := otel.Tracer("careernav.ai.vertex").Start(ctx, "vertex."+req.Operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", p.Name()),
		attribute.String("ai.model", p.cfg.Model),
		attribute.String("ai.location", p.cfg.Location),
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
		model.SystemInstruction = &vertex.Content{Parts: []vertex.Part{vertex.Text(system)}}
	}

	resp, err := p.breaker.Execute(func() (*vertex.GenerateContentResponse, error) {
		return model.GenerateContent(ctx, vertex.Text(user))
	})
	if err != nil {
		span.RecordError(err)
		return Completion{}, toProviderError(p.Name(), req.Operation, err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(vertex.Text); ok {
				sb.WriteString(string(text))
			}
		}
		if sb.Len() > 0 {
			break
		}
	}
	text := sb.String()
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
func (p *VertexProvider) BreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":   p.breaker.Stats(),
		"overall_healthy": p.breaker.IsHealthy(),
	}
}

// Close releases the underlying client
func (p *VertexProvider) Close() error {
	return p.client.Close()
}
