package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

// GeminiProvider is the primary tier. It supports JSON mode and is called inline.
type GeminiProvider struct {
	client       *genai.Client
	cfg          config.ProviderConfig
	breaker      *CircuitBreaker[*genai.GenerateContentResponse]
	modelBreaker *CircuitBreaker[*genai.Model]
	modelTimeout time.Duration
	logger       *apperrors.Logger
}

var (
	_ StructuredProvider = (*GeminiProvider)(nil)
	_ HealthReporter     = (*GeminiProvider)(nil)
)

// NewGeminiProvider creates the primary provider
func NewGeminiProvider(ctx context.Context, cfg config.ProviderConfig, modelTimeout time.Duration, logger *apperrors.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			"Failed to create Gemini client", err)
	}
	if modelTimeout <= 0 {
		modelTimeout = 10 * time.Second
	}

	return &GeminiProvider{
		client:       client,
		cfg:          cfg,
		breaker:      NewCircuitBreaker[*genai.GenerateContentResponse]("primary", cfg.CircuitBreaker, logger),
		modelBreaker: NewModelCircuitBreaker[*genai.Model]("primary", cfg.CircuitBreaker, logger),
		modelTimeout: modelTimeout,
		logger:       logger,
	}, nil
}

// Name returns the provider identifier used in errors and logs
func (g *GeminiProvider) Name() string { return "gemini" }

// Complete asks for free text
func (g *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	return g.generate(ctx, req, false)
}

// CompleteStructured asks for a JSON document
func (g *GeminiProvider) CompleteStructured(ctx context.Context, req CompletionRequest) (Completion, error) {
	return g.generate(ctx, req, true)
}

func (g *GeminiProvider) generate(ctx context.Context, req CompletionRequest, jsonMode bool) (Completion, error) {
	tracer := otel.Tracer("careernav.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+req.Operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", g.Name()),
		attribute.String("ai.model", g.cfg.Model),
		attribute.Float64("ai.temperature", float64(req.Sampling.Temperature)),
		attribute.Bool("ai.json_mode", jsonMode),
		attribute.Int("input.prompt_length", len(req.UserPrompt)),
	)

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	system, user := req.prompts()
	genaiConfig := &genai.GenerateContentConfig{}
	if jsonMode {
		genaiConfig.ResponseMIMEType = "application/json"
	}
	if req.Sampling.Temperature > 0 {
		temperature := req.Sampling.Temperature
		genaiConfig.Temperature = &temperature
	}
	if req.Sampling.MaxTokens > 0 {
		genaiConfig.MaxOutputTokens = req.Sampling.MaxTokens
	}
	if system != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	result, err := g.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(user), genaiConfig)
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return Completion{}, toProviderError(g.Name(), req.Operation, err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		span.SetAttributes(attribute.Bool("success", false))
		return Completion{}, emptyResponseError(g.Name(), req.Operation)
	}

	usage := extractTokenUsage(result)
	if usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))
	return Completion{Text: text, Usage: usage}, nil
}

// ModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) ModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{
		Name:     g.cfg.Model,
		Provider: g.Name(),
	}

	checkCtx, cancel := context.WithTimeout(ctx, g.modelTimeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.cfg.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.cfg.Model,
			"provider", g.Name(),
			"error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	info.Version = model.Version

	g.logger.Debug("Model availability check successful",
		"model", g.cfg.Model,
		"display_name", info.DisplayName,
		"version", info.Version)
	return info
}

// BreakerStats returns circuit breaker statistics
func (g *GeminiProvider) BreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    g.breaker.Stats(),
		"model_operations": g.modelBreaker.Stats(),
		"overall_healthy":  g.breaker.IsHealthy() && g.modelBreaker.IsHealthy(),
	}
}

// Close implements Provider. The genai client holds no connections to release.
func (g *GeminiProvider) Close() error {
	return nil
}

// extractTokenUsage extracts token usage information from a Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}
	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
