package ai

import (
	"context"
	"strings"
)

// Provider is a model backend that answers in free text.
// Implementations never retry; a failed call returns a provider AppError.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
	Close() error
}

// StructuredProvider can also be asked for a JSON document
type StructuredProvider interface {
	Provider
	CompleteStructured(ctx context.Context, req CompletionRequest) (Completion, error)
}

// ModelReporter is implemented by providers that can describe their model
type ModelReporter interface {
	ModelInfo(ctx context.Context) *ModelInfo
}

// BreakerReporter is implemented by providers guarded by a circuit breaker
type BreakerReporter interface {
	BreakerStats() map[string]any
}

// HealthReporter is implemented by providers that expose model and breaker state
type HealthReporter interface {
	ModelReporter
	BreakerReporter
}

// Sampling controls randomness and length of a generation
type Sampling struct {
	Temperature float32
	MaxTokens   int32
}

// CompletionRequest is a single model call
type CompletionRequest struct {
	Operation    string // task name, used for spans and logs
	SystemPrompt string
	UserPrompt   string
	Sampling     Sampling

	// When false the system prompt is folded into the user prompt
	UseSystemPrompt bool
}

// prompts returns the system instruction and user text actually sent
func (r CompletionRequest) prompts() (system, user string) {
	if r.UseSystemPrompt || strings.TrimSpace(r.SystemPrompt) == "" {
		return r.SystemPrompt, r.UserPrompt
	}
	return "", r.SystemPrompt + "\n\n" + r.UserPrompt
}

// Completion is the raw text a provider produced
type Completion struct {
	Text  string
	Usage *TokenUsage
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
