package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

type codedError struct{ code int }

func (e codedError) Error() string  { return fmt.Sprintf("http %d", e.code) }
func (e codedError) HTTPCode() int { return e.code }

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("bad request"), false},
		{"net op error", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"googleapi 429", &googleapi.Error{Code: 429}, true},
		{"googleapi 503", &googleapi.Error{Code: 503}, true},
		{"googleapi 400", &googleapi.Error{Code: 400}, false},
		{"gax style 502", codedError{code: 502}, true},
		{"gax style 401", codedError{code: 401}, false},
		{"open breaker", gobreaker.ErrOpenState, false},
		{"wrapped in provider error", toProviderError("gemini", "resume", &googleapi.Error{Code: 500}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestToProviderError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"timeout", fmt.Errorf("call: %w", context.DeadlineExceeded), apperrors.ErrCodeProviderTimeout},
		{"breaker", gobreaker.ErrTooManyRequests, apperrors.ErrCodeProviderUnavailable},
		{"other", errors.New("boom"), apperrors.ErrCodeProviderFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := toProviderError("gemini", "skillGap", tt.err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, "gemini", apperrors.ProviderName(err))
			assert.Equal(t, "skillGap", err.Context["operation"])
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestUnavailableProvider(t *testing.T) {
	p := NewUnavailableProvider("gemini", "no key")
	_, err := p.CompleteStructured(context.Background(), CompletionRequest{Operation: "resume"})
	assert.True(t, apperrors.IsProviderError(err))
	assert.False(t, IsRetryable(err))
}

func TestCompletionRequestPrompts(t *testing.T) {
	req := CompletionRequest{SystemPrompt: "sys", UserPrompt: "user", UseSystemPrompt: true}
	system, user := req.prompts()
	assert.Equal(t, "sys", system)
	assert.Equal(t, "user", user)

	req.UseSystemPrompt = false
	system, user = req.prompts()
	assert.Empty(t, system)
	assert.Equal(t, "sys\n\nuser", user)
}
