package ai

import (
	"errors"
	"testing"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/config"

	"github.com/sony/gobreaker/v2"
)

func testBreakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      3,
		FailureThreshold: 0.6,
	}
}

func TestCircuitBreakerNaming(t *testing.T) {
	tests := []struct {
		name     string
		build    func() map[string]any
		expected string
	}{
		{
			name:     "generation breaker",
			build:    func() map[string]any { return NewCircuitBreaker[string]("primary", testBreakerConfig(), nil).Stats() },
			expected: "AI-primary",
		},
		{
			name:     "model breaker",
			build:    func() map[string]any { return NewModelCircuitBreaker[string]("primary", testBreakerConfig(), nil).Stats() },
			expected: "AI-Model-primary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := tt.build()
			if stats["name"] != tt.expected {
				t.Errorf("Expected circuit breaker name '%s', got '%v'", tt.expected, stats["name"])
			}
			if stats["state"] != "closed" {
				t.Errorf("Expected initial state 'closed', got '%v'", stats["state"])
			}
			if stats["enabled"] != true {
				t.Error("Expected circuit breaker to be enabled")
			}
		})
	}
}

func TestCircuitBreakerTripsAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker[string]("secondary", testBreakerConfig(), nil)
	failure := errors.New("upstream 503")

	for i := 0; i < 3; i++ {
		if _, err := cb.Execute(func() (string, error) { return "", failure }); !errors.Is(err, failure) {
			t.Fatalf("attempt %d: expected upstream error, got %v", i, err)
		}
	}

	if cb.IsHealthy() {
		t.Error("Expected breaker to be open after 3 failures")
	}

	called := false
	_, err := cb.Execute(func() (string, error) {
		called = true
		return "ok", nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected ErrOpenState, got %v", err)
	}
	if called {
		t.Error("Open breaker must not invoke the call")
	}

	providerErr := toProviderError("googleai", "chat", err)
	if providerErr.Code != "PROVIDER_UNAVAILABLE" {
		t.Errorf("Expected PROVIDER_UNAVAILABLE, got %s", providerErr.Code)
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	cfg := testBreakerConfig()
	cfg.Enabled = false

	cb := NewCircuitBreaker[int]("primary", cfg, nil)
	if cb != nil {
		t.Fatal("Expected nil breaker when disabled")
	}

	value, err := cb.Execute(func() (int, error) { return 42, nil })
	if err != nil || value != 42 {
		t.Errorf("Nil breaker should pass calls through, got %d, %v", value, err)
	}
	if !cb.IsHealthy() {
		t.Error("Nil breaker should report healthy")
	}
	if cb.Stats()["enabled"] != false {
		t.Error("Nil breaker stats should report disabled")
	}
}
