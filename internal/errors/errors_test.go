package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
)

func TestTaxonomyPredicates(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		provider bool
		shape    bool
		rejected bool
	}{
		{"provider", NewProviderError("gemini", ErrCodeProviderFailed, "boom", nil), true, false, false},
		{"shape", NewShapeError(ErrCodeInvalidJSON, "bad json", nil), false, true, false},
		{"rejected", NewInputRejected(ErrCodeResumeTooShort, "too short"), false, false, true},
		{"wrapped provider", fmt.Errorf("tier failed: %w", NewProviderError("vertex", ErrCodeProviderTimeout, "slow", nil)), true, false, false},
		{"plain", fmt.Errorf("plain"), false, false, false},
		{"nil", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsProviderError(tt.err); got != tt.provider {
				t.Errorf("IsProviderError() = %v, want %v", got, tt.provider)
			}
			if got := IsShapeError(tt.err); got != tt.shape {
				t.Errorf("IsShapeError() = %v, want %v", got, tt.shape)
			}
			if got := IsInputRejected(tt.err); got != tt.rejected {
				t.Errorf("IsInputRejected() = %v, want %v", got, tt.rejected)
			}
		})
	}
}

func TestProviderName(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewProviderError("googleai", ErrCodeProviderFailed, "x", nil))
	if got := ProviderName(err); got != "googleai" {
		t.Errorf("ProviderName() = %q, want googleai", got)
	}
	if got := ProviderName(NewShapeError(ErrCodeInvalidJSON, "x", nil)); got != "" {
		t.Errorf("ProviderName() on shape error = %q, want empty", got)
	}
}

func TestAppErrorMessage(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := NewProviderError("gemini", ErrCodeProviderFailed, "call failed", cause)

	want := "PROVIDER_FAILED: call failed (caused by: connection reset)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap() did not return the cause")
	}
}

func TestLogErrorUnpacksAppError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithHandler(slog.NewJSONHandler(&buf, nil))

	logger.LogError(NewShapeError(ErrCodeSchemaViolation, "missing field", nil).WithContext("field", "weekly_plan"), "tier failed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["error_type"] != "shape" {
		t.Errorf("error_type = %v, want shape", entry["error_type"])
	}
	if entry["field"] != "weekly_plan" {
		t.Errorf("field = %v, want weekly_plan", entry["field"])
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New("warn"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Info("ignored")
	logger.Warn("ignored")
	logger.LogError(fmt.Errorf("x"), "ignored")
	if logger.With("k", "v") != nil {
		t.Error("With on nil logger should return nil")
	}
}
