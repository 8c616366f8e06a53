package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/StealthPanther/ai-career-navigator/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledManagerIsInert(t *testing.T) {
	cfg := config.Default()
	cfg.Observability.Enabled = false

	om, err := NewObservabilityManager(GetObservabilityConfig(cfg, "1.2.3"), cfg)
	require.NoError(t, err)

	for name, m := range map[string]*ObservabilityManager{"disabled": om, "nil": nil} {
		t.Run(name, func(t *testing.T) {
			taskErr := errors.New("boom")
			calls := 0
			err := m.GetMetrics().TrackTask(context.Background(), "roadmap", func(context.Context) *TaskResult {
				calls++
				return &TaskResult{Tier: "fallback", Error: taskErr}
			}, m)
			assert.ErrorIs(t, err, taskErr)
			assert.Equal(t, 1, calls)

			m.GetMetrics().RecordBusinessMetric(context.Background(), "roadmap_generated", true, m)

			handler := m.HTTPMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusTeapot, rec.Code)

			_, span := m.Tracer("test").Start(context.Background(), "noop")
			assert.False(t, span.SpanContext().IsValid())
			span.End()

			assert.NoError(t, m.RegisterPoolGauge(nil))
			assert.NoError(t, m.Shutdown(context.Background()))
		})
	}
}

func TestGetObservabilityConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Observability.ServiceVersion = ""

	got := GetObservabilityConfig(cfg, "1.2.3")
	assert.Equal(t, "1.2.3", got.ServiceVersion)
	assert.Equal(t, cfg.Observability.ServiceName, got.ServiceName)

	cfg.Observability.ServiceVersion = "9.9.9"
	assert.Equal(t, "9.9.9", GetObservabilityConfig(cfg, "1.2.3").ServiceVersion)

	fallback := GetObservabilityConfig(nil, "0.1.0")
	assert.Equal(t, "careernav", fallback.ServiceName)
	assert.Equal(t, "0.1.0", fallback.ServiceVersion)
}
