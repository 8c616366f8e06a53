package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/ai"
	"github.com/StealthPanther/ai-career-navigator/internal/career"
	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/pipeline"
	"github.com/StealthPanther/ai-career-navigator/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testResume = "Ada Lovelace, ada@example.com. Senior engineer with Go, Python and Kubernetes experience."

// failingProvider fails every call like an unreachable backend
type failingProvider struct{ name string }

func (p failingProvider) Name() string { return p.name }

func (p failingProvider) Complete(context.Context, ai.CompletionRequest) (ai.Completion, error) {
	return ai.Completion{}, apperrors.NewProviderError(p.name, apperrors.ErrCodeProviderUnavailable, "backend down", nil)
}

func (p failingProvider) CompleteStructured(ctx context.Context, req ai.CompletionRequest) (ai.Completion, error) {
	return p.Complete(ctx, req)
}

func (p failingProvider) Close() error { return nil }

// replyingProvider answers every call with the same text
type replyingProvider struct{ text string }

func (p replyingProvider) Name() string { return "gemini" }

func (p replyingProvider) Complete(context.Context, ai.CompletionRequest) (ai.Completion, error) {
	return ai.Completion{Text: p.text}, nil
}

func (p replyingProvider) CompleteStructured(ctx context.Context, req ai.CompletionRequest) (ai.Completion, error) {
	return p.Complete(ctx, req)
}

func (p replyingProvider) Close() error { return nil }

type testServer struct {
	*Server
	store *store.MemoryStore
}

func newTestServer(t *testing.T, mutate func(*ServerConfig)) testServer {
	t.Helper()
	return newTestServerWith(t, failingProvider{"gemini"}, mutate)
}

func newTestServerWith(t *testing.T, primary ai.StructuredProvider, mutate func(*ServerConfig)) testServer {
	t.Helper()
	logger := apperrors.NewWithHandler(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Default()
	mem := store.NewMemoryStore()

	p := pipeline.New(primary, nil, pipeline.Options{}, logger)
	svc := career.NewService(career.Deps{
		Pipeline: p,
		Config:   cfg,
		Roadmaps: mem,
		History:  mem,
		Logger:   logger,
	})

	sc := ServerConfig{Host: "127.0.0.1", Port: "0", Version: "test", MaxRequestSize: 1 << 20}
	if mutate != nil {
		mutate(&sc)
	}
	srv := NewServer(cfg, sc, Deps{Service: svc, Store: mem, Pool: ai.NewWorkerPool(3)}, logger)
	srv.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(srv.cleanup)
	return testServer{Server: srv, store: mem}
}

func (ts testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAuthMiddleware(t *testing.T) {
	ts := newTestServer(t, func(sc *ServerConfig) { sc.APIKeys = []string{"secret-key-123"} })

	tests := []struct {
		name    string
		headers []string
		status  int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", []string{"X-API-Key", "nope"}, http.StatusUnauthorized},
		{"header key", []string{"X-API-Key", "secret-key-123"}, http.StatusNotFound},
		{"bearer token", []string{"Authorization", "Bearer secret-key-123"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, "/resume/ada", nil, tt.headers...)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	t.Run("health stays public", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rotated keys take effect", func(t *testing.T) {
		ts.reloadAPIKeys([]string{"rotated-key-456"}, nil)
		assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/resume/ada", nil, "X-API-Key", "secret-key-123").Code)
		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/resume/ada", nil, "X-API-Key", "rotated-key-456").Code)

		ts.reloadAPIKeys(nil, assert.AnError)
		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/resume/ada", nil, "X-API-Key", "rotated-key-456").Code)
	})
}

func TestRequestValidation(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{"missing user", "/resume/parse", map[string]string{"text": testResume}, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest},
		{"short resume", "/resume/parse", map[string]string{"userId": "ada", "text": "hi"}, http.StatusBadRequest, apperrors.ErrCodeResumeTooShort},
		{"bad difficulty", "/interview/generate", map[string]any{"userId": "ada", "targetRole": "SRE", "difficulty": "extreme"}, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest},
		{"negative count", "/interview/generate", map[string]any{"userId": "ada", "targetRole": "SRE", "questionCount": -1}, http.StatusBadRequest, apperrors.ErrCodeInvalidCount},
		{"too many weeks", "/roadmap/generate", map[string]any{"userId": "ada", "targetRole": "SRE", "missingSkills": []string{"Go"}, "weeks": 500}, http.StatusBadRequest, apperrors.ErrCodeInvalidWeekCount},
		{"roadmap without analysis", "/roadmap/generate", map[string]any{"userId": "ada", "targetRole": "SRE"}, http.StatusNotFound, apperrors.ErrCodeNotFound},
		{"skills without resume", "/skills/analyze", map[string]any{"userId": "ada", "targetRole": "SRE"}, http.StatusNotFound, apperrors.ErrCodeNotFound},
		{"submit unknown session", "/interview/" + "00000000-0000-0000-0000-000000000000" + "/submit", map[string]any{"answers": []map[string]string{{"question": "Why?", "answer": "Because"}}}, http.StatusNotFound, apperrors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Code)
		})
	}

	t.Run("content type is required", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(`{"userId":"ada"}`))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		ts.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("body size is limited", func(t *testing.T) {
		small := newTestServer(t, func(sc *ServerConfig) { sc.MaxRequestSize = 64 })
		rec := small.do(t, http.MethodPost, "/resume/parse", map[string]string{"userId": "ada", "text": testResume})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[ErrorResponse](t, rec).Message, "too large")
	})
}

func TestProviderOutageDegradesInsteadOfFailing(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/resume/parse", map[string]string{"userId": "ada", "filename": "cv.pdf", "text": testResume})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	parsed := decode[map[string]any](t, rec)
	assert.Equal(t, "fallback", parsed["tier"])
	assert.Equal(t, true, parsed["degraded"])
	assert.NotEmpty(t, parsed["resumeId"])

	rec = ts.do(t, http.MethodPost, "/skills/analyze", map[string]any{"userId": "ada", "targetRole": "DevOps Engineer", "currentSkills": []string{"Python", "Git"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	analysis := decode[map[string]any](t, rec)
	assert.Equal(t, 20.0, analysis["jobReadinessScore"])

	rec = ts.do(t, http.MethodPost, "/roadmap/generate", map[string]any{"userId": "ada", "targetRole": "DevOps Engineer", "weeks": 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	roadmap := decode[struct {
		RoadmapID string              `json:"roadmapId"`
		Roadmap   store.StoredRoadmap `json:"roadmap"`
	}](t, rec)
	assert.Equal(t, 4, roadmap.Roadmap.TotalWeeks)
	assert.Equal(t, 20.0, roadmap.Roadmap.JobReadinessScore)
	assert.Equal(t, []string{"AWS", "Kubernetes", "System Design"}, roadmap.Roadmap.SkillsToLearn)
	assert.True(t, roadmap.Roadmap.IsActive)

	rec = ts.do(t, http.MethodGet, "/dashboard/ada", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dashboard := decode[map[string]any](t, rec)
	assert.NotNil(t, dashboard["resume"])
	assert.NotNil(t, dashboard["skillAnalysis"])
	assert.NotNil(t, dashboard["roadmap"])

	rec = ts.do(t, http.MethodGet, "/roadmap/ada/export.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "devops-engineer.xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestDashboardForNewUser(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodGet, "/dashboard/nobody", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dashboard := decode[map[string]any](t, rec)
	assert.Nil(t, dashboard["resume"])
	assert.Nil(t, dashboard["skillAnalysis"])
	assert.Nil(t, dashboard["roadmap"])
}

func TestInterviewSessionLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/interview/generate", map[string]any{"userId": "ada", "targetRole": "Backend Engineer", "questionCount": 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	generated := decode[struct {
		SessionID  string `json:"sessionId"`
		Difficulty string `json:"difficulty"`
		Questions  []struct {
			Question string `json:"question"`
			Category string `json:"category"`
		} `json:"questions"`
	}](t, rec)
	require.Len(t, generated.Questions, 3)
	assert.Equal(t, career.DefaultDifficulty, generated.Difficulty)

	answers := []map[string]string{{
		"question": generated.Questions[0].Question,
		"answer":   "I would start by measuring, then profile the hot path and cache the expensive lookups.",
	}}
	rec = ts.do(t, http.MethodPost, "/interview/"+generated.SessionID+"/submit", map[string]any{"answers": answers})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	submitted := decode[map[string]any](t, rec)
	assert.Equal(t, 3.0, submitted["totalQuestions"])

	rec = ts.do(t, http.MethodGet, "/interview/"+generated.SessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode[store.InterviewSession](t, rec)
	assert.Equal(t, store.SessionCompleted, session.Status)
	require.NotNil(t, session.Questions[0].Evaluation)
	assert.Nil(t, session.Questions[1].Evaluation)

	rec = ts.do(t, http.MethodPost, "/interview/"+generated.SessionID+"/submit", map[string]any{"answers": answers})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/interview/ada/history?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[struct {
		Sessions []store.InterviewSession `json:"sessions"`
	}](t, rec)
	assert.Len(t, history.Sessions, 1)
}

func TestEvaluateWithoutProviders(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodPost, "/interview/evaluate", map[string]string{"question": "What is a goroutine?", "answer": "idk"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "fallback", body["tier"])
	assert.Contains(t, body, "evaluation")
}

func TestChatPersistsTurns(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/chat", map[string]string{"userId": "ada", "message": "How should I study Kubernetes?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reply := decode[map[string]any](t, rec)
	assert.NotEmpty(t, reply["response"])
	assert.Equal(t, false, reply["gated"])

	rec = ts.do(t, http.MethodPost, "/chat", map[string]string{"userId": "ada", "message": "?"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["gated"])

	rec = ts.do(t, http.MethodGet, "/chat/ada/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[struct {
		History []map[string]any `json:"history"`
	}](t, rec)
	require.Len(t, history.History, 4)
	assert.Equal(t, "user", history.History[0]["role"])
	assert.Equal(t, "assistant", history.History[1]["role"])

	rec = ts.do(t, http.MethodDelete, "/chat/ada/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4.0, decode[map[string]any](t, rec)["removed"])

	turns, err := ts.store.RecentTurns(context.Background(), "ada", "", 0)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestRateLimitMiddleware(t *testing.T) {
	ts := newTestServer(t, func(sc *ServerConfig) {
		sc.RateLimit = &config.RateLimitConfig{Enabled: true, RequestsPerMin: 1, BurstCapacity: 1, ByIP: true}
	})

	first := ts.do(t, http.MethodGet, "/dashboard/ada", nil)
	assert.Equal(t, http.StatusOK, first.Code)
	second := ts.do(t, http.MethodGet, "/dashboard/ada", nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	assert.Equal(t, 1, ts.RateLimiter.GetStats()["active_limiters"])
}

func TestHealthAndStats(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]any](t, rec)
	assert.Equal(t, "careernav", health["service"])
	assert.Contains(t, health, "worker_pool")
	assert.Contains(t, health["ai_models"], "primary")

	rec = ts.do(t, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	assert.Equal(t, map[string]any{"enabled": false}, stats["rate_limiting"])
	assert.Contains(t, stats, "store")
}

func TestWriteAppErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"input rejected", apperrors.NewInputRejected(apperrors.ErrCodeMissingField, "x"), http.StatusBadRequest},
		{"validation", apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest, "x", nil), http.StatusBadRequest},
		{"not found", apperrors.NewStoreError(apperrors.ErrCodeNotFound, "x", nil), http.StatusNotFound},
		{"store failure", apperrors.NewStoreError(apperrors.ErrCodeStoreFailed, "x", nil), http.StatusInternalServerError},
		{"plain error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeAppError(rec, tt.err)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "abcdefgh****", maskAPIKey("abcdefghijkl"))
}

func TestRoadmapKeepsRequestedWeekCount(t *testing.T) {
	ts := newTestServerWith(t, replyingProvider{text: `{"weekly_plan":[
		{"week":1,"topic":"Containers"},
		{"week":2,"topic":"Kubernetes"}]}`}, nil)

	rec := ts.do(t, http.MethodPost, "/roadmap/generate", map[string]any{
		"userId": "ada", "targetRole": "SRE", "missingSkills": []string{"Kubernetes"}, "weeks": 6})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	roadmap := decode[struct {
		Roadmap store.StoredRoadmap `json:"roadmap"`
	}](t, rec)
	assert.Equal(t, 6, roadmap.Roadmap.TotalWeeks)
	assert.Len(t, roadmap.Roadmap.Roadmap.WeeklyPlan, 2)
}
