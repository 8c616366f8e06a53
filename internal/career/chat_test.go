package career

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/StealthPanther/ai-career-navigator/internal/ai"
	"github.com/StealthPanther/ai-career-navigator/internal/config"
	"github.com/StealthPanther/ai-career-navigator/internal/pipeline"
	"github.com/StealthPanther/ai-career-navigator/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoadmaps struct {
	snapshot *types.RoadmapSnapshot
	err      error
}

func (f fakeRoadmaps) RoadmapSnapshot(context.Context, string, string) (*types.RoadmapSnapshot, error) {
	return f.snapshot, f.err
}

type fakeHistory struct {
	turns     []types.ChatTurn
	err       error
	lastLimit int
}

func (f *fakeHistory) RecentTurns(_ context.Context, _, _ string, limit int) ([]types.ChatTurn, error) {
	f.lastLimit = limit
	return f.turns, f.err
}

func newChatService(primary ai.StructuredProvider, roadmaps RoadmapReader, history HistoryReader) *Service {
	logger := quietLogger()
	return NewService(Deps{
		Pipeline: pipeline.New(primary, nil, pipeline.Options{}, logger),
		Config:   config.Default(),
		Roadmaps: roadmaps,
		History:  history,
		Logger:   logger,
	})
}

func TestChatGate(t *testing.T) {
	for _, message := range []string{"", "1", "   ", "!!!", "42?", " a ", "🙂🙂"} {
		t.Run(fmt.Sprintf("%q", message), func(t *testing.T) {
			primary := replying("should not be called")
			svc := newChatService(primary, nil, nil)

			resp := svc.Chat(context.Background(), ChatRequest{UserID: "u1", Message: message})
			assert.True(t, resp.Gated)
			assert.Equal(t, chatGuidance, resp.Reply)
			assert.Equal(t, 0, primary.calls())
		})
	}
}

func TestChatAssemblesContext(t *testing.T) {
	primary := replying("  Start with week 2: containers.  ")
	history := &fakeHistory{}
	for i := 1; i <= 8; i++ {
		role := types.RoleUser
		if i%2 == 0 {
			role = types.RoleAssistant
		}
		history.turns = append(history.turns, types.ChatTurn{Role: role, Message: fmt.Sprintf("turn %d", i)})
	}
	roadmaps := fakeRoadmaps{snapshot: &types.RoadmapSnapshot{
		TargetRole:        "DevOps Engineer",
		CurrentWeek:       2,
		TotalWeeks:        12,
		JobReadinessScore: 45.5,
		SkillsToLearn:     []string{"Docker", "Kubernetes", "Terraform", "AWS", "CI/CD", "Helm"},
	}}
	svc := newChatService(primary, roadmaps, history)

	resp := svc.Chat(context.Background(), ChatRequest{UserID: "u1", RoadmapID: "r1", Message: "What next?"})

	assert.False(t, resp.Gated)
	assert.Equal(t, pipeline.TierPrimary, resp.Tier)
	assert.Equal(t, "Start with week 2: containers.", resp.Reply)
	assert.Equal(t, 10, history.lastLimit)

	require.Len(t, primary.requests, 1)
	req := primary.requests[0]
	prompt := req.UserPrompt
	assert.Contains(t, prompt, "User's Target Role: DevOps Engineer\nCurrent Week: 2 / 12\nJob Readiness Score: 45.5%\nSkills to Learn: Docker, Kubernetes, Terraform, AWS, CI/CD\n")
	assert.NotContains(t, prompt, "Helm")
	assert.Contains(t, prompt, "CONVERSATION HISTORY:\nassistant: turn 4\nuser: turn 5\nassistant: turn 6\nuser: turn 7\nassistant: turn 8\n")
	assert.NotContains(t, prompt, "turn 3")
	assert.Contains(t, prompt, "USER QUESTION: What next?")
	assert.Equal(t, float32(0.7), req.Sampling.Temperature)
	assert.Equal(t, int32(200), req.Sampling.MaxTokens)
}

func TestChatDegradedContext(t *testing.T) {
	tests := []struct {
		name      string
		roadmapID string
		roadmaps  RoadmapReader
		history   HistoryReader
	}{
		{"no roadmap id", "", fakeRoadmaps{snapshot: &types.RoadmapSnapshot{TargetRole: "SRE"}}, &fakeHistory{}},
		{"readers fail", "r1", fakeRoadmaps{err: errors.New("db down")}, &fakeHistory{err: errors.New("db down")}},
		{"no readers", "r1", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := replying("Sure.")
			svc := newChatService(primary, tt.roadmaps, tt.history)

			resp := svc.Chat(context.Background(), ChatRequest{UserID: "u1", RoadmapID: tt.roadmapID, Message: "How do I start?"})
			assert.Equal(t, "Sure.", resp.Reply)
			prompt := primary.requests[0].UserPrompt
			assert.Contains(t, prompt, noRoadmapContext)
			assert.Contains(t, prompt, noHistoryContext)
		})
	}
}

func TestChatFallback(t *testing.T) {
	svc := newChatService(failing("gemini"), nil, nil)
	resp := svc.Chat(context.Background(), ChatRequest{UserID: "u1", Message: "How do I learn Go?"})
	assert.Equal(t, pipeline.TierFallback, resp.Tier)
	assert.Equal(t, chatFallback, resp.Reply)
	assert.False(t, resp.Gated)
}
