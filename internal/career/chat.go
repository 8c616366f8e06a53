package career

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	"github.com/StealthPanther/ai-career-navigator/internal/pipeline"
	"github.com/StealthPanther/ai-career-navigator/internal/types"
)

const (
	historyFetchLimit = 10
	historyPromptSize = 5
	contextSkillLimit = 5

	noRoadmapContext = "No specific roadmap loaded - provide general career advice"
	noHistoryContext = "This is the start of the conversation"
)

// ChatRequest is one user message to the study assistant
type ChatRequest struct {
	UserID    string `json:"userId"`
	RoadmapID string `json:"roadmapId,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse is the assistant reply. Gated is set when the message was
// answered with the guidance text without calling a provider.
type ChatResponse struct {
	Reply string        `json:"reply"`
	Tier  pipeline.Tier `json:"tier"`
	Gated bool          `json:"gated"`
}

// Chat answers a message using the roadmap and recent history as context.
// It never writes; callers persist the turns.
func (s *Service) Chat(ctx context.Context, req ChatRequest) ChatResponse {
	message := strings.TrimSpace(req.Message)
	if !meaningfulMessage(message) {
		s.logger.Debug("Chat message gated", "user_id", req.UserID, "length", len(message))
		return ChatResponse{Reply: chatGuidance, Tier: pipeline.TierFallback, Gated: true}
	}

	data := struct {
		Context string
		History string
		Message string
	}{
		Context: s.roadmapContext(ctx, req),
		History: s.historyContext(ctx, req),
		Message: message,
	}

	sampling, useSystem := s.sampling(config.TaskChat)
	result := s.pipeline.RunText(ctx, pipeline.TextTask{
		Name:            config.TaskChat,
		Prompt:          s.prompt(config.TaskChat, data),
		Sampling:        sampling,
		UseSystemPrompt: useSystem,
		Fallback:        chatFallback,
	})

	s.logger.Info("Chat answered",
		"tier", result.Tier,
		"user_id", req.UserID,
		"roadmap_id", req.RoadmapID)
	return ChatResponse{Reply: result.Value, Tier: result.Tier}
}

// meaningfulMessage rejects messages shorter than two characters or without a letter
func meaningfulMessage(message string) bool {
	if len([]rune(message)) < 2 {
		return false
	}
	return strings.IndexFunc(message, unicode.IsLetter) >= 0
}

func (s *Service) roadmapContext(ctx context.Context, req ChatRequest) string {
	if req.RoadmapID == "" || s.roadmaps == nil {
		return noRoadmapContext
	}
	snapshot, err := s.roadmaps.RoadmapSnapshot(ctx, req.UserID, req.RoadmapID)
	if err != nil {
		s.logger.Warn("Roadmap unavailable for chat context",
			"roadmap_id", req.RoadmapID,
			"error", err.Error())
		return noRoadmapContext
	}
	if snapshot == nil {
		return noRoadmapContext
	}
	return FormatRoadmapContext(*snapshot)
}

// FormatRoadmapContext renders the roadmap block of the chat prompt
func FormatRoadmapContext(snap types.RoadmapSnapshot) string {
	skills := snap.SkillsToLearn[:min(len(snap.SkillsToLearn), contextSkillLimit)]
	return fmt.Sprintf("User's Target Role: %s\nCurrent Week: %d / %d\nJob Readiness Score: %g%%\nSkills to Learn: %s",
		snap.TargetRole,
		snap.CurrentWeek, snap.TotalWeeks,
		snap.JobReadinessScore,
		strings.Join(skills, ", "))
}

func (s *Service) historyContext(ctx context.Context, req ChatRequest) string {
	if s.history == nil {
		return noHistoryContext
	}
	turns, err := s.history.RecentTurns(ctx, req.UserID, req.RoadmapID, historyFetchLimit)
	if err != nil {
		s.logger.Warn("Chat history unavailable",
			"user_id", req.UserID,
			"error", err.Error())
		return noHistoryContext
	}
	if len(turns) == 0 {
		return noHistoryContext
	}
	return FormatHistory(turns[max(0, len(turns)-historyPromptSize):])
}

// FormatHistory renders turns as "role: message" lines
func FormatHistory(turns []types.ChatTurn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, t.Role+": "+t.Message)
	}
	return strings.Join(lines, "\n")
}
