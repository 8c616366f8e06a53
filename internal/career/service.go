// Package career implements the task generators and the chat context
// assembler on top of the completion pipeline.
package career

import (
	"context"

	"github.com/StealthPanther/ai-career-navigator/internal/ai"
	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/pipeline"
	"github.com/StealthPanther/ai-career-navigator/internal/types"
)

// RoadmapReader loads the roadmap a chat conversation is grounded on
type RoadmapReader interface {
	RoadmapSnapshot(ctx context.Context, userID, roadmapID string) (*types.RoadmapSnapshot, error)
}

// HistoryReader loads recent chat turns in chronological order
type HistoryReader interface {
	RecentTurns(ctx context.Context, userID, roadmapID string, limit int) ([]types.ChatTurn, error)
}

// Deps are the collaborators of a Service. Pipeline and Config are required.
type Deps struct {
	Pipeline *pipeline.Pipeline
	Config   *config.Config
	Prompts  *config.PromptStore
	Roadmaps RoadmapReader
	History  HistoryReader
	Logger   *apperrors.Logger
}

// Service exposes every generation task. It holds no per-request state.
type Service struct {
	pipeline *pipeline.Pipeline
	cfg      *config.Config
	prompts  *config.PromptStore
	roadmaps RoadmapReader
	history  HistoryReader
	logger   *apperrors.Logger
}

// NewService wires a Service from its dependencies
func NewService(d Deps) *Service {
	cfg := d.Config
	if cfg == nil {
		cfg = config.Default()
	}
	return &Service{
		pipeline: d.Pipeline,
		cfg:      cfg,
		prompts:  d.Prompts,
		roadmaps: d.Roadmaps,
		history:  d.History,
		logger:   d.Logger,
	}
}

// Pipeline returns the pipeline the service runs tasks on
func (s *Service) Pipeline() *pipeline.Pipeline { return s.pipeline }

// Config returns the configuration the service was built with
func (s *Service) Config() *config.Config { return s.cfg }

// sampling returns the task's sampling settings and whether to send a separate system prompt
func (s *Service) sampling(task string) (ai.Sampling, bool) {
	tc := s.cfg.GetTaskConfig(task)
	return ai.Sampling{Temperature: *tc.Temperature, MaxTokens: *tc.MaxTokens}, *tc.UseSystemPrompts
}
