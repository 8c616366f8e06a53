package career

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/pipeline"
	"github.com/StealthPanther/ai-career-navigator/internal/schemas"
	"github.com/StealthPanther/ai-career-navigator/internal/types"
)

// DefaultDifficulty is used when a caller leaves difficulty empty
const DefaultDifficulty = types.DifficultyMedium

// GenerateQuestions produces count mock-interview questions for a role
func (s *Service) GenerateQuestions(ctx context.Context, targetRole, difficulty string, count int) (pipeline.Result[[]types.InterviewQuestion], error) {
	if count <= 0 {
		return pipeline.Result[[]types.InterviewQuestion]{}, apperrors.NewInputRejected(apperrors.ErrCodeInvalidCount,
			"question count must be positive").WithContext("count", count)
	}
	targetRole = strings.TrimSpace(targetRole)
	if targetRole == "" {
		return pipeline.Result[[]types.InterviewQuestion]{}, apperrors.NewInputRejected(apperrors.ErrCodeMissingField,
			"target role is required")
	}
	difficulty = normalizeDifficulty(difficulty)

	sampling, useSystem := s.sampling(config.TaskInterview)
	data := struct {
		TargetRole string
		Difficulty string
		Count      int
	}{targetRole, difficulty, count}

	task := pipeline.Task[[]types.InterviewQuestion]{
		Name:            config.TaskInterview,
		Schema:          schemas.InterviewQuestions,
		Prompt:          s.prompt(config.TaskInterview, data),
		Sampling:        sampling,
		UseSystemPrompt: useSystem,
		Decode:          decodeQuestions,
		Normalize: func(qs []types.InterviewQuestion) []types.InterviewQuestion {
			return normalizeQuestions(qs, difficulty, count)
		},
		Fallback: func() []types.InterviewQuestion { return fallbackQuestions(targetRole, difficulty, count) },
	}

	result := pipeline.RunStructured(ctx, s.pipeline, task)
	s.logger.Info("Interview questions generated",
		"tier", result.Tier,
		"target_role", targetRole,
		"requested", count,
		"returned", len(result.Value))
	return result, nil
}

func decodeQuestions(raw []byte) ([]types.InterviewQuestion, error) {
	var set types.InterviewQuestionSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, err
	}
	for _, q := range set.Questions {
		if strings.TrimSpace(q.Question) != "" {
			return set.Questions, nil
		}
	}
	return nil, apperrors.NewShapeError(apperrors.ErrCodeSchemaViolation,
		"response has no non-blank question", nil)
}

// normalizeQuestions fills the requested difficulty, maps category spellings
// onto the known set and keeps at most count questions
func normalizeQuestions(qs []types.InterviewQuestion, difficulty string, count int) []types.InterviewQuestion {
	out := make([]types.InterviewQuestion, 0, min(len(qs), count))
	for _, q := range qs {
		if len(out) == count {
			break
		}
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" {
			continue
		}
		q.Category = normalizeCategory(q.Category)
		if q.Difficulty == "" {
			q.Difficulty = difficulty
		}
		out = append(out, q)
	}
	return out
}

// normalizeDifficulty lowercases difficulty and defaults it when empty
func normalizeDifficulty(difficulty string) string {
	d := strings.ToLower(strings.TrimSpace(difficulty))
	if d == "" {
		return DefaultDifficulty
	}
	return d
}

func normalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	c = strings.NewReplacer(" ", "_", "-", "_").Replace(c)
	switch c {
	case types.CategoryBehavioral, types.CategorySystemDesign:
		return c
	default:
		return types.CategoryTechnical
	}
}
