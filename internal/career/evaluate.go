package career

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	"github.com/StealthPanther/ai-career-navigator/internal/pipeline"
	"github.com/StealthPanther/ai-career-navigator/internal/schemas"
	"github.com/StealthPanther/ai-career-navigator/internal/types"
)

// MinAnswerLength is the shortest trimmed answer, in characters, that is sent for evaluation
const MinAnswerLength = 10

// EvaluateAnswer scores a candidate answer from 1 to 10. Answers shorter than
// MinAnswerLength score 0 without reaching any provider.
func (s *Service) EvaluateAnswer(ctx context.Context, question, answer, category string) pipeline.Result[types.InterviewEvaluation] {
	answer = strings.TrimSpace(answer)
	if n := utf8.RuneCountInString(answer); n < MinAnswerLength {
		s.logger.Debug("Answer too short to evaluate", "length", n)
		return pipeline.Result[types.InterviewEvaluation]{
			Value: shortAnswerEvaluation(),
			Tier:  pipeline.TierFallback,
		}
	}

	sampling, useSystem := s.sampling(config.TaskEvaluation)
	data := struct {
		Question string
		Answer   string
		Category string
	}{question, answer, normalizeCategory(category)}

	task := pipeline.Task[types.InterviewEvaluation]{
		Name:            config.TaskEvaluation,
		Schema:          schemas.AnswerEvaluation,
		Prompt:          s.prompt(config.TaskEvaluation, data),
		Sampling:        sampling,
		UseSystemPrompt: useSystem,
		Decode:          decodeEvaluation,
		Normalize:       normalizeEvaluation,
		Fallback:        fallbackEvaluation,
	}

	result := pipeline.RunStructured(ctx, s.pipeline, task)
	s.logger.Info("Answer evaluated",
		"tier", result.Tier,
		"score", result.Value.Score)
	return result
}

// decodeEvaluation accepts fractional scores and rounds them
func decodeEvaluation(raw []byte) (types.InterviewEvaluation, error) {
	var aux struct {
		Score        float64  `json:"score"`
		Feedback     string   `json:"feedback"`
		Strengths    []string `json:"strengths"`
		Improvements []string `json:"improvements"`
	}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return types.InterviewEvaluation{}, err
	}
	return types.InterviewEvaluation{
		Score:        int(math.Round(aux.Score)),
		Feedback:     strings.TrimSpace(aux.Feedback),
		Strengths:    aux.Strengths,
		Improvements: aux.Improvements,
	}, nil
}

// normalizeEvaluation clamps model scores to 1..10; 0 stays reserved for the short-answer gate
func normalizeEvaluation(e types.InterviewEvaluation) types.InterviewEvaluation {
	e.Score = min(max(e.Score, 1), 10)
	if e.Strengths == nil {
		e.Strengths = []string{}
	}
	if e.Improvements == nil {
		e.Improvements = []string{}
	}
	return e
}
