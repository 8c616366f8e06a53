package career

import (
	"context"
	"time"

	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/pipeline"
	"github.com/StealthPanther/ai-career-navigator/internal/store"
	"github.com/StealthPanther/ai-career-navigator/internal/types"

	"golang.org/x/sync/errgroup"
)

// AnswerSubmission is one answer to a session question
type AnswerSubmission struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// NewPracticeSession generates questions and returns an in-progress session ready to persist
func (s *Service) NewPracticeSession(ctx context.Context, userID, targetRole, difficulty string, count int) (store.InterviewSession, pipeline.Tier, error) {
	difficulty = normalizeDifficulty(difficulty)
	result, err := s.GenerateQuestions(ctx, targetRole, difficulty, count)
	if err != nil {
		return store.InterviewSession{}, "", err
	}

	session := store.InterviewSession{
		UserID:     userID,
		TargetRole: targetRole,
		Difficulty: difficulty,
		Status:     store.SessionInProgress,
		CreatedAt:  time.Now().UTC(),
	}
	for _, q := range result.Value {
		session.Questions = append(session.Questions, store.SessionQuestion{Question: q})
	}
	return session, result.Tier, nil
}

// SubmitSession evaluates every submitted answer concurrently, attaches the
// evaluations to the matching questions and completes the session.
// The overall score covers the submitted answers only.
func (s *Service) SubmitSession(ctx context.Context, session store.InterviewSession, answers []AnswerSubmission) (store.InterviewSession, error) {
	if len(answers) == 0 {
		return session, apperrors.NewInputRejected(apperrors.ErrCodeMissingField, "at least one answer is required")
	}
	if session.Status == store.SessionCompleted {
		return session, apperrors.NewInputRejected(apperrors.ErrCodeInvalidRequest, "session is already completed").
			WithContext("session_id", session.ID.String())
	}

	evaluations := make([]types.InterviewEvaluation, len(answers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.cfg.AI.WorkerPool.Size))
	for i, a := range answers {
		g.Go(func() error {
			category := a.Category
			if category == "" {
				category = categoryOf(session, a.Question)
			}
			evaluations[i] = s.EvaluateAnswer(gctx, a.Question, a.Answer, category).Value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return session, err
	}

	questions := make([]store.SessionQuestion, len(session.Questions))
	copy(questions, session.Questions)
	for i, a := range answers {
		for j := range questions {
			if questions[j].Question.Question == a.Question {
				evaluation := evaluations[i]
				questions[j].Answer = a.Answer
				questions[j].Evaluation = &evaluation
				break
			}
		}
	}

	completedAt := time.Now().UTC()
	session.Questions = questions
	session.OverallScore = SessionScore(evaluations)
	session.Status = store.SessionCompleted
	session.CompletedAt = &completedAt

	s.logger.Info("Interview session completed",
		"session_id", session.ID.String(),
		"answers", len(answers),
		"overall_score", session.OverallScore)
	return session, nil
}

func categoryOf(session store.InterviewSession, question string) string {
	for _, q := range session.Questions {
		if q.Question.Question == question {
			return q.Question.Category
		}
	}
	return types.CategoryTechnical
}
