package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/career"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/observability"
	"github.com/StealthPanther/ai-career-navigator/internal/pipeline"
	"github.com/StealthPanther/ai-career-navigator/internal/store"
	"github.com/StealthPanther/ai-career-navigator/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultQuestionCount = 5

// tierInfo is embedded in every generation response
type tierInfo struct {
	Tier     pipeline.Tier `json:"tier"`
	Degraded bool          `json:"degraded"`
}

func tierOf[T any](r pipeline.Result[T]) tierInfo {
	return tierInfo{Tier: r.Tier, Degraded: r.Degraded()}
}

// trackTask runs a generation under the task metrics and returns its result
func trackTask[T any](ctx context.Context, s *Server, operation string, fn func(context.Context) (pipeline.Result[T], error)) (pipeline.Result[T], error) {
	var result pipeline.Result[T]
	err := s.om.GetMetrics().TrackTask(ctx, operation, func(ctx context.Context) *observability.TaskResult {
		var runErr error
		result, runErr = fn(ctx)
		tr := &observability.TaskResult{Tier: string(result.Tier), Error: runErr}
		if result.Usage != nil {
			tr.TokenUsage = &observability.TokenUsage{
				InputTokens:  result.Usage.InputTokens,
				OutputTokens: result.Usage.OutputTokens,
				TotalTokens:  result.Usage.TotalTokens,
			}
		}
		return tr
	}, s.om)
	return result, err
}

// startSpan opens the request span all handlers share
func (s *Server) startSpan(r *http.Request, name string) (context.Context, trace.Span) {
	return s.om.Tracer("careernav.api").Start(r.Context(), "api."+name)
}

// fail records err on the span and writes the mapped response
func fail(w http.ResponseWriter, span trace.Span, errorType string, err error) {
	span.RecordError(err)
	span.SetAttributes(attribute.String("error.type", errorType))
	writeAppError(w, err)
}

// createResumeParseHandler extracts and stores a resume
func (s *Server) createResumeParseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.startSpan(r, "resume.parse")
		defer span.End()

		var req ResumeParseRequest
		if err := s.parseJSONRequest(r, &req); err != nil {
			fail(w, span, "validation", err)
			return
		}
		span.SetAttributes(attribute.Int("request.resume_length", len(req.Text)))

		result, err := trackTask(ctx, s, "resume", func(ctx context.Context) (pipeline.Result[types.ResumeRecord], error) {
			return s.service.ExtractResume(ctx, req.Text)
		})
		metrics := s.om.GetMetrics()
		if err != nil {
			metrics.RecordBusinessMetric(ctx, "resume_parsed", false, s.om)
			fail(w, span, "input_rejected", err)
			return
		}

		stored, err := s.store.SaveResume(ctx, store.StoredResume{
			UserID:     req.UserID,
			Filename:   req.Filename,
			RawText:    req.Text,
			Parsed:     result.Value,
			UploadedAt: s.now().UTC(),
		})
		if err != nil {
			fail(w, span, "store", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_parsed", true, s.om,
			attribute.String("tier", string(result.Tier)),
			attribute.Int("skills", len(result.Value.Skills)))
		span.SetAttributes(attribute.String("tier", string(result.Tier)))

		writeJSON(w, http.StatusOK, struct {
			ResumeID string             `json:"resumeId"`
			Parsed   types.ResumeRecord `json:"parsed"`
			tierInfo
		}{stored.ID.String(), result.Value, tierOf(result)})
	}
}

// createSkillAnalyzeHandler compares skills with a role and stores the analysis
func (s *Server) createSkillAnalyzeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.startSpan(r, "skills.analyze")
		defer span.End()

		var req SkillAnalyzeRequest
		if err := s.parseJSONRequest(r, &req); err != nil {
			fail(w, span, "validation", err)
			return
		}

		skills := req.CurrentSkills
		if len(skills) == 0 {
			resume, err := s.store.LatestResume(ctx, req.UserID)
			if err != nil {
				fail(w, span, "store", notFoundAs(err, "Please upload a resume first"))
				return
			}
			skills = resume.Parsed.Skills
		}

		result, err := trackTask(ctx, s, "skill_gap", func(ctx context.Context) (pipeline.Result[types.SkillGapAnalysis], error) {
			return s.service.AnalyzeSkillGap(ctx, skills, req.TargetRole)
		})
		metrics := s.om.GetMetrics()
		if err != nil {
			metrics.RecordBusinessMetric(ctx, "skill_gap_analyzed", false, s.om)
			fail(w, span, "input_rejected", err)
			return
		}

		analysis := result.Value
		readiness := career.ReadinessScore(analysis.MatchingSkills, analysis.RequiredSkills)
		if req.UserID != "" {
			if err := s.store.SaveSkillAnalysis(ctx, store.StoredSkillAnalysis{
				UserID:            req.UserID,
				TargetRole:        req.TargetRole,
				CurrentSkills:     skills,
				Analysis:          analysis,
				JobReadinessScore: readiness,
				CreatedAt:         s.now().UTC(),
			}); err != nil {
				fail(w, span, "store", err)
				return
			}
		}

		metrics.RecordBusinessMetric(ctx, "skill_gap_analyzed", true, s.om,
			attribute.String("tier", string(result.Tier)),
			attribute.Int("missing_skills", len(analysis.MissingSkills)))

		writeJSON(w, http.StatusOK, struct {
			Analysis          types.SkillGapAnalysis `json:"analysis"`
			JobReadinessScore float64                `json:"jobReadinessScore"`
			tierInfo
		}{analysis, readiness, tierOf(result)})
	}
}

// createRoadmapGenerateHandler builds a roadmap and stores it as the active one
func (s *Server) createRoadmapGenerateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.startSpan(r, "roadmap.generate")
		defer span.End()

		var req RoadmapGenerateRequest
		if err := s.parseJSONRequest(r, &req); err != nil {
			fail(w, span, "validation", err)
			return
		}

		missing := req.MissingSkills
		readiness := career.ReadinessScore(req.MatchingSkills, req.RequiredSkills)
		if len(missing) == 0 {
			analysis, err := s.store.LatestSkillAnalysis(ctx, req.UserID)
			if err != nil {
				fail(w, span, "store", notFoundAs(err, "Please complete skill analysis first"))
				return
			}
			missing = analysis.Analysis.MissingSkills
			readiness = analysis.JobReadinessScore
		}
		span.SetAttributes(
			attribute.Int("request.weeks", req.Weeks),
			attribute.Int("request.missing_skills", len(missing)))

		result, err := trackTask(ctx, s, "roadmap", func(ctx context.Context) (pipeline.Result[types.Roadmap], error) {
			return s.service.GenerateRoadmap(ctx, missing, req.TargetRole, req.Weeks)
		})
		metrics := s.om.GetMetrics()
		if err != nil {
			metrics.RecordBusinessMetric(ctx, "roadmap_generated", false, s.om)
			fail(w, span, "input_rejected", err)
			return
		}

		// The request was accepted, so the count resolves without error
		weeks, _ := s.service.ResolveWeeks(req.Weeks)
		record := career.BuildRoadmapRecord(career.RoadmapInput{
			UserID:            req.UserID,
			TargetRole:        req.TargetRole,
			Weeks:             weeks,
			SkillsToLearn:     missing,
			JobReadinessScore: readiness,
		}, result.Value, s.now())
		saved, err := s.store.SaveRoadmap(ctx, record)
		if err != nil {
			fail(w, span, "store", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "roadmap_generated", true, s.om,
			attribute.String("tier", string(result.Tier)),
			attribute.Int("weeks", saved.TotalWeeks))

		writeJSON(w, http.StatusOK, struct {
			RoadmapID string              `json:"roadmapId"`
			Roadmap   store.StoredRoadmap `json:"roadmap"`
			tierInfo
		}{saved.ID.String(), saved, tierOf(result)})
	}
}

// createInterviewGenerateHandler starts a practice session
func (s *Server) createInterviewGenerateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.startSpan(r, "interview.generate")
		defer span.End()

		var req InterviewGenerateRequest
		if err := s.parseJSONRequest(r, &req); err != nil {
			fail(w, span, "validation", err)
			return
		}
		if req.QuestionCount == 0 {
			req.QuestionCount = defaultQuestionCount
		}

		var session store.InterviewSession
		var tier pipeline.Tier
		err := s.om.GetMetrics().TrackTask(ctx, "interview_questions", func(ctx context.Context) *observability.TaskResult {
			var genErr error
			session, tier, genErr = s.service.NewPracticeSession(ctx, req.UserID, req.TargetRole, req.Difficulty, req.QuestionCount)
			return &observability.TaskResult{Tier: string(tier), Error: genErr}
		}, s.om)
		metrics := s.om.GetMetrics()
		if err != nil {
			metrics.RecordBusinessMetric(ctx, "session_created", false, s.om)
			fail(w, span, "input_rejected", err)
			return
		}

		saved, err := s.store.SaveSession(ctx, session)
		if err != nil {
			fail(w, span, "store", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "session_created", true, s.om,
			attribute.String("tier", string(tier)),
			attribute.String("difficulty", saved.Difficulty))

		questions := make([]types.InterviewQuestion, 0, len(saved.Questions))
		for _, q := range saved.Questions {
			questions = append(questions, q.Question)
		}
		writeJSON(w, http.StatusOK, struct {
			SessionID  string                    `json:"sessionId"`
			Questions  []types.InterviewQuestion `json:"questions"`
			TargetRole string                    `json:"targetRole"`
			Difficulty string                    `json:"difficulty"`
			tierInfo
		}{saved.ID.String(), questions, saved.TargetRole, saved.Difficulty, tierInfo{Tier: tier, Degraded: tier == pipeline.TierFallback}})
	}
}

// createInterviewEvaluateHandler scores one answer without a session
func (s *Server) createInterviewEvaluateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.startSpan(r, "interview.evaluate")
		defer span.End()

		var req InterviewEvaluateRequest
		if err := s.parseJSONRequest(r, &req); err != nil {
			fail(w, span, "validation", err)
			return
		}

		result, _ := trackTask(ctx, s, "evaluation", func(ctx context.Context) (pipeline.Result[types.InterviewEvaluation], error) {
			return s.service.EvaluateAnswer(ctx, req.Question, req.Answer, req.Category), nil
		})
		s.om.GetMetrics().RecordBusinessMetric(ctx, "answer_evaluated", true, s.om,
			attribute.String("tier", string(result.Tier)),
			attribute.Int("score", result.Value.Score))

		writeJSON(w, http.StatusOK, struct {
			Evaluation types.InterviewEvaluation `json:"evaluation"`
			tierInfo
		}{result.Value, tierOf(result)})
	}
}

// createInterviewSubmitHandler evaluates a session's answers and completes it
func (s *Server) createInterviewSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.startSpan(r, "interview.submit")
		defer span.End()

		sessionID := r.PathValue("sessionId")
		var req InterviewSubmitRequest
		if err := s.parseJSONRequest(r, &req); err != nil {
			fail(w, span, "validation", err)
			return
		}

		session, err := s.store.GetSession(ctx, sessionID)
		if err != nil {
			fail(w, span, "store", err)
			return
		}

		completed, err := s.service.SubmitSession(ctx, *session, req.Answers)
		if err != nil {
			fail(w, span, "input_rejected", err)
			return
		}
		saved, err := s.store.SaveSession(ctx, completed)
		if err != nil {
			fail(w, span, "store", err)
			return
		}

		metrics := s.om.GetMetrics()
		for range req.Answers {
			metrics.RecordBusinessMetric(ctx, "answer_evaluated", true, s.om,
				attribute.String("session_id", sessionID))
		}
		span.SetAttributes(attribute.Float64("overall_score", saved.OverallScore))

		writeJSON(w, http.StatusOK, struct {
			SessionID      string                  `json:"sessionId"`
			Questions      []store.SessionQuestion `json:"questions"`
			OverallScore   float64                 `json:"overallScore"`
			TotalQuestions int                     `json:"totalQuestions"`
		}{saved.ID.String(), saved.Questions, saved.OverallScore, len(saved.Questions)})
	}
}

// createChatHandler answers a message and persists both turns
func (s *Server) createChatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.startSpan(r, "chat")
		defer span.End()

		var req ChatRequest
		if err := s.parseJSONRequest(r, &req); err != nil {
			fail(w, span, "validation", err)
			return
		}

		var reply career.ChatResponse
		_ = s.om.GetMetrics().TrackTask(ctx, "chat", func(ctx context.Context) *observability.TaskResult {
			reply = s.service.Chat(ctx, career.ChatRequest{
				UserID:    req.UserID,
				RoadmapID: req.RoadmapID,
				Message:   req.Message,
			})
			return &observability.TaskResult{Tier: string(reply.Tier)}
		}, s.om)

		now := s.now().UTC()
		if err := s.store.AppendChat(ctx, req.UserID, req.RoadmapID,
			types.ChatTurn{Role: types.RoleUser, Message: strings.TrimSpace(req.Message), Timestamp: now},
			types.ChatTurn{Role: types.RoleAssistant, Message: reply.Reply, Timestamp: now},
		); err != nil {
			fail(w, span, "store", err)
			return
		}

		s.om.GetMetrics().RecordBusinessMetric(ctx, "chat_message", true, s.om,
			attribute.String("tier", string(reply.Tier)),
			attribute.Bool("gated", reply.Gated))

		writeJSON(w, http.StatusOK, struct {
			Response  string        `json:"response"`
			Timestamp time.Time     `json:"timestamp"`
			Tier      pipeline.Tier `json:"tier"`
			Gated     bool          `json:"gated"`
		}{reply.Reply, now, reply.Tier, reply.Gated})
	}
}

// notFoundAs replaces the message of a not-found error, leaving other errors alone
func notFoundAs(err error, message string) error {
	if store.IsNotFound(err) {
		return apperrors.NewStoreError(apperrors.ErrCodeNotFound, message, err)
	}
	return err
}

// createRateLimitMiddleware counts rejected requests as rate limit hits
func (s *Server) createRateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	limit := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		limited := limit(next)
		return func(w http.ResponseWriter, r *http.Request) {
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
			limited(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				s.om.GetMetrics().RecordBusinessMetric(r.Context(), "rate_limit_hit", true, s.om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		}
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
