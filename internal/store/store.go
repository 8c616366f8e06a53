// Package store persists resumes, analyses, roadmaps, interview sessions and
// chat history. The generation core only reads roadmaps and chat turns.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/types"

	"github.com/google/uuid"
)

// Interview session states
const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionExpired    = "expired"
)

// StoredResume is an uploaded resume and its extracted record
type StoredResume struct {
	ID         uuid.UUID          `json:"id"`
	UserID     string             `json:"userId"`
	Filename   string             `json:"filename"`
	RawText    string             `json:"rawText"`
	Parsed     types.ResumeRecord `json:"parsed"`
	UploadedAt time.Time          `json:"uploadedAt"`
}

// StoredSkillAnalysis is the latest analysis for a user and target role
type StoredSkillAnalysis struct {
	UserID            string                 `json:"userId"`
	TargetRole        string                 `json:"targetRole"`
	CurrentSkills     []string               `json:"currentSkills"`
	Analysis          types.SkillGapAnalysis `json:"analysis"`
	JobReadinessScore float64                `json:"jobReadinessScore"`
	CreatedAt         time.Time              `json:"createdAt"`
}

// StoredRoadmap is a generated roadmap with its progress metadata
type StoredRoadmap struct {
	ID                uuid.UUID     `json:"id"`
	UserID            string        `json:"userId"`
	TargetRole        string        `json:"targetRole"`
	DisplayName       string        `json:"displayName"`
	Roadmap           types.Roadmap `json:"roadmap"`
	TotalWeeks        int           `json:"totalWeeks"`
	CurrentWeek       int           `json:"currentWeek"`
	JobReadinessScore float64       `json:"jobReadinessScore"`
	SkillsToLearn     []string      `json:"skillsToLearn"`
	IsActive          bool          `json:"isActive"`
	CreatedAt         time.Time     `json:"createdAt"`
}

// Snapshot returns the view of the roadmap the chat assistant uses
func (r StoredRoadmap) Snapshot() types.RoadmapSnapshot {
	return types.RoadmapSnapshot{
		TargetRole:        r.TargetRole,
		CurrentWeek:       r.CurrentWeek,
		TotalWeeks:        r.TotalWeeks,
		JobReadinessScore: r.JobReadinessScore,
		SkillsToLearn:     append([]string{}, r.SkillsToLearn...),
	}
}

// SessionQuestion is a question with the candidate's answer and its evaluation, once submitted
type SessionQuestion struct {
	Question   types.InterviewQuestion    `json:"question"`
	Answer     string                     `json:"answer,omitempty"`
	Evaluation *types.InterviewEvaluation `json:"evaluation,omitempty"`
}

// InterviewSession is one mock interview
type InterviewSession struct {
	ID           uuid.UUID         `json:"id"`
	UserID       string            `json:"userId"`
	TargetRole   string            `json:"targetRole"`
	Difficulty   string            `json:"difficulty"`
	Questions    []SessionQuestion `json:"questions"`
	OverallScore float64           `json:"overallScore"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	CompletedAt  *time.Time        `json:"completedAt,omitempty"`
}

// ChatRecord is a persisted chat turn. An empty RoadmapID is general conversation.
type ChatRecord struct {
	ID        uuid.UUID      `json:"id"`
	UserID    string         `json:"userId"`
	RoadmapID string         `json:"roadmapId,omitempty"`
	Turn      types.ChatTurn `json:"turn"`
}

// Stats counts stored records
type Stats struct {
	Driver        string `json:"driver"`
	Resumes       int    `json:"resumes"`
	SkillAnalyses int    `json:"skillAnalyses"`
	Roadmaps      int    `json:"roadmaps"`
	Sessions      int    `json:"sessions"`
	ChatTurns     int    `json:"chatTurns"`
}

// Store is implemented by every persistence backend
type Store interface {
	SaveResume(ctx context.Context, r StoredResume) (StoredResume, error)
	LatestResume(ctx context.Context, userID string) (*StoredResume, error)

	// SaveSkillAnalysis replaces any analysis for the same user and target role
	SaveSkillAnalysis(ctx context.Context, a StoredSkillAnalysis) error
	LatestSkillAnalysis(ctx context.Context, userID string) (*StoredSkillAnalysis, error)

	// SaveRoadmap assigns an ID. An active roadmap deactivates the user's others.
	SaveRoadmap(ctx context.Context, r StoredRoadmap) (StoredRoadmap, error)
	ListRoadmaps(ctx context.Context, userID string) ([]StoredRoadmap, error)
	GetRoadmap(ctx context.Context, userID, roadmapID string) (*StoredRoadmap, error)
	ActiveRoadmap(ctx context.Context, userID string) (*StoredRoadmap, error)
	RoadmapSnapshot(ctx context.Context, userID, roadmapID string) (*types.RoadmapSnapshot, error)

	// SaveSession inserts a session without an ID and replaces one with an ID
	SaveSession(ctx context.Context, s InterviewSession) (InterviewSession, error)
	GetSession(ctx context.Context, sessionID string) (*InterviewSession, error)
	ListSessions(ctx context.Context, userID string, limit int) ([]InterviewSession, error)
	// ExpireSessions marks in-progress sessions created before cutoff as expired
	ExpireSessions(ctx context.Context, cutoff time.Time) (int, error)

	AppendChat(ctx context.Context, userID, roadmapID string, turns ...types.ChatTurn) error
	// RecentTurns returns up to limit turns, oldest first
	RecentTurns(ctx context.Context, userID, roadmapID string, limit int) ([]types.ChatTurn, error)
	// ClearChat deletes a conversation. An empty roadmapID deletes all of the user's history.
	ClearChat(ctx context.Context, userID, roadmapID string) (int, error)

	Stats(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
	Close() error
}

// New builds the configured store, decorated with the Redis chat cache when a URL is set
func New(ctx context.Context, cfg config.StoreConfig, logger *apperrors.Logger) (Store, error) {
	var base Store
	switch cfg.Driver {
	case "", "memory":
		base = NewMemoryStore()
	case "postgres":
		pg, err := NewPostgresStore(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		base = pg
	default:
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			fmt.Sprintf("unsupported store driver %q", cfg.Driver), nil)
	}
	logger.Info("Store initialized", "driver", cfg.Driver)

	if cfg.Redis.URL == "" {
		return base, nil
	}
	cached, err := NewRedisHistory(ctx, base, cfg.Redis, logger)
	if err != nil {
		_ = base.Close()
		return nil, err
	}
	return cached, nil
}

// IsNotFound reports whether err means the record does not exist
func IsNotFound(err error) bool {
	appErr, ok := apperrors.As(err)
	return ok && appErr.Code == apperrors.ErrCodeNotFound
}

func notFound(kind, id string) error {
	return apperrors.NewStoreError(apperrors.ErrCodeNotFound, kind+" not found", nil).WithContext("id", id)
}

func storeFailure(operation string, err error) error {
	return apperrors.NewStoreError(apperrors.ErrCodeStoreFailed, operation+" failed", err)
}
