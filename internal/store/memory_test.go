package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreResumes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.LatestResume(ctx, "u1")
	assert.True(t, IsNotFound(err))

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.SaveResume(ctx, StoredResume{UserID: "u1", Filename: "old.txt", UploadedAt: base})
	require.NoError(t, err)
	saved, err := s.SaveResume(ctx, StoredResume{UserID: "u1", Filename: "new.txt", UploadedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID.String())

	latest, err := s.LatestResume(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new.txt", latest.Filename)
}

func TestMemoryStoreSkillAnalysisUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveSkillAnalysis(ctx, StoredSkillAnalysis{UserID: "u1", TargetRole: "SRE", JobReadinessScore: 10, CreatedAt: base}))
	require.NoError(t, s.SaveSkillAnalysis(ctx, StoredSkillAnalysis{UserID: "u1", TargetRole: "SRE", JobReadinessScore: 40, CreatedAt: base.Add(time.Minute)}))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SkillAnalyses)

	latest, err := s.LatestSkillAnalysis(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 40.0, latest.JobReadinessScore)
}

func TestMemoryStoreRoadmaps(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := s.SaveRoadmap(ctx, StoredRoadmap{UserID: "u1", TargetRole: "SRE", IsActive: true, CreatedAt: base})
	require.NoError(t, err)
	second, err := s.SaveRoadmap(ctx, StoredRoadmap{
		UserID: "u1", TargetRole: "Data Engineer", TotalWeeks: 8, CurrentWeek: 1,
		JobReadinessScore: 42.5, SkillsToLearn: []string{"Spark", "Airflow"},
		IsActive: true, CreatedAt: base.Add(time.Hour),
	})
	require.NoError(t, err)

	list, err := s.ListRoadmaps(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	active, err := s.ActiveRoadmap(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	old, err := s.GetRoadmap(ctx, "u1", first.ID.String())
	require.NoError(t, err)
	assert.False(t, old.IsActive)

	_, err = s.GetRoadmap(ctx, "someone-else", second.ID.String())
	assert.True(t, IsNotFound(err))
	_, err = s.GetRoadmap(ctx, "u1", "not-a-uuid")
	assert.True(t, IsNotFound(err))

	snap, err := s.RoadmapSnapshot(ctx, "u1", second.ID.String())
	require.NoError(t, err)
	assert.Equal(t, types.RoadmapSnapshot{
		TargetRole:        "Data Engineer",
		CurrentWeek:       1,
		TotalWeeks:        8,
		JobReadinessScore: 42.5,
		SkillsToLearn:     []string{"Spark", "Airflow"},
	}, *snap)
}

func TestMemoryStoreSessions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now().UTC()

	stale, err := s.SaveSession(ctx, InterviewSession{UserID: "u1", Status: SessionInProgress, CreatedAt: now.Add(-48 * time.Hour)})
	require.NoError(t, err)
	done, err := s.SaveSession(ctx, InterviewSession{UserID: "u1", Status: SessionCompleted, CreatedAt: now.Add(-72 * time.Hour)})
	require.NoError(t, err)
	fresh, err := s.SaveSession(ctx, InterviewSession{UserID: "u1", Status: SessionInProgress, CreatedAt: now})
	require.NoError(t, err)

	expired, err := s.ExpireSessions(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	got, err := s.GetSession(ctx, stale.ID.String())
	require.NoError(t, err)
	assert.Equal(t, SessionExpired, got.Status)

	got, err = s.GetSession(ctx, done.ID.String())
	require.NoError(t, err)
	assert.Equal(t, SessionCompleted, got.Status)

	list, err := s.ListSessions(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, fresh.ID, list[0].ID)

	// replacing by ID does not create a new record
	fresh.Status = SessionCompleted
	_, err = s.SaveSession(ctx, fresh)
	require.NoError(t, err)
	stats, _ := s.Stats(ctx)
	assert.Equal(t, 3, stats.Sessions)
}

func TestMemoryStoreChat(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for i := 1; i <= 12; i++ {
		require.NoError(t, s.AppendChat(ctx, "u1", "r1", types.ChatTurn{Role: types.RoleUser, Message: fmt.Sprintf("m%d", i)}))
	}
	require.NoError(t, s.AppendChat(ctx, "u1", "", types.ChatTurn{Role: types.RoleUser, Message: "general"}))

	turns, err := s.RecentTurns(ctx, "u1", "r1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 10)
	assert.Equal(t, "m3", turns[0].Message)
	assert.Equal(t, "m12", turns[9].Message)
	assert.False(t, turns[0].Timestamp.IsZero())

	deleted, err := s.ClearChat(ctx, "u1", "r1")
	require.NoError(t, err)
	assert.Equal(t, 12, deleted)

	general, err := s.RecentTurns(ctx, "u1", "", 10)
	require.NoError(t, err)
	assert.Len(t, general, 1)

	deleted, err = s.ClearChat(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}
