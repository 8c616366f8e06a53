package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/types"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory. It is the default driver.
type MemoryStore struct {
	mu       sync.RWMutex
	resumes  []StoredResume
	analyses map[analysisKey]StoredSkillAnalysis
	roadmaps []StoredRoadmap
	sessions map[uuid.UUID]InterviewSession
	chats    []ChatRecord
	now      func() time.Time
}

type analysisKey struct {
	userID     string
	targetRole string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		analyses: make(map[analysisKey]StoredSkillAnalysis),
		sessions: make(map[uuid.UUID]InterviewSession),
		now:      time.Now,
	}
}

func (m *MemoryStore) SaveResume(_ context.Context, r StoredResume) (StoredResume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.UploadedAt.IsZero() {
		r.UploadedAt = m.now().UTC()
	}
	m.resumes = append(m.resumes, r)
	return r, nil
}

func (m *MemoryStore) LatestResume(_ context.Context, userID string) (*StoredResume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *StoredResume
	for i := range m.resumes {
		r := m.resumes[i]
		if r.UserID == userID && (latest == nil || !r.UploadedAt.Before(latest.UploadedAt)) {
			latest = &r
		}
	}
	if latest == nil {
		return nil, notFound("resume", userID)
	}
	return latest, nil
}

func (m *MemoryStore) SaveSkillAnalysis(_ context.Context, a StoredSkillAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = m.now().UTC()
	}
	m.analyses[analysisKey{a.UserID, a.TargetRole}] = a
	return nil
}

func (m *MemoryStore) LatestSkillAnalysis(_ context.Context, userID string) (*StoredSkillAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *StoredSkillAnalysis
	for key, a := range m.analyses {
		if key.userID == userID && (latest == nil || a.CreatedAt.After(latest.CreatedAt)) {
			latest = &a
		}
	}
	if latest == nil {
		return nil, notFound("skill analysis", userID)
	}
	return latest, nil
}

func (m *MemoryStore) SaveRoadmap(_ context.Context, r StoredRoadmap) (StoredRoadmap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = m.now().UTC()
	}
	if r.IsActive {
		for i := range m.roadmaps {
			if m.roadmaps[i].UserID == r.UserID {
				m.roadmaps[i].IsActive = false
			}
		}
	}
	m.roadmaps = append(m.roadmaps, r)
	return r, nil
}

// ListRoadmaps returns the user's roadmaps, newest first
func (m *MemoryStore) ListRoadmaps(_ context.Context, userID string) ([]StoredRoadmap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []StoredRoadmap
	for _, r := range m.roadmaps {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) GetRoadmap(_ context.Context, userID, roadmapID string) (*StoredRoadmap, error) {
	id, err := uuid.Parse(roadmapID)
	if err != nil {
		return nil, notFound("roadmap", roadmapID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.roadmaps {
		if r.ID == id && r.UserID == userID {
			return &r, nil
		}
	}
	return nil, notFound("roadmap", roadmapID)
}

func (m *MemoryStore) ActiveRoadmap(_ context.Context, userID string) (*StoredRoadmap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.roadmaps) - 1; i >= 0; i-- {
		if r := m.roadmaps[i]; r.UserID == userID && r.IsActive {
			return &r, nil
		}
	}
	return nil, notFound("active roadmap", userID)
}

func (m *MemoryStore) RoadmapSnapshot(ctx context.Context, userID, roadmapID string) (*types.RoadmapSnapshot, error) {
	r, err := m.GetRoadmap(ctx, userID, roadmapID)
	if err != nil {
		return nil, err
	}
	snap := r.Snapshot()
	return &snap, nil
}

func (m *MemoryStore) SaveSession(_ context.Context, s InterviewSession) (InterviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now().UTC()
	}
	s.Questions = slices.Clone(s.Questions)
	m.sessions[s.ID] = s
	return s, nil
}

func (m *MemoryStore) GetSession(_ context.Context, sessionID string) (*InterviewSession, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, notFound("interview session", sessionID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, notFound("interview session", sessionID)
	}
	s.Questions = slices.Clone(s.Questions)
	return &s, nil
}

// ListSessions returns the user's sessions, newest first
func (m *MemoryStore) ListSessions(_ context.Context, userID string, limit int) ([]InterviewSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []InterviewSession
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) ExpireSessions(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expired := 0
	for id, s := range m.sessions {
		if s.Status == SessionInProgress && s.CreatedAt.Before(cutoff) {
			s.Status = SessionExpired
			m.sessions[id] = s
			expired++
		}
	}
	return expired, nil
}

func (m *MemoryStore) AppendChat(_ context.Context, userID, roadmapID string, turns ...types.ChatTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range turns {
		if t.Timestamp.IsZero() {
			t.Timestamp = m.now().UTC()
		}
		m.chats = append(m.chats, ChatRecord{ID: uuid.New(), UserID: userID, RoadmapID: roadmapID, Turn: t})
	}
	return nil
}

func (m *MemoryStore) RecentTurns(_ context.Context, userID, roadmapID string, limit int) ([]types.ChatTurn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var turns []types.ChatTurn
	for _, c := range m.chats {
		if c.UserID == userID && c.RoadmapID == roadmapID {
			turns = append(turns, c.Turn)
		}
	}
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

func (m *MemoryStore) ClearChat(_ context.Context, userID, roadmapID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.chats)
	m.chats = slices.DeleteFunc(m.chats, func(c ChatRecord) bool {
		return c.UserID == userID && (roadmapID == "" || c.RoadmapID == roadmapID)
	})
	return before - len(m.chats), nil
}

func (m *MemoryStore) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		Driver:        "memory",
		Resumes:       len(m.resumes),
		SkillAnalyses: len(m.analyses),
		Roadmaps:      len(m.roadmaps),
		Sessions:      len(m.sessions),
		ChatTurns:     len(m.chats),
	}, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
