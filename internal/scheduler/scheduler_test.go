package scheduler

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) ExpireSessions(context.Context, time.Time) (int, error) {
	return 0, apperrors.NewStoreError(apperrors.ErrCodeStoreFailed, "database down", nil)
}

func (failingStore) Stats(context.Context) (store.Stats, error) {
	return store.Stats{}, apperrors.NewStoreError(apperrors.ErrCodeStoreFailed, "database down", nil)
}

func bufferLogger() (*apperrors.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return apperrors.NewWithHandler(slog.NewJSONHandler(&buf, nil)), &buf
}

func TestExpireSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	mem := store.NewMemoryStore()

	seed := []store.InterviewSession{
		{UserID: "ada", Status: store.SessionInProgress, CreatedAt: now.Add(-48 * time.Hour)},
		{UserID: "ada", Status: store.SessionInProgress, CreatedAt: now.Add(-time.Hour)},
		{UserID: "ada", Status: store.SessionCompleted, CreatedAt: now.Add(-72 * time.Hour)},
	}
	ids := make([]string, len(seed))
	for i, s := range seed {
		saved, err := mem.SaveSession(ctx, s)
		require.NoError(t, err)
		ids[i] = saved.ID.String()
	}

	logger, _ := bufferLogger()
	s := New(config.SchedulerConfig{Enabled: true, SessionTTL: 24 * time.Hour}, mem, nil, logger)
	s.now = func() time.Time { return now }

	assert.Equal(t, 1, s.ExpireSessions(ctx))

	want := []string{store.SessionExpired, store.SessionInProgress, store.SessionCompleted}
	for i, id := range ids {
		got, err := mem.GetSession(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want[i], got.Status, "session %d", i)
	}

	// already expired sessions are not counted again
	assert.Equal(t, 0, s.ExpireSessions(ctx))
}

func TestStoreFailuresAreLogged(t *testing.T) {
	logger, buf := bufferLogger()
	s := New(config.SchedulerConfig{Enabled: true, SessionTTL: time.Hour}, failingStore{}, map[string]StatsSource{
		"worker_pool": func() map[string]any { return map[string]any{"capacity": 3} },
	}, logger)

	assert.Equal(t, 0, s.ExpireSessions(context.Background()))
	s.LogStats(context.Background())

	out := buf.String()
	assert.Contains(t, out, "Failed to expire practice sessions")
	assert.Contains(t, out, "Failed to collect store stats")
	assert.Contains(t, out, `"worker_pool":{"capacity":3}`)
}

func TestStart(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.SchedulerConfig
		jobs    int
		wantErr bool
	}{
		{"disabled", config.SchedulerConfig{Enabled: false, StatsSchedule: "@every 5m"}, 0, false},
		{"both jobs", config.SchedulerConfig{Enabled: true, StatsSchedule: "@every 5m", CleanupSchedule: "@every 1h", SessionTTL: time.Hour}, 2, false},
		{"cleanup without ttl", config.SchedulerConfig{Enabled: true, StatsSchedule: "@every 5m", CleanupSchedule: "@every 1h"}, 1, false},
		{"bad schedule", config.SchedulerConfig{Enabled: true, StatsSchedule: "every now and then"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := bufferLogger()
			s := New(tt.cfg, store.NewMemoryStore(), nil, logger)
			err := s.Start(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				appErr, ok := apperrors.As(err)
				require.True(t, ok)
				assert.Equal(t, apperrors.ErrorTypeConfig, appErr.Type)
				return
			}
			require.NoError(t, err)
			defer s.Stop()
			assert.Len(t, s.cron.Entries(), tt.jobs)
		})
	}
}
