// Package scheduler runs periodic maintenance: stats logging and
// expiry of abandoned practice sessions.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/store"

	"github.com/robfig/cron/v3"
)

// SessionStore is the part of the store the jobs depend on
type SessionStore interface {
	ExpireSessions(ctx context.Context, cutoff time.Time) (int, error)
	Stats(ctx context.Context) (store.Stats, error)
}

// StatsSource reports counters of a long-lived component, such as the
// worker pool or a provider's circuit breaker
type StatsSource func() map[string]any

// Scheduler wraps robfig/cron and owns the maintenance jobs
type Scheduler struct {
	cron    *cron.Cron
	cfg     config.SchedulerConfig
	store   SessionStore
	sources map[string]StatsSource
	logger  *apperrors.Logger
	now     func() time.Time
}

// New creates a scheduler. Sources are logged by the stats job under their key.
func New(cfg config.SchedulerConfig, st SessionStore, sources map[string]StatsSource, logger *apperrors.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		cfg:     cfg,
		store:   st,
		sources: sources,
		logger:  logger,
		now:     time.Now,
	}
}

// Start registers the jobs and starts the cron loop. Jobs run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.logger.Info("Scheduler disabled")
		return nil
	}

	if s.cfg.StatsSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.StatsSchedule, func() { s.LogStats(ctx) }); err != nil {
			return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
				fmt.Sprintf("invalid scheduler.statsSchedule %q", s.cfg.StatsSchedule), err)
		}
	}
	if s.cfg.CleanupSchedule != "" && s.cfg.SessionTTL > 0 {
		if _, err := s.cron.AddFunc(s.cfg.CleanupSchedule, func() { s.ExpireSessions(ctx) }); err != nil {
			return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
				fmt.Sprintf("invalid scheduler.cleanupSchedule %q", s.cfg.CleanupSchedule), err)
		}
	}

	s.cron.Start()
	s.logger.Info("Scheduler started",
		"jobs", len(s.cron.Entries()),
		"stats_schedule", s.cfg.StatsSchedule,
		"cleanup_schedule", s.cfg.CleanupSchedule,
		"session_ttl", s.cfg.SessionTTL)
	return nil
}

// Stop halts the cron loop and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// LogStats logs store counters and every registered stats source
func (s *Scheduler) LogStats(ctx context.Context) {
	args := make([]any, 0, 2*(len(s.sources)+1))
	if stats, err := s.store.Stats(ctx); err != nil {
		s.logger.LogError(err, "Failed to collect store stats")
	} else {
		args = append(args, "store", stats)
	}
	for name, source := range s.sources {
		args = append(args, name, source())
	}
	s.logger.Info("Service stats", args...)
}

// ExpireSessions marks in-progress sessions older than the TTL as expired
func (s *Scheduler) ExpireSessions(ctx context.Context) int {
	cutoff := s.now().Add(-s.cfg.SessionTTL)
	n, err := s.store.ExpireSessions(ctx, cutoff)
	if err != nil {
		s.logger.LogError(err, "Failed to expire practice sessions")
		return 0
	}
	if n > 0 {
		s.logger.Info("Expired stale practice sessions", "count", n, "cutoff", cutoff)
	}
	return n
}
