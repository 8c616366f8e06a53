// Package app wires the configuration into providers, the pipeline, the
// store and the career service. Commands build one Container and share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/ai"
	"github.com/StealthPanther/ai-career-navigator/internal/career"
	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/observability"
	"github.com/StealthPanther/ai-career-navigator/internal/pipeline"
	"github.com/StealthPanther/ai-career-navigator/internal/scheduler"
	"github.com/StealthPanther/ai-career-navigator/internal/server"
	"github.com/StealthPanther/ai-career-navigator/internal/store"
)

// Options select the optional parts of a Container
type Options struct {
	Version string
	// Telemetry starts tracing, metrics and the Prometheus endpoint
	Telemetry bool
}

// Container owns every long-lived component
type Container struct {
	Config        *config.Config
	Logger        *apperrors.Logger
	Vault         *config.VaultClient
	Pool          *ai.WorkerPool
	Pipeline      *pipeline.Pipeline
	Prompts       *config.PromptStore
	Store         store.Store
	Service       *career.Service
	Observability *observability.ObservabilityManager

	version       string
	promptWatcher *config.PromptWatcher
	scheduler     *scheduler.Scheduler
	closers       []func(context.Context) error
}

// New builds a Container. Vault secrets are applied to cfg before any
// provider is created. On error every component built so far is closed.
func New(ctx context.Context, cfg *config.Config, logger *apperrors.Logger, opts Options) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger, version: opts.Version}
	built := false
	defer func() {
		if !built {
			_ = c.Close(context.Background())
		}
	}()

	var err error
	if c.Vault, err = config.ApplyVaultSecrets(cfg, logger); err != nil {
		return nil, err
	}

	if opts.Telemetry {
		c.Observability, err = observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, opts.Version), cfg)
		if err != nil {
			return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig, "failed to initialize observability", err)
		}
		c.closers = append(c.closers, c.Observability.Shutdown)
	}

	if c.Prompts, err = config.NewPromptStore(cfg.AI.Prompts); err != nil {
		return nil, err
	}

	if err = c.buildPipeline(ctx); err != nil {
		return nil, err
	}

	if c.Store, err = store.New(ctx, cfg.Store, logger); err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func(context.Context) error { return c.Store.Close() })

	c.Service = career.NewService(career.Deps{
		Pipeline: c.Pipeline,
		Config:   cfg,
		Prompts:  c.Prompts,
		Roadmaps: c.Store,
		History:  c.Store,
		Logger:   logger,
	})
	built = true
	return c, nil
}

// buildPipeline creates the worker pool and both provider tiers
func (c *Container) buildPipeline(ctx context.Context) error {
	cfg := c.Config
	c.Pool = ai.NewWorkerPool(cfg.AI.WorkerPool.Size)
	if err := c.Observability.RegisterPoolGauge(c.Pool); err != nil {
		c.Logger.LogError(err, "Failed to register worker pool gauges")
	}

	primary, err := ai.NewPrimaryProvider(ctx, cfg.AI.Primary, cfg.Observability.HealthCheck.AIModelCheckTimeout, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create primary provider: %w", err)
	}
	c.closers = append(c.closers, func(context.Context) error { return primary.Close() })

	secondary, err := ai.NewSecondaryProvider(ctx, cfg.AI.Secondary, c.Pool, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create secondary provider: %w", err)
	}
	c.closers = append(c.closers, func(context.Context) error { return secondary.Close() })

	c.Pipeline = pipeline.New(primary, secondary, pipeline.Options{
		Retries:    cfg.AI.Pipeline.Retries,
		MaxBackoff: cfg.AI.Pipeline.MaxBackoff,
	}, c.Logger)
	return nil
}

// Server builds the HTTP server on top of the container's components
func (c *Container) Server() *server.Server {
	deps := server.Deps{
		Service:       c.Service,
		Store:         c.Store,
		Pool:          c.Pool,
		Observability: c.Observability,
	}
	if c.Vault != nil {
		deps.Vault = c.Vault
	}
	return server.NewServer(c.Config, server.ServerConfigFrom(c.Config, c.version), deps, c.Logger)
}

// StartBackground starts the prompt watcher and the maintenance scheduler.
// Both stop on Close.
func (c *Container) StartBackground(ctx context.Context) error {
	if c.Config.AI.Prompts.Watch && len(c.Prompts.Files()) > 0 {
		c.promptWatcher = config.NewPromptWatcher(c.Prompts, c.Config.AI.Prompts.DebounceDelay, c.Logger)
		if err := c.promptWatcher.Start(); err != nil {
			return err
		}
		c.closers = append(c.closers, func(context.Context) error { return c.promptWatcher.Stop() })
	}

	c.scheduler = scheduler.New(c.Config.Scheduler, c.Store, c.statsSources(), c.Logger)
	if err := c.scheduler.Start(ctx); err != nil {
		return err
	}
	c.closers = append(c.closers, func(context.Context) error {
		c.scheduler.Stop()
		return nil
	})
	return nil
}

// statsSources exposes pool and breaker counters to the stats job
func (c *Container) statsSources() map[string]scheduler.StatsSource {
	sources := map[string]scheduler.StatsSource{
		"worker_pool": c.Pool.Stats,
	}
	if r, ok := c.Pipeline.Primary().(ai.BreakerReporter); ok {
		sources["primary_breaker"] = r.BreakerStats
	}
	if r, ok := c.Pipeline.Secondary().(ai.BreakerReporter); ok {
		sources["secondary_breaker"] = r.BreakerStats
	}
	return sources
}

// Close stops background work and releases components in reverse build order
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	if err := errors.Join(errs...); err != nil {
		c.Logger.LogError(err, "Failed to release components cleanly")
		return err
	}
	return nil
}
