package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offlineConfig() *config.Config {
	cfg := config.Default()
	cfg.AI.Primary.APIKey = ""
	cfg.AI.Secondary.APIKey = ""
	cfg.Vault.Enabled = false
	return cfg
}

func TestContainerWithoutCredentialsDegrades(t *testing.T) {
	ctx := context.Background()
	logger := apperrors.NewWithHandler(slog.NewTextHandler(io.Discard, nil))

	c, err := New(ctx, offlineConfig(), logger, Options{Version: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close(context.Background())) })

	assert.Nil(t, c.Vault)
	assert.Nil(t, c.Observability)
	require.NotNil(t, c.Pipeline.Primary())
	require.NotNil(t, c.Pipeline.Secondary())

	res, err := c.Service.GenerateRoadmap(ctx, []string{"Kubernetes"}, "SRE", 4)
	require.NoError(t, err)
	assert.Equal(t, pipeline.TierFallback, res.Tier)
	assert.Len(t, res.Value.WeeklyPlan, 4)

	require.NoError(t, c.StartBackground(ctx))
	assert.Contains(t, c.statsSources(), "worker_pool")
	assert.NotNil(t, c.Server())
}

func TestContainerRejectsUnknownStore(t *testing.T) {
	cfg := offlineConfig()
	cfg.Store.Driver = "sqlite"

	c, err := New(context.Background(), cfg, apperrors.NewWithHandler(slog.NewTextHandler(io.Discard, nil)), Options{})
	require.Error(t, err)
	assert.Nil(t, c)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeConfig, appErr.Type)
}
