package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	"github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/types"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := config.Default()
	cfg.AI.Primary.APIKey = ""
	cfg.AI.Secondary.APIKey = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})

	err := Execute(context.Background(), cfg, errors.NewWithHandler(slog.NewTextHandler(io.Discard, nil)))
	return out.String(), err
}

// resetFlags restores every flag to its default so commands do not leak state between tests
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestQuestionsCommandFallsBackOffline(t *testing.T) {
	out := filepath.Join(t.TempDir(), "questions.json")

	_, err := runCLI(t, "questions", "--role", "SRE", "--count", "3", "--output", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var questions []types.InterviewQuestion
	require.NoError(t, json.Unmarshal(data, &questions))
	assert.Len(t, questions, 3)
}

func TestRoadmapCommandWritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "plan.xlsx")

	_, err := runCLI(t, "roadmap", "--role", "DevOps Engineer", "--missing", "AWS, Kubernetes",
		"--weeks", "4", "--xlsx", xlsx, "--output", filepath.Join(dir, "plan.json"))
	require.NoError(t, err)

	info, err := os.Stat(xlsx)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestCommandArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown difficulty", []string{"questions", "--role", "SRE", "--difficulty", "extreme"}},
		{"unsupported format", []string{"questions", "--role", "SRE", "--format", "yaml"}},
		{"roadmap without skills", []string{"roadmap", "--role", "SRE"}},
		{"evaluate without answer", []string{"evaluate", "--question", "Why Go?"}},
		{"missing resume file", []string{"extract", "does-not-exist.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "careernav version dev")
}
