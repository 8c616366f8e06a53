package cli

import (
	"context"

	"github.com/StealthPanther/ai-career-navigator/internal/app"
	"github.com/StealthPanther/ai-career-navigator/internal/common"
	"github.com/StealthPanther/ai-career-navigator/internal/config"
	"github.com/StealthPanther/ai-career-navigator/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "careernav",
	Short: "AI career guidance from the command line",
	Long: `careernav turns a resume into a skill gap analysis, a week-by-week
learning roadmap and mock interview practice. Every command answers even when
the AI providers are unreachable: it falls back to a secondary model and then
to a built-in answer, and says so.`,
	SilenceUsage: true,
}

var outputConfig common.CommandConfig

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	// Attach the config and logger to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// newContainer builds the application components for one command run.
// The caller closes it.
func newContainer(cmd *cobra.Command, telemetry bool) (*app.Container, error) {
	return app.New(cmd.Context(), getConfigFromContext(cmd.Context()), getLoggerFromContext(cmd.Context()),
		app.Options{Version: Version, Telemetry: telemetry})
}

// closeContainer releases the container, logging rather than failing the command
func closeContainer(cmd *cobra.Command, c *app.Container) {
	if err := c.Close(context.WithoutCancel(cmd.Context())); err != nil {
		getLoggerFromContext(cmd.Context()).LogError(err, "Failed to shut down cleanly")
	}
}

// resolveOutputFormat applies the configured default format and validates it
func resolveOutputFormat(cmd *cobra.Command, _ []string) error {
	cfg := getConfigFromContext(cmd.Context())
	if outputConfig.OutputFormat == "" {
		outputConfig.OutputFormat = cfg.App.DefaultFormat
	}
	outputConfig.MaxFileSize = cfg.App.MaxFileSize
	return common.ValidateOutputFormat(outputConfig.OutputFormat, cfg.App.SupportedFormats)
}

// addOutputFlags registers --output and --format on a task command
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&outputConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return getConfigFromContext(cmd.Context()).App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
	cmd.PreRunE = resolveOutputFormat
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(skillGapCmd)
	rootCmd.AddCommand(roadmapCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(versionCmd)
}
