package cli

import (
	"context"

	"github.com/StealthPanther/ai-career-navigator/internal/app"
	"github.com/StealthPanther/ai-career-navigator/internal/common"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [resume-file]",
	Short: "Extract a structured profile from a plain-text resume",
	Long: `Extract name, contact details, skills, education and experience from
a resume. The file must already be plain text; convert PDF or DOCX first.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	addOutputFlags(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	container, err := newContainer(cmd, false)
	if err != nil {
		return err
	}
	defer closeContainer(cmd, container)
	logger := container.Logger

	return common.RunTaskCommand(cmd.Context(), logger, outputConfig, args,
		func(contents []string) (string, error) { return contents[0], nil },
		container.Service.ExtractResume,
		func(text string, cfg common.CommandConfig) {
			logger.Info("Starting resume extraction",
				"resume_chars", len(text),
				"output_format", cfg.OutputFormat)
		},
	)
}

// readResumeSkills extracts skills from a resume file for commands that accept --resume
func readResumeSkills(ctx context.Context, container *app.Container, path string) ([]string, error) {
	contents, err := common.NewFileProcessor(container.Config.App.MaxFileSize, container.Logger).ValidateAndReadFiles(path)
	if err != nil {
		return nil, err
	}
	res, err := container.Service.ExtractResume(ctx, contents[0])
	if err != nil {
		return nil, err
	}
	common.ReportResult(container.Logger, res)
	return res.Value.Skills, nil
}
