package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/StealthPanther/ai-career-navigator/internal/common"
	"github.com/StealthPanther/ai-career-navigator/internal/pipeline"
	"github.com/StealthPanther/ai-career-navigator/internal/types"

	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [answer-file]",
	Short: "Score an answer to an interview question",
	Long: `Evaluate an interview answer and report a 0-100 score with feedback,
strengths and improvements. The answer is read from the file argument or
given inline with --answer. Answers under ten characters score zero without
calling a model.`,
	Example: `  careernav evaluate --question "Explain CAP" --answer "Consistency, availability..."
  careernav evaluate answer.txt --question "Describe a production incident" --category behavioral`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvaluate,
}

var evaluateFlags struct {
	question string
	answer   string
	category string
}

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateFlags.question, "question", "q", "", "Interview question (required)")
	evaluateCmd.Flags().StringVarP(&evaluateFlags.answer, "answer", "a", "", "Answer text, instead of a file")
	evaluateCmd.Flags().StringVar(&evaluateFlags.category, "category", types.CategoryTechnical, "Question category: technical, behavioral or system_design")
	_ = evaluateCmd.MarkFlagRequired("question")
	addOutputFlags(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (evaluateFlags.answer == "") {
		return fmt.Errorf("give the answer either as a file argument or with --answer")
	}

	container, err := newContainer(cmd, false)
	if err != nil {
		return err
	}
	defer closeContainer(cmd, container)
	logger := container.Logger

	evaluate := func(ctx context.Context, answer string) (pipeline.Result[types.InterviewEvaluation], error) {
		return container.Service.EvaluateAnswer(ctx, evaluateFlags.question, answer, evaluateFlags.category), nil
	}
	logDetails := func(answer string, cfg common.CommandConfig) {
		logger.Info("Starting answer evaluation",
			"question_chars", len(evaluateFlags.question),
			"answer_chars", len(answer),
			"output_format", cfg.OutputFormat)
	}

	if len(args) == 0 {
		logDetails(evaluateFlags.answer, outputConfig)
		result, _ := evaluate(cmd.Context(), evaluateFlags.answer)
		common.ReportResult(logger, result)
		return common.NewOutputHandler(logger).HandleOutput(result.Value, outputConfig)
	}

	err = common.RunTaskCommand(cmd.Context(), logger, outputConfig, args,
		func(contents []string) (string, error) { return strings.TrimSpace(contents[0]), nil },
		evaluate,
		logDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to evaluate answer: %w", err)
	}
	return nil
}
