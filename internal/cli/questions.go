package cli

import (
	"github.com/StealthPanther/ai-career-navigator/internal/common"

	"github.com/spf13/cobra"
)

var questionsCmd = &cobra.Command{
	Use:     "questions",
	Short:   "Generate mock interview questions for a role",
	Example: `  careernav questions --role "Backend Engineer" --difficulty hard --count 8`,
	Args:    cobra.NoArgs,
	RunE:    runQuestions,
}

var questionsFlags struct {
	role       string
	difficulty string
	count      int
}

func init() {
	questionsCmd.Flags().StringVar(&questionsFlags.role, "role", "", "Target role (required)")
	questionsCmd.Flags().StringVar(&questionsFlags.difficulty, "difficulty", "medium", "Question difficulty: easy, medium or hard")
	questionsCmd.Flags().IntVarP(&questionsFlags.count, "count", "n", 5, "Number of questions")
	_ = questionsCmd.MarkFlagRequired("role")
	addOutputFlags(questionsCmd)
}

func runQuestions(cmd *cobra.Command, args []string) error {
	difficulty, err := common.ValidateDifficulty(questionsFlags.difficulty)
	if err != nil {
		return err
	}

	container, err := newContainer(cmd, false)
	if err != nil {
		return err
	}
	defer closeContainer(cmd, container)

	result, err := container.Service.GenerateQuestions(cmd.Context(), questionsFlags.role, difficulty, questionsFlags.count)
	if err != nil {
		return err
	}
	common.ReportResult(container.Logger, result)

	return common.NewOutputHandler(container.Logger).HandleOutput(result.Value, outputConfig)
}
