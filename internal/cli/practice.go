package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/StealthPanther/ai-career-navigator/internal/career"
	"github.com/StealthPanther/ai-career-navigator/internal/common"
	"github.com/StealthPanther/ai-career-navigator/internal/pipeline"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

const (
	practiceAnswer = "Answer"
	practiceSkip   = "Skip"
	practiceFinish = "Finish and score"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run an interactive mock interview",
	Long: `Generate interview questions for a role, answer them one by one in the
terminal and get every answer scored at the end. Skipped questions do not
count towards the overall score.`,
	Example: `  careernav practice --role "Backend Engineer" --difficulty medium --count 3`,
	Args:    cobra.NoArgs,
	RunE:    runPractice,
}

var practiceFlags struct {
	user       string
	role       string
	difficulty string
	count      int
}

func init() {
	practiceCmd.Flags().StringVar(&practiceFlags.user, "user", "local", "User ID the session is stored under")
	practiceCmd.Flags().StringVar(&practiceFlags.role, "role", "", "Target role (required)")
	practiceCmd.Flags().StringVar(&practiceFlags.difficulty, "difficulty", "medium", "Question difficulty: easy, medium or hard")
	practiceCmd.Flags().IntVarP(&practiceFlags.count, "count", "n", 5, "Number of questions")
	_ = practiceCmd.MarkFlagRequired("role")
}

func runPractice(cmd *cobra.Command, args []string) error {
	difficulty, err := common.ValidateDifficulty(practiceFlags.difficulty)
	if err != nil {
		return err
	}

	container, err := newContainer(cmd, false)
	if err != nil {
		return err
	}
	defer closeContainer(cmd, container)
	ctx := cmd.Context()

	session, tier, err := container.Service.NewPracticeSession(ctx, practiceFlags.user, practiceFlags.role, difficulty, practiceFlags.count)
	if err != nil {
		return err
	}
	if tier == pipeline.TierFallback {
		fmt.Println("AI providers are unavailable, using the built-in question set.")
	}
	if session, err = container.Store.SaveSession(ctx, session); err != nil {
		return err
	}

	var answers []career.AnswerSubmission
	for i, q := range session.Questions {
		fmt.Printf("\nQuestion %d/%d [%s]\n%s\n", i+1, len(session.Questions), q.Question.Category, q.Question.Question)

		answer, err := askAnswer()
		if errors.Is(err, errFinished) {
			break
		}
		if err != nil {
			return err
		}
		if answer == "" {
			continue
		}
		answers = append(answers, career.AnswerSubmission{
			Question: q.Question.Question,
			Answer:   answer,
			Category: q.Question.Category,
		})
	}

	if len(answers) == 0 {
		fmt.Println("No answers given, the session stays open.")
		return nil
	}

	fmt.Printf("\nScoring %d answer(s)...\n", len(answers))
	completed, err := container.Service.SubmitSession(ctx, session, answers)
	if err != nil {
		return err
	}
	if _, err := container.Store.SaveSession(ctx, completed); err != nil {
		return err
	}

	for _, q := range completed.Questions {
		if q.Evaluation == nil {
			continue
		}
		fmt.Printf("\n%s\n  Score: %d/100\n  %s\n", q.Question.Question, q.Evaluation.Score, q.Evaluation.Feedback)
	}
	fmt.Printf("\nOverall score: %.1f/100 (session %s)\n", completed.OverallScore, completed.ID)
	return nil
}

var errFinished = errors.New("practice finished")

// askAnswer asks whether to answer, skip or finish and reads the answer.
// It returns an empty answer for a skipped question.
func askAnswer() (string, error) {
	choice := promptui.Select{
		Label: "Next step",
		Items: []string{practiceAnswer, practiceSkip, practiceFinish},
	}
	_, selected, err := choice.Run()
	if err != nil {
		return "", err
	}

	switch selected {
	case practiceSkip:
		return "", nil
	case practiceFinish:
		return "", errFinished
	}

	prompt := promptui.Prompt{
		Label: "Your answer",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("answer cannot be empty")
			}
			return nil
		},
	}
	answer, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
