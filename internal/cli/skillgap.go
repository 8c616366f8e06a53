package cli

import (
	"fmt"

	"github.com/StealthPanther/ai-career-navigator/internal/common"

	"github.com/spf13/cobra"
)

var skillGapCmd = &cobra.Command{
	Use:   "skillgap",
	Short: "Compare your skills with a target role",
	Long: `Compare current skills with what a target role requires and list the
missing, matching and trending skills. Skills come from --skills, from a
resume given with --resume, or both.`,
	Example: `  careernav skillgap --role "DevOps Engineer" --skills "Python, Git, Linux"
  careernav skillgap --role "Data Engineer" --resume resume.txt --format markdown`,
	Args: cobra.NoArgs,
	RunE: runSkillGap,
}

var skillGapFlags struct {
	role   string
	skills string
	resume string
}

func init() {
	skillGapCmd.Flags().StringVar(&skillGapFlags.role, "role", "", "Target role (required)")
	skillGapCmd.Flags().StringVar(&skillGapFlags.skills, "skills", "", "Comma-separated current skills")
	skillGapCmd.Flags().StringVar(&skillGapFlags.resume, "resume", "", "Plain-text resume to take skills from")
	_ = skillGapCmd.MarkFlagRequired("role")
	addOutputFlags(skillGapCmd)
}

func runSkillGap(cmd *cobra.Command, args []string) error {
	container, err := newContainer(cmd, false)
	if err != nil {
		return err
	}
	defer closeContainer(cmd, container)

	skills := common.ParseSkillList(skillGapFlags.skills)
	if skillGapFlags.resume != "" {
		fromResume, err := readResumeSkills(cmd.Context(), container, skillGapFlags.resume)
		if err != nil {
			return err
		}
		skills = append(skills, fromResume...)
	}
	if len(skills) == 0 {
		return fmt.Errorf("no skills given: use --skills or --resume")
	}

	result, err := container.Service.AnalyzeSkillGap(cmd.Context(), skills, skillGapFlags.role)
	if err != nil {
		return err
	}
	common.ReportResult(container.Logger, result)
	container.Logger.Info("Skill gap analyzed",
		"target_role", skillGapFlags.role,
		"missing", len(result.Value.MissingSkills),
		"match_percentage", result.Value.MatchPercentage)

	return common.NewOutputHandler(container.Logger).HandleOutput(result.Value, outputConfig)
}
