package cli

import (
	"fmt"

	"github.com/StealthPanther/ai-career-navigator/internal/common"
	"github.com/StealthPanther/ai-career-navigator/internal/formatters"

	"github.com/spf13/cobra"
)

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Generate a week-by-week learning roadmap",
	Long: `Generate a learning roadmap for the skills missing for a target role.
Give the missing skills with --missing, or give your current skills with
--skills to run a skill gap analysis first. --xlsx also writes the roadmap
as a spreadsheet.`,
	Example: `  careernav roadmap --role "DevOps Engineer" --missing "AWS, Kubernetes" --weeks 8
  careernav roadmap --role "DevOps Engineer" --skills "Python, Git" --xlsx roadmap.xlsx`,
	Args: cobra.NoArgs,
	RunE: runRoadmap,
}

var roadmapFlags struct {
	role    string
	missing string
	skills  string
	weeks   int
	xlsx    string
}

func init() {
	roadmapCmd.Flags().StringVar(&roadmapFlags.role, "role", "", "Target role (required)")
	roadmapCmd.Flags().StringVar(&roadmapFlags.missing, "missing", "", "Comma-separated skills to learn")
	roadmapCmd.Flags().StringVar(&roadmapFlags.skills, "skills", "", "Comma-separated current skills, used when --missing is empty")
	roadmapCmd.Flags().IntVar(&roadmapFlags.weeks, "weeks", 0, "Roadmap length in weeks (default from config)")
	roadmapCmd.Flags().StringVar(&roadmapFlags.xlsx, "xlsx", "", "Also write the roadmap to this .xlsx file")
	_ = roadmapCmd.MarkFlagRequired("role")
	addOutputFlags(roadmapCmd)
}

func runRoadmap(cmd *cobra.Command, args []string) error {
	container, err := newContainer(cmd, false)
	if err != nil {
		return err
	}
	defer closeContainer(cmd, container)
	ctx := cmd.Context()

	missing := common.ParseSkillList(roadmapFlags.missing)
	if len(missing) == 0 {
		skills := common.ParseSkillList(roadmapFlags.skills)
		if len(skills) == 0 {
			return fmt.Errorf("no skills given: use --missing or --skills")
		}
		gap, err := container.Service.AnalyzeSkillGap(ctx, skills, roadmapFlags.role)
		if err != nil {
			return err
		}
		common.ReportResult(container.Logger, gap)
		missing = gap.Value.MissingSkills
	}

	result, err := container.Service.GenerateRoadmap(ctx, missing, roadmapFlags.role, roadmapFlags.weeks)
	if err != nil {
		return err
	}
	common.ReportResult(container.Logger, result)

	output := common.NewOutputHandler(container.Logger)
	if roadmapFlags.xlsx != "" {
		data, err := formatters.RoadmapXLSX(roadmapFlags.role, result.Value)
		if err != nil {
			return fmt.Errorf("failed to render roadmap workbook: %w", err)
		}
		if err := output.WriteBinary(roadmapFlags.xlsx, data); err != nil {
			return err
		}
	}
	return output.HandleOutput(result.Value, outputConfig)
}
