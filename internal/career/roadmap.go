package career

import (
	"context"
	"fmt"
	"strings"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/pipeline"
	"github.com/StealthPanther/ai-career-navigator/internal/schemas"
	"github.com/StealthPanther/ai-career-navigator/internal/types"
)

// WeekIssue describes one numbering problem in a weekly plan
type WeekIssue struct {
	Index int    `json:"index"`
	Week  int    `json:"week"`
	Kind  string `json:"kind"` // duplicate, out_of_range, out_of_order or gap
}

func (w WeekIssue) String() string {
	return fmt.Sprintf("%s at index %d (week %d)", w.Kind, w.Index, w.Week)
}

// ValidateWeeks checks that plan is numbered exactly 1..n. It reports every
// duplicate, out-of-range number and gap. An empty result means the plan is valid.
func ValidateWeeks(plan []types.WeekPlan, n int) []WeekIssue {
	var issues []WeekIssue
	seen := make(map[int]bool, len(plan))
	for i, week := range plan {
		switch {
		case week.Week < 1 || week.Week > n:
			issues = append(issues, WeekIssue{Index: i, Week: week.Week, Kind: "out_of_range"})
		case seen[week.Week]:
			issues = append(issues, WeekIssue{Index: i, Week: week.Week, Kind: "duplicate"})
		default:
			if week.Week != i+1 {
				issues = append(issues, WeekIssue{Index: i, Week: week.Week, Kind: "out_of_order"})
			}
		}
		seen[week.Week] = true
	}
	for w := 1; w <= n; w++ {
		if !seen[w] {
			issues = append(issues, WeekIssue{Index: -1, Week: w, Kind: "gap"})
		}
	}
	return issues
}

// ResolveWeeks applies the default week count and rejects counts above the maximum
func (s *Service) ResolveWeeks(weeks int) (int, error) {
	if weeks <= 0 {
		return s.cfg.Roadmap.DefaultWeeks, nil
	}
	if weeks > s.cfg.Roadmap.MaxWeeks {
		return 0, apperrors.NewInputRejected(apperrors.ErrCodeInvalidWeekCount,
			fmt.Sprintf("a roadmap can span at most %d weeks", s.cfg.Roadmap.MaxWeeks)).
			WithContext("weeks", weeks)
	}
	return weeks, nil
}

// GenerateRoadmap builds a weekly learning plan focused on the missing skills.
// Numbering problems in model output are logged and the plan is kept as returned.
func (s *Service) GenerateRoadmap(ctx context.Context, missingSkills []string, targetRole string, weeks int) (pipeline.Result[types.Roadmap], error) {
	targetRole = strings.TrimSpace(targetRole)
	if targetRole == "" {
		return pipeline.Result[types.Roadmap]{}, apperrors.NewInputRejected(apperrors.ErrCodeMissingField,
			"target role is required")
	}
	weeks, err := s.ResolveWeeks(weeks)
	if err != nil {
		return pipeline.Result[types.Roadmap]{}, err
	}

	sampling, useSystem := s.sampling(config.TaskRoadmap)
	data := struct {
		MissingSkills []string
		TargetRole    string
		Weeks         int
	}{missingSkills, targetRole, weeks}

	task := pipeline.Task[types.Roadmap]{
		Name:            config.TaskRoadmap,
		Schema:          schemas.Roadmap,
		Prompt:          s.prompt(config.TaskRoadmap, data),
		Sampling:        sampling,
		UseSystemPrompt: useSystem,
		Fallback:        func() types.Roadmap { return fallbackRoadmap(targetRole, weeks) },
	}

	result := pipeline.RunStructured(ctx, s.pipeline, task)
	if issues := ValidateWeeks(result.Value.WeeklyPlan, weeks); len(issues) > 0 {
		details := make([]string, 0, len(issues))
		for _, issue := range issues {
			details = append(details, issue.String())
		}
		s.logger.Warn("Roadmap week numbering is inconsistent, keeping plan as returned",
			"tier", result.Tier,
			"requested_weeks", weeks,
			"returned_weeks", len(result.Value.WeeklyPlan),
			"issues", details)
	}

	s.logger.Info("Roadmap generated",
		"tier", result.Tier,
		"target_role", targetRole,
		"weeks", len(result.Value.WeeklyPlan))
	return result, nil
}
