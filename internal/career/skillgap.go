package career

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/pipeline"
	"github.com/StealthPanther/ai-career-navigator/internal/schemas"
	"github.com/StealthPanther/ai-career-navigator/internal/types"
)

// AnalyzeSkillGap compares current skills with what the target role requires
func (s *Service) AnalyzeSkillGap(ctx context.Context, currentSkills []string, targetRole string) (pipeline.Result[types.SkillGapAnalysis], error) {
	targetRole = strings.TrimSpace(targetRole)
	if targetRole == "" {
		return pipeline.Result[types.SkillGapAnalysis]{}, apperrors.NewInputRejected(apperrors.ErrCodeMissingField,
			"target role is required")
	}

	sampling, useSystem := s.sampling(config.TaskSkillGap)
	data := struct {
		CurrentSkills []string
		TargetRole    string
	}{currentSkills, targetRole}

	task := pipeline.Task[types.SkillGapAnalysis]{
		Name:            config.TaskSkillGap,
		Schema:          schemas.SkillGap,
		Prompt:          s.prompt(config.TaskSkillGap, data),
		Sampling:        sampling,
		UseSystemPrompt: useSystem,
		Decode: func(raw []byte) (types.SkillGapAnalysis, error) {
			return s.decodeSkillGap(raw, currentSkills)
		},
		Normalize: normalizeSkillGap,
		Fallback:  func() types.SkillGapAnalysis { return fallbackSkillGap(currentSkills) },
	}

	result := pipeline.RunStructured(ctx, s.pipeline, task)
	if overlap := intersect(result.Value.MissingSkills, result.Value.MatchingSkills); len(overlap) > 0 {
		s.logger.Warn("Skill gap lists overlap",
			"tier", result.Tier,
			"skills", overlap)
	}
	s.logger.Info("Skill gap analyzed",
		"tier", result.Tier,
		"target_role", targetRole,
		"missing", len(result.Value.MissingSkills),
		"matching", len(result.Value.MatchingSkills))
	return result, nil
}

// decodeSkillGap decodes the analysis and synthesizes a has_skill comparison
// when the model omits trending_skills_comparison or sends something other than an object
func (s *Service) decodeSkillGap(raw []byte, currentSkills []string) (types.SkillGapAnalysis, error) {
	var aux struct {
		RequiredSkills           []string        `json:"required_skills"`
		MissingSkills            []string        `json:"missing_skills"`
		MatchingSkills           []string        `json:"matching_skills"`
		MatchPercentage          float64         `json:"match_percentage"`
		TrendingSkills           []string        `json:"trending_skills"`
		TrendingSkillsComparison json.RawMessage `json:"trending_skills_comparison"`
	}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return types.SkillGapAnalysis{}, err
	}

	analysis := types.SkillGapAnalysis{
		RequiredSkills:  aux.RequiredSkills,
		MissingSkills:   aux.MissingSkills,
		MatchingSkills:  aux.MatchingSkills,
		MatchPercentage: aux.MatchPercentage,
		TrendingSkills:  aux.TrendingSkills,
	}

	var comparison map[string]types.TrendingSkillStats
	if len(aux.TrendingSkillsComparison) > 0 {
		if err := json.Unmarshal(aux.TrendingSkillsComparison, &comparison); err != nil {
			comparison = nil
		}
	}
	if comparison == nil {
		s.logger.Warn("Trending skills comparison missing, synthesizing from current skills",
			"trending_skills", len(aux.TrendingSkills))
		comparison = synthesizeComparison(aux.TrendingSkills, currentSkills)
	}
	analysis.TrendingSkillsComparison = comparison
	return analysis, nil
}

// synthesizeComparison marks each trending skill with whether the user already has it
func synthesizeComparison(trending, currentSkills []string) map[string]types.TrendingSkillStats {
	have := skillSet(currentSkills)
	comparison := make(map[string]types.TrendingSkillStats, len(trending))
	for _, skill := range trending {
		hasSkill := have[strings.ToLower(strings.TrimSpace(skill))]
		comparison[skill] = types.TrendingSkillStats{HasSkill: &hasSkill}
	}
	return comparison
}

func normalizeSkillGap(a types.SkillGapAnalysis) types.SkillGapAnalysis {
	if a.RequiredSkills == nil {
		a.RequiredSkills = []string{}
	}
	if a.MissingSkills == nil {
		a.MissingSkills = []string{}
	}
	if a.MatchingSkills == nil {
		a.MatchingSkills = []string{}
	}
	if a.TrendingSkills == nil {
		a.TrendingSkills = []string{}
	}
	a.MatchPercentage = min(max(a.MatchPercentage, 0), 100)
	return a
}

// intersect returns skills present in both lists, compared case-insensitively
func intersect(a, b []string) []string {
	set := skillSet(b)
	var out []string
	for _, skill := range a {
		if set[strings.ToLower(strings.TrimSpace(skill))] {
			out = append(out, skill)
		}
	}
	return out
}
