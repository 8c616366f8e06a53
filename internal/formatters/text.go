package formatters

import (
	"fmt"
	"slices"
	"strings"

	"github.com/StealthPanther/ai-career-navigator/internal/types"
)

// ResumeTextFormatter handles text formatting for extracted resumes
type ResumeTextFormatter struct{}

func (f *ResumeTextFormatter) Format(data any) (string, error) {
	r, ok := data.(types.ResumeRecord)
	if !ok {
		return "", fmt.Errorf("expected ResumeRecord, got %T", data)
	}

	var out strings.Builder
	out.WriteString("=== RESUME ===\n\n")
	fmt.Fprintf(&out, "Name:  %s\n", orDash(r.Name))
	fmt.Fprintf(&out, "Email: %s\n", orDash(r.Email))
	fmt.Fprintf(&out, "Phone: %s\n", orDash(r.Phone))
	fmt.Fprintf(&out, "Years of experience: %d\n\n", r.YearsOfExperience)

	out.WriteString("Skills:\n")
	out.WriteString(bulletList(r.Skills, "  - "))
	out.WriteString("\n=== EXPERIENCE ===\n")
	for _, e := range r.Experience {
		fmt.Fprintf(&out, "\n%s at %s (%s)\n", e.Title, e.Company, e.Duration)
		if e.Description != "" {
			fmt.Fprintf(&out, "  %s\n", e.Description)
		}
	}
	out.WriteString("\n=== EDUCATION ===\n")
	for _, e := range r.Education {
		fmt.Fprintf(&out, "\n%s, %s %s\n", e.Degree, e.Institution, e.Year)
	}
	return out.String(), nil
}

func (f *ResumeTextFormatter) SupportedType() string { return TypeResume }

// SkillGapTextFormatter handles text formatting for skill gap analyses
type SkillGapTextFormatter struct{}

func (f *SkillGapTextFormatter) Format(data any) (string, error) {
	a, ok := data.(types.SkillGapAnalysis)
	if !ok {
		return "", fmt.Errorf("expected SkillGapAnalysis, got %T", data)
	}

	var out strings.Builder
	out.WriteString("=== SKILL GAP ANALYSIS ===\n\n")
	fmt.Fprintf(&out, "Match: %g%%\n\n", a.MatchPercentage)
	out.WriteString("Required skills:\n")
	out.WriteString(bulletList(a.RequiredSkills, "  - "))
	out.WriteString("\nMatching skills:\n")
	out.WriteString(bulletList(a.MatchingSkills, "  + "))
	out.WriteString("\nMissing skills:\n")
	out.WriteString(bulletList(a.MissingSkills, "  x "))

	if len(a.TrendingSkills) > 0 {
		out.WriteString("\n=== TRENDING SKILLS ===\n\n")
		for _, skill := range a.TrendingSkills {
			stats, ok := a.TrendingSkillsComparison[skill]
			if !ok {
				fmt.Fprintf(&out, "%s\n", skill)
				continue
			}
			fmt.Fprintf(&out, "%s (demand: %s, growth: %s, you have it: %s)\n",
				skill, orDash(stats.Demand), orDash(stats.Growth), hasSkill(stats.HasSkill))
		}
	}
	return out.String(), nil
}

func (f *SkillGapTextFormatter) SupportedType() string { return TypeSkillGap }

// RoadmapTextFormatter handles text formatting for roadmaps
type RoadmapTextFormatter struct{}

func (f *RoadmapTextFormatter) Format(data any) (string, error) {
	r, ok := data.(types.Roadmap)
	if !ok {
		return "", fmt.Errorf("expected Roadmap, got %T", data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "=== LEARNING ROADMAP (%d weeks) ===\n", len(r.WeeklyPlan))
	for _, w := range r.WeeklyPlan {
		fmt.Fprintf(&out, "\nWeek %d: %s\n", w.Week, w.Topic)
		fmt.Fprintf(&out, "  Goal: %s\n", w.Goal)
		if w.WhatToLearn != "" {
			fmt.Fprintf(&out, "  Learn: %s\n", w.WhatToLearn)
		}
		if w.HowToLearn != "" {
			fmt.Fprintf(&out, "  How: %s\n", w.HowToLearn)
		}
		for _, res := range w.Resources {
			fmt.Fprintf(&out, "  * %s [%s] %s\n", res.Title, res.Type, res.URL)
		}
		if w.MiniProject.Title != "" {
			fmt.Fprintf(&out, "  Project: %s (%s)\n", w.MiniProject.Title, w.MiniProject.Difficulty)
		}
		fmt.Fprintf(&out, "  Estimated hours: %g\n", w.EstimatedHours)
	}
	return out.String(), nil
}

func (f *RoadmapTextFormatter) SupportedType() string { return TypeRoadmap }

// QuestionsTextFormatter handles text formatting for interview question sets
type QuestionsTextFormatter struct{}

func (f *QuestionsTextFormatter) Format(data any) (string, error) {
	qs, ok := data.([]types.InterviewQuestion)
	if !ok {
		return "", fmt.Errorf("expected []InterviewQuestion, got %T", data)
	}

	var out strings.Builder
	out.WriteString("=== INTERVIEW QUESTIONS ===\n")
	for i, q := range qs {
		fmt.Fprintf(&out, "\n%d. [%s/%s] %s\n", i+1, q.Category, q.Difficulty, q.Question)
		if q.SampleAnswerHints != "" {
			fmt.Fprintf(&out, "   Hint: %s\n", q.SampleAnswerHints)
		}
	}
	return out.String(), nil
}

func (f *QuestionsTextFormatter) SupportedType() string { return TypeQuestions }

// EvaluationTextFormatter handles text formatting for answer evaluations
type EvaluationTextFormatter struct{}

func (f *EvaluationTextFormatter) Format(data any) (string, error) {
	e, ok := data.(types.InterviewEvaluation)
	if !ok {
		return "", fmt.Errorf("expected InterviewEvaluation, got %T", data)
	}

	var out strings.Builder
	out.WriteString("=== ANSWER EVALUATION ===\n\n")
	fmt.Fprintf(&out, "Score: %d/10\n\n", e.Score)
	out.WriteString(e.Feedback)
	out.WriteString("\n\nStrengths:\n")
	out.WriteString(bulletList(e.Strengths, "  + "))
	out.WriteString("\nImprovements:\n")
	out.WriteString(bulletList(e.Improvements, "  - "))
	return out.String(), nil
}

func (f *EvaluationTextFormatter) SupportedType() string { return TypeEvaluation }

func bulletList(items []string, prefix string) string {
	if len(items) == 0 {
		return prefix + "(none)\n"
	}
	var out strings.Builder
	for _, item := range items {
		out.WriteString(prefix)
		out.WriteString(item)
		out.WriteString("\n")
	}
	return out.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func hasSkill(v *bool) string {
	switch {
	case v == nil:
		return "unknown"
	case *v:
		return "yes"
	default:
		return "no"
	}
}

// sortedKeys returns comparison keys in a stable order
func sortedKeys(m map[string]types.TrendingSkillStats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
