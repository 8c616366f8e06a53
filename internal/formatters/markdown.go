package formatters

import (
	"fmt"
	"strings"

	"github.com/StealthPanther/ai-career-navigator/internal/types"
)

// ResumeMarkdownFormatter handles markdown formatting for extracted resumes
type ResumeMarkdownFormatter struct{}

func (f *ResumeMarkdownFormatter) Format(data any) (string, error) {
	r, ok := data.(types.ResumeRecord)
	if !ok {
		return "", fmt.Errorf("expected ResumeRecord, got %T", data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "# %s\n\n", orDash(r.Name))
	fmt.Fprintf(&out, "- **Email:** %s\n", orDash(r.Email))
	fmt.Fprintf(&out, "- **Phone:** %s\n", orDash(r.Phone))
	fmt.Fprintf(&out, "- **Years of experience:** %d\n\n", r.YearsOfExperience)

	out.WriteString("## Skills\n\n")
	out.WriteString(bulletList(r.Skills, "- "))

	out.WriteString("\n## Experience\n")
	for _, e := range r.Experience {
		fmt.Fprintf(&out, "\n### %s, %s\n\n_%s_\n", e.Title, e.Company, e.Duration)
		if e.Description != "" {
			fmt.Fprintf(&out, "\n%s\n", e.Description)
		}
	}

	out.WriteString("\n## Education\n\n")
	for _, e := range r.Education {
		fmt.Fprintf(&out, "- %s, %s (%s)\n", e.Degree, e.Institution, orDash(e.Year))
	}
	return out.String(), nil
}

func (f *ResumeMarkdownFormatter) SupportedType() string { return TypeResume }

// SkillGapMarkdownFormatter handles markdown formatting for skill gap analyses
type SkillGapMarkdownFormatter struct{}

func (f *SkillGapMarkdownFormatter) Format(data any) (string, error) {
	a, ok := data.(types.SkillGapAnalysis)
	if !ok {
		return "", fmt.Errorf("expected SkillGapAnalysis, got %T", data)
	}

	var out strings.Builder
	out.WriteString("# Skill Gap Analysis\n\n")
	fmt.Fprintf(&out, "**Match:** %g%%\n\n", a.MatchPercentage)
	out.WriteString("## Matching Skills\n\n")
	out.WriteString(bulletList(a.MatchingSkills, "- "))
	out.WriteString("\n## Missing Skills\n\n")
	out.WriteString(bulletList(a.MissingSkills, "- "))

	if len(a.TrendingSkillsComparison) > 0 {
		out.WriteString("\n## Trending Skills\n\n")
		out.WriteString("| Skill | Demand | Avg. salary | Growth | You have it |\n")
		out.WriteString("|---|---|---|---|---|\n")
		for _, skill := range sortedKeys(a.TrendingSkillsComparison) {
			s := a.TrendingSkillsComparison[skill]
			fmt.Fprintf(&out, "| %s | %s | %s | %s | %s |\n",
				skill, orDash(s.Demand), orDash(s.AvgSalary), orDash(s.Growth), hasSkill(s.HasSkill))
		}
	}
	return out.String(), nil
}

func (f *SkillGapMarkdownFormatter) SupportedType() string { return TypeSkillGap }

// RoadmapMarkdownFormatter handles markdown formatting for roadmaps
type RoadmapMarkdownFormatter struct{}

func (f *RoadmapMarkdownFormatter) Format(data any) (string, error) {
	r, ok := data.(types.Roadmap)
	if !ok {
		return "", fmt.Errorf("expected Roadmap, got %T", data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "# Learning Roadmap (%d weeks)\n", len(r.WeeklyPlan))
	for _, w := range r.WeeklyPlan {
		fmt.Fprintf(&out, "\n## Week %d: %s\n\n", w.Week, w.Topic)
		fmt.Fprintf(&out, "**Goal:** %s\n\n", w.Goal)
		if w.WhatToLearn != "" {
			fmt.Fprintf(&out, "**What to learn:** %s\n\n", w.WhatToLearn)
		}
		if w.WhyLearnThis != "" {
			fmt.Fprintf(&out, "**Why:** %s\n\n", w.WhyLearnThis)
		}
		if len(w.Resources) > 0 {
			out.WriteString("### Resources\n\n")
			for _, res := range w.Resources {
				fmt.Fprintf(&out, "- [%s](%s) (%s, %s)\n", res.Title, res.URL, res.Type, res.Platform)
			}
			out.WriteString("\n")
		}
		if w.MiniProject.Title != "" {
			fmt.Fprintf(&out, "### Mini project: %s\n\n%s\n\n", w.MiniProject.Title, w.MiniProject.Description)
		}
		fmt.Fprintf(&out, "_Estimated hours: %g_\n", w.EstimatedHours)
	}
	return out.String(), nil
}

func (f *RoadmapMarkdownFormatter) SupportedType() string { return TypeRoadmap }

// QuestionsMarkdownFormatter handles markdown formatting for interview question sets
type QuestionsMarkdownFormatter struct{}

func (f *QuestionsMarkdownFormatter) Format(data any) (string, error) {
	qs, ok := data.([]types.InterviewQuestion)
	if !ok {
		return "", fmt.Errorf("expected []InterviewQuestion, got %T", data)
	}

	var out strings.Builder
	out.WriteString("# Interview Questions\n")
	for i, q := range qs {
		fmt.Fprintf(&out, "\n## %d. %s\n\n", i+1, q.Question)
		fmt.Fprintf(&out, "- **Category:** %s\n- **Difficulty:** %s\n", q.Category, q.Difficulty)
		if q.SampleAnswerHints != "" {
			fmt.Fprintf(&out, "\n> %s\n", q.SampleAnswerHints)
		}
	}
	return out.String(), nil
}

func (f *QuestionsMarkdownFormatter) SupportedType() string { return TypeQuestions }

// EvaluationMarkdownFormatter handles markdown formatting for answer evaluations
type EvaluationMarkdownFormatter struct{}

func (f *EvaluationMarkdownFormatter) Format(data any) (string, error) {
	e, ok := data.(types.InterviewEvaluation)
	if !ok {
		return "", fmt.Errorf("expected InterviewEvaluation, got %T", data)
	}

	var out strings.Builder
	out.WriteString("# Answer Evaluation\n\n")
	fmt.Fprintf(&out, "**Score:** %d/10\n\n%s\n\n", e.Score, e.Feedback)
	out.WriteString("## Strengths\n\n")
	out.WriteString(bulletList(e.Strengths, "- "))
	out.WriteString("\n## Improvements\n\n")
	out.WriteString(bulletList(e.Improvements, "- "))
	return out.String(), nil
}

func (f *EvaluationMarkdownFormatter) SupportedType() string { return TypeEvaluation }
