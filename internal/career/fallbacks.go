package career

import (
	"fmt"
	"strings"

	"github.com/StealthPanther/ai-career-navigator/internal/types"
)

// Static fallbacks. Each returns freshly allocated values so callers may mutate them.

const (
	chatFallback = "I am having trouble responding right now. Please try again later."

	chatGuidance = "I'm here to help with your learning journey! Please ask me a specific question " +
		"about your roadmap, skills, or career goals. For example: 'What should I learn first?' " +
		"or 'How do I get started with Python?'"

	shortAnswerFeedback = "Please provide a more detailed answer to receive feedback."
	evaluationFallback  = "Unable to evaluate at this time. Please try again."
)

func fallbackResume() types.ResumeRecord {
	return types.ResumeRecord{
		Skills:     []string{},
		Education:  []types.Education{},
		Experience: []types.Experience{},
	}
}

// fallbackSkillGap is a generic analysis. Missing skills exclude anything
// the user already has, so missing and matching never overlap.
func fallbackSkillGap(currentSkills []string) types.SkillGapAnalysis {
	have := skillSet(currentSkills)
	missing := []string{}
	for _, skill := range []string{"AWS", "Kubernetes", "System Design"} {
		if !have[strings.ToLower(skill)] {
			missing = append(missing, skill)
		}
	}

	return types.SkillGapAnalysis{
		RequiredSkills: []string{
			"Python", "AWS", "Docker", "Kubernetes", "System Design",
			"CI/CD", "SQL", "NoSQL", "Git", "REST APIs",
		},
		MissingSkills:   missing,
		MatchingSkills:  append([]string{}, currentSkills...),
		MatchPercentage: 65,
		TrendingSkills:  []string{"GenAI", "MLOps", "Rust", "Platform Engineering"},
		TrendingSkillsComparison: map[string]types.TrendingSkillStats{
			"GenAI": {Demand: "High", AvgSalary: "$160k+", Growth: "+40%", Reason: "AI integration is top priority"},
			"MLOps": {Demand: "High", AvgSalary: "$150k+", Growth: "+25%", Reason: "Modeling scaling needs"},
		},
	}
}

// fallbackRoadmap returns weeks numbered exactly 1..weeks
func fallbackRoadmap(targetRole string, weeks int) types.Roadmap {
	plan := make([]types.WeekPlan, 0, weeks)
	for i := 1; i <= weeks; i++ {
		plan = append(plan, types.WeekPlan{
			Week:         i,
			Topic:        fmt.Sprintf("Week %d: Advanced %s Fundamentals", i, targetRole),
			Goal:         "Master core concepts",
			WhatToLearn:  "Deep dive into architecture patterns and best practices.",
			WhyLearnThis: "Foundational knowledge required for senior roles.",
			Resources: []types.Resource{
				{Title: targetRole + " Full Course", URL: "https://youtube.com", Type: "Video", Platform: "YouTube"},
				{Title: "Official Documentation", URL: "https://docs.github.com", Type: "Documentation", Platform: "Docs"},
			},
			HowToLearn: "30% Theory, 70% Practice.",
			MiniProject: types.MiniProject{
				Title:       "Build a " + targetRole + " MVP",
				Description: "Create a fully functional prototype applying this week's concepts.",
				Difficulty:  "Intermediate",
			},
			EstimatedHours: 10,
		})
	}
	return types.Roadmap{WeeklyPlan: plan}
}

// fallbackQuestions returns the fixed pool truncated to count. It never pads.
func fallbackQuestions(targetRole, difficulty string, count int) []types.InterviewQuestion {
	pool := []types.InterviewQuestion{
		{
			Question:          fmt.Sprintf("Describe your experience with the core technologies required for a %s.", targetRole),
			Category:          types.CategoryTechnical,
			SampleAnswerHints: "Discuss specific projects, technologies used, and outcomes",
		},
		{
			Question:          "Tell me about a time when you faced a challenging technical problem. How did you approach it?",
			Category:          types.CategoryBehavioral,
			SampleAnswerHints: "Use STAR method: Situation, Task, Action, Result",
		},
		{
			Question:          fmt.Sprintf("How would you design a scalable system for %s requirements?", strings.ToLower(targetRole)),
			Category:          types.CategorySystemDesign,
			SampleAnswerHints: "Consider scalability, reliability, and trade-offs",
		},
		{
			Question:          "What are your biggest strengths and how do they apply to this role?",
			Category:          types.CategoryBehavioral,
			SampleAnswerHints: "Be specific with examples",
		},
		{
			Question:          fmt.Sprintf("Explain the most important best practices for %s.", targetRole),
			Category:          types.CategoryTechnical,
			SampleAnswerHints: "Cover coding standards, testing, and architecture",
		},
	}
	for i := range pool {
		pool[i].Difficulty = difficulty
	}
	return pool[:min(count, len(pool))]
}

func fallbackEvaluation() types.InterviewEvaluation {
	return types.InterviewEvaluation{
		Score:        5,
		Feedback:     evaluationFallback,
		Strengths:    []string{"Answer provided"},
		Improvements: []string{"Try again for detailed feedback"},
	}
}

func shortAnswerEvaluation() types.InterviewEvaluation {
	return types.InterviewEvaluation{
		Score:        0,
		Feedback:     shortAnswerFeedback,
		Strengths:    []string{},
		Improvements: []string{"Provide a complete answer with specific examples"},
	}
}

// skillSet lowercases skills for case-insensitive membership
func skillSet(skills []string) map[string]bool {
	set := make(map[string]bool, len(skills))
	for _, s := range skills {
		set[strings.ToLower(strings.TrimSpace(s))] = true
	}
	return set
}
