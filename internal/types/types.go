package types

import "time"

// Education is one education entry extracted from a resume
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// Experience is one work history entry extracted from a resume
type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// ResumeRecord holds the structured fields extracted from resume text
type ResumeRecord struct {
	Name              string       `json:"name"`
	Email             string       `json:"email"`
	Phone             string       `json:"phone"`
	Skills            []string     `json:"skills"`
	Education         []Education  `json:"education"`
	Experience        []Experience `json:"experience"`
	YearsOfExperience int          `json:"years_of_experience"`
}

// TrendingSkillStats describes market data for a trending skill.
// The degraded form carries only HasSkill.
type TrendingSkillStats struct {
	Demand    string `json:"demand,omitempty"`
	AvgSalary string `json:"avg_salary,omitempty"`
	Growth    string `json:"growth,omitempty"`
	Reason    string `json:"reason,omitempty"`
	HasSkill  *bool  `json:"has_skill,omitempty"`
}

// SkillGapAnalysis compares current skills with what a target role requires
type SkillGapAnalysis struct {
	RequiredSkills           []string                      `json:"required_skills"`
	MissingSkills            []string                      `json:"missing_skills"`
	MatchingSkills           []string                      `json:"matching_skills"`
	MatchPercentage          float64                       `json:"match_percentage"`
	TrendingSkills           []string                      `json:"trending_skills"`
	TrendingSkillsComparison map[string]TrendingSkillStats `json:"trending_skills_comparison"`
}

// Resource is a learning resource linked from a roadmap week
type Resource struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Type     string `json:"type"`
	Platform string `json:"platform"`
}

// MiniProject is the hands-on project attached to a roadmap week
type MiniProject struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
}

// WeekPlan is one week of a learning roadmap
type WeekPlan struct {
	Week           int         `json:"week"`
	Topic          string      `json:"topic"`
	Goal           string      `json:"goal"`
	WhatToLearn    string      `json:"what_to_learn"`
	WhyLearnThis   string      `json:"why_learn_this"`
	Resources      []Resource  `json:"resources"`
	HowToLearn     string      `json:"how_to_learn"`
	MiniProject    MiniProject `json:"mini_project"`
	EstimatedHours float64     `json:"estimated_hours"`
}

// Roadmap is an ordered weekly learning plan
type Roadmap struct {
	WeeklyPlan []WeekPlan `json:"weekly_plan"`
}

// Question categories
const (
	CategoryTechnical    = "technical"
	CategoryBehavioral   = "behavioral"
	CategorySystemDesign = "system_design"
)

// Question difficulties
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// InterviewQuestion is a single mock-interview question
type InterviewQuestion struct {
	Question          string `json:"question"`
	Category          string `json:"category"`
	Difficulty        string `json:"difficulty"`
	SampleAnswerHints string `json:"sample_answer_hints,omitempty"`
}

// InterviewQuestionSet wraps generated questions the way the model returns them
type InterviewQuestionSet struct {
	Questions []InterviewQuestion `json:"questions"`
}

// InterviewEvaluation is the feedback for one answer.
// Score 0 is reserved for answers too short to evaluate.
type InterviewEvaluation struct {
	Score        int      `json:"score"`
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Chat roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one message in a chat conversation
type ChatTurn struct {
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RoadmapSnapshot is the roadmap state the chat assistant is grounded on
type RoadmapSnapshot struct {
	TargetRole        string   `json:"target_role"`
	CurrentWeek       int      `json:"current_week"`
	TotalWeeks        int      `json:"total_weeks"`
	JobReadinessScore float64  `json:"job_readiness_score"`
	SkillsToLearn     []string `json:"skills_to_learn"`
}
