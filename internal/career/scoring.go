package career

import (
	"math"
	"strings"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/store"
	"github.com/StealthPanther/ai-career-navigator/internal/types"
)

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ReadinessScore is the share of required skills already matched, as a percentage with one decimal
func ReadinessScore(matching, required []string) float64 {
	if len(required) == 0 {
		return 0
	}
	return round1(float64(len(matching)) / float64(len(required)) * 100)
}

// SessionScore converts 0-10 answer scores into an overall percentage with one decimal
func SessionScore(evaluations []types.InterviewEvaluation) float64 {
	if len(evaluations) == 0 {
		return 0
	}
	total := 0
	for _, e := range evaluations {
		total += e.Score
	}
	return round1(float64(total) / float64(len(evaluations)*10) * 100)
}

// RoadmapInput carries what BuildRoadmapRecord needs besides the plan itself
type RoadmapInput struct {
	UserID            string
	TargetRole        string
	Weeks             int
	SkillsToLearn     []string
	JobReadinessScore float64
}

// BuildRoadmapRecord wraps a generated roadmap with the metadata persisted
// alongside it. New roadmaps start at week 1 and become the active one.
func BuildRoadmapRecord(in RoadmapInput, roadmap types.Roadmap, now time.Time) store.StoredRoadmap {
	weeks := in.Weeks
	if weeks <= 0 {
		weeks = len(roadmap.WeeklyPlan)
	}
	skills := append([]string{}, in.SkillsToLearn...)
	return store.StoredRoadmap{
		UserID:            in.UserID,
		TargetRole:        in.TargetRole,
		DisplayName:       strings.TrimSpace(in.TargetRole),
		Roadmap:           roadmap,
		TotalWeeks:        weeks,
		CurrentWeek:       1,
		JobReadinessScore: in.JobReadinessScore,
		SkillsToLearn:     skills,
		IsActive:          true,
		CreatedAt:         now.UTC(),
	}
}
