package formatters

import (
	"bytes"
	"strings"
	"testing"

	"github.com/StealthPanther/ai-career-navigator/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRoadmap() types.Roadmap {
	return types.Roadmap{WeeklyPlan: []types.WeekPlan{
		{
			Week: 1, Topic: "Containers", Goal: "Run a service in Docker",
			Resources:      []types.Resource{{Title: "Docker docs", URL: "https://docs.docker.com", Type: "documentation", Platform: "Docker"}},
			MiniProject:    types.MiniProject{Title: "Containerize an API", Difficulty: "beginner"},
			EstimatedHours: 8,
		},
		{Week: 2, Topic: "Kubernetes basics", Goal: "Deploy to a cluster", EstimatedHours: 10},
	}}
}

func TestFormatterRegistry(t *testing.T) {
	registry := NewFormatterRegistry()
	yes := true

	tests := []struct {
		name     string
		data     any
		format   string
		contains []string
	}{
		{"resume text", types.ResumeRecord{Name: "Ada", Skills: []string{"Go"}}, "text", []string{"Name:  Ada", "  - Go"}},
		{"resume markdown", types.ResumeRecord{Name: "Ada"}, "markdown", []string{"# Ada", "- **Email:** -"}},
		{"skill gap text", types.SkillGapAnalysis{
			MatchPercentage: 50, MissingSkills: []string{"AWS"},
			TrendingSkills:           []string{"Rust"},
			TrendingSkillsComparison: map[string]types.TrendingSkillStats{"Rust": {Demand: "High", HasSkill: &yes}},
		}, "text", []string{"Match: 50%", "  x AWS", "Rust (demand: High, growth: -, you have it: yes)"}},
		{"skill gap markdown", types.SkillGapAnalysis{
			TrendingSkillsComparison: map[string]types.TrendingSkillStats{"MLOps": {}},
		}, "markdown", []string{"| MLOps | - | - | - | unknown |"}},
		{"roadmap text", sampleRoadmap(), "text", []string{"(2 weeks)", "Week 1: Containers", "Project: Containerize an API"}},
		{"roadmap markdown", sampleRoadmap(), "markdown", []string{"## Week 2: Kubernetes basics", "[Docker docs](https://docs.docker.com)"}},
		{"questions text", []types.InterviewQuestion{{Question: "Why Go?", Category: "technical", Difficulty: "easy"}}, "text", []string{"1. [technical/easy] Why Go?"}},
		{"evaluation markdown", types.InterviewEvaluation{Score: 7, Feedback: "Solid."}, "markdown", []string{"**Score:** 7/10", "- (none)"}},
		{"json for anything", map[string]int{"a": 1}, "json", []string{`"a": 1`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := registry.Format(tt.data, tt.format)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestFormatterRegistryUnknownFormat(t *testing.T) {
	_, err := NewFormatterRegistry().Format(types.Roadmap{}, "yaml")
	assert.Error(t, err)
	assert.Equal(t, []string{"json", "markdown", "text"}, NewFormatterRegistry().GetSupportedFormats())
}

func TestRoadmapXLSX(t *testing.T) {
	data, err := RoadmapXLSX("DevOps Engineer", sampleRoadmap())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(planSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "DevOps Engineer", title)

	rows, err := f.GetRows(planSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5) // title, blank, header, two weeks
	assert.Equal(t, "Week", rows[2][0])
	assert.Equal(t, "Containers", rows[3][1])

	resources, err := f.GetRows(resourcesSheet)
	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.True(t, strings.HasPrefix(resources[1][4], "https://"))
}
