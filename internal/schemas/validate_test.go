package schemas

import (
	"testing"

	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSchemasCompile(t *testing.T) {
	schemas, err := load()
	require.NoError(t, err)
	for _, name := range Names() {
		assert.Contains(t, schemas, name)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		schema    string
		doc       string
		wantShape bool
		wantField string
	}{
		{
			name:   "resume with nulls",
			schema: Resume,
			doc:    `{"name":"Ada","email":null,"skills":["Go"],"years_of_experience":4}`,
		},
		{
			name:      "resume skills wrong type",
			schema:    Resume,
			doc:       `{"name":"Ada","skills":"Go, Python"}`,
			wantShape: true,
			wantField: "skills",
		},
		{
			name:   "skill gap with malformed comparison is accepted",
			schema: SkillGap,
			doc:    `{"required_skills":["Go"],"missing_skills":[],"matching_skills":["Go"],"match_percentage":100,"trending_skills_comparison":"n/a"}`,
		},
		{
			name:      "skill gap missing required list",
			schema:    SkillGap,
			doc:       `{"required_skills":["Go"],"matching_skills":["Go"],"match_percentage":100}`,
			wantShape: true,
			wantField: "(root)",
		},
		{
			name:      "empty roadmap",
			schema:    Roadmap,
			doc:       `{"weekly_plan":[]}`,
			wantShape: true,
			wantField: "weekly_plan",
		},
		{
			name:   "roadmap week",
			schema: Roadmap,
			doc:    `{"weekly_plan":[{"week":1,"topic":"Go basics","estimated_hours":10}]}`,
		},
		{
			name:      "question without text",
			schema:    InterviewQuestions,
			doc:       `{"questions":[{"question":"","category":"technical"}]}`,
			wantShape: true,
			wantField: "questions.0.question",
		},
		{
			name:      "question with only whitespace",
			schema:    InterviewQuestions,
			doc:       `{"questions":[{"question":"   ","category":"technical"}]}`,
			wantShape: true,
			wantField: "questions.0.question",
		},
		{
			name:   "question with surrounding whitespace",
			schema: InterviewQuestions,
			doc:    `{"questions":[{"question":"  Explain goroutines ","category":"technical"}]}`,
		},
		{
			name:      "evaluation score as string",
			schema:    AnswerEvaluation,
			doc:       `{"score":"7","feedback":"ok"}`,
			wantShape: true,
			wantField: "score",
		},
		{
			name:      "not json",
			schema:    AnswerEvaluation,
			doc:       `score: 7`,
			wantShape: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.schema, []byte(tt.doc))
			if !tt.wantShape {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsShapeError(err))
			if tt.wantField != "" {
				fields := Fields(err)
				require.NotEmpty(t, fields)
				found := false
				for _, f := range fields {
					if f.Field == tt.wantField {
						found = true
					}
				}
				assert.True(t, found, "expected field %s in %v", tt.wantField, fields)
			}
		})
	}
}

func TestValidateUnknownSchema(t *testing.T) {
	err := Validate("nope", []byte(`{}`))
	require.Error(t, err)
	assert.False(t, apperrors.IsShapeError(err))
}

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"json code block", "```json\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"generic code block", "```\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"plain JSON", `{"key": "value"}`, `{"key": "value"}`},
		{"preamble", "Here is the JSON:\n{\"company\": \"Acme\"}", `{"company": "Acme"}`},
		{"trailing prose", "{\"a\": 1}\nLet me know if you need more.", `{"a": 1}`},
		{"array", "Sure: [1, 2]", `[1, 2]`},
		{"no json", "I cannot help with that", "I cannot help with that"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}
