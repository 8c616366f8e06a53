package career

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/pipeline"
	"github.com/StealthPanther/ai-career-navigator/internal/schemas"
	"github.com/StealthPanther/ai-career-navigator/internal/types"
)

// MinResumeLength is the shortest trimmed resume text, in characters, worth sending to a model
const MinResumeLength = 50

// ExtractResume turns raw resume text into a ResumeRecord
func (s *Service) ExtractResume(ctx context.Context, text string) (pipeline.Result[types.ResumeRecord], error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinResumeLength {
		return pipeline.Result[types.ResumeRecord]{}, apperrors.NewInputRejected(apperrors.ErrCodeResumeTooShort,
			"resume text is too short or empty").WithContext("min_length", MinResumeLength)
	}

	sampling, useSystem := s.sampling(config.TaskResume)
	task := pipeline.Task[types.ResumeRecord]{
		Name:            config.TaskResume,
		Schema:          schemas.Resume,
		Prompt:          s.prompt(config.TaskResume, struct{ Text string }{text}),
		Sampling:        sampling,
		UseSystemPrompt: useSystem,
		Decode:          decodeResume,
		Normalize:       normalizeResume,
		Fallback:        fallbackResume,
	}

	result := pipeline.RunStructured(ctx, s.pipeline, task)
	s.logger.Info("Resume extracted",
		"tier", result.Tier,
		"skills", len(result.Value.Skills))
	return result, nil
}

// flexString accepts a JSON string or number, as models emit years either way
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func decodeResume(raw []byte) (types.ResumeRecord, error) {
	var aux struct {
		Name      string   `json:"name"`
		Email     string   `json:"email"`
		Phone     string   `json:"phone"`
		Skills    []string `json:"skills"`
		Education []struct {
			Degree      string     `json:"degree"`
			Institution string     `json:"institution"`
			Year        flexString `json:"year"`
		} `json:"education"`
		Experience        []types.Experience `json:"experience"`
		YearsOfExperience *float64           `json:"years_of_experience"`
	}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return types.ResumeRecord{}, err
	}

	record := types.ResumeRecord{
		Name:       aux.Name,
		Email:      aux.Email,
		Phone:      aux.Phone,
		Skills:     aux.Skills,
		Experience: aux.Experience,
	}
	for _, e := range aux.Education {
		record.Education = append(record.Education, types.Education{
			Degree:      e.Degree,
			Institution: e.Institution,
			Year:        string(e.Year),
		})
	}
	if aux.YearsOfExperience != nil {
		record.YearsOfExperience = int(math.Round(*aux.YearsOfExperience))
	}
	return record, nil
}

// normalizeResume guarantees non-nil lists and drops blank or duplicate skills
func normalizeResume(r types.ResumeRecord) types.ResumeRecord {
	skills := make([]string, 0, len(r.Skills))
	seen := make(map[string]bool, len(r.Skills))
	for _, skill := range r.Skills {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if skill == "" || seen[key] {
			continue
		}
		seen[key] = true
		skills = append(skills, skill)
	}
	r.Skills = skills

	if r.Education == nil {
		r.Education = []types.Education{}
	}
	if r.Experience == nil {
		r.Experience = []types.Experience{}
	}
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	return r
}

