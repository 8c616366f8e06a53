// Package schemas validates model output against embedded JSON Schemas.
package schemas

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"

	"github.com/xeipuuv/gojsonschema"
)

// Schema names, one per structured generation task
const (
	Resume             = "resume"
	SkillGap           = "skill_gap"
	Roadmap            = "roadmap"
	InterviewQuestions = "interview_questions"
	AnswerEvaluation   = "answer_evaluation"
)

//go:embed json/*.json
var schemaFS embed.FS

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	compileOnce sync.Once
	compiled    map[string]*gojsonschema.Schema
	compileErr  error
)

func load() (map[string]*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[string]*gojsonschema.Schema)
		for _, name := range Names() {
			raw, err := schemaFS.ReadFile("json/" + name + ".json")
			if err != nil {
				compileErr = fmt.Errorf("schema %s not embedded: %w", name, err)
				return
			}
			schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
			if err != nil {
				compileErr = fmt.Errorf("schema %s does not compile: %w", name, err)
				return
			}
			compiled[name] = schema
		}
	})
	return compiled, compileErr
}

// Names lists every embedded schema
func Names() []string {
	return []string{Resume, SkillGap, Roadmap, InterviewQuestions, AnswerEvaluation}
}

// Validate checks a JSON document against the named schema.
// Any failure is returned as a shape error; field details are in its "fields" context.
func Validate(name string, doc []byte) error {
	schemas, err := load()
	if err != nil {
		return apperrors.NewInternalError("SCHEMA_LOAD_FAILED", "embedded schemas are invalid", err)
	}
	schema, ok := schemas[name]
	if !ok {
		return apperrors.NewInternalError("SCHEMA_NOT_FOUND", fmt.Sprintf("unknown schema %q", name), nil)
	}

	if !json.Valid(doc) {
		return apperrors.NewShapeError(apperrors.ErrCodeInvalidJSON,
			fmt.Sprintf("response for %s is not valid JSON", name), nil).
			WithContext("schema", name)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return apperrors.NewShapeError(apperrors.ErrCodeInvalidJSON,
			fmt.Sprintf("response for %s could not be loaded", name), err).
			WithContext("schema", name)
	}
	if result.Valid() {
		return nil
	}

	fields := make([]FieldError, 0, len(result.Errors()))
	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		fields = append(fields, FieldError{Field: desc.Field(), Message: desc.Description()})
		messages = append(messages, desc.Field()+": "+desc.Description())
	}
	return apperrors.NewShapeError(apperrors.ErrCodeSchemaViolation,
		fmt.Sprintf("response for %s violates schema: %s", name, strings.Join(messages, "; ")), nil).
		WithContext("schema", name).
		WithContext("fields", fields)
}

// Fields extracts field errors from a shape error produced by Validate
func Fields(err error) []FieldError {
	appErr, ok := apperrors.As(err)
	if !ok {
		return nil
	}
	fields, _ := appErr.Context["fields"].([]FieldError)
	return fields
}
