package common

import (
	"fmt"
	"slices"
	"strings"

	"github.com/StealthPanther/ai-career-navigator/internal/types"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ValidateDifficulty accepts easy, medium or hard; empty means medium
func ValidateDifficulty(difficulty string) (string, error) {
	switch d := strings.ToLower(strings.TrimSpace(difficulty)); d {
	case "":
		return types.DifficultyMedium, nil
	case types.DifficultyEasy, types.DifficultyMedium, types.DifficultyHard:
		return d, nil
	default:
		return "", fmt.Errorf("unsupported difficulty '%s'. Use easy, medium or hard", difficulty)
	}
}

// ParseSkillList splits a comma or newline separated list, dropping blanks
// and case-insensitive duplicates while keeping the first spelling
func ParseSkillList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' || r == ';' })
	seen := make(map[string]bool, len(fields))
	skills := make([]string, 0, len(fields))
	for _, f := range fields {
		skill := strings.TrimSpace(f)
		key := strings.ToLower(skill)
		if skill == "" || seen[key] {
			continue
		}
		seen[key] = true
		skills = append(skills, skill)
	}
	return skills
}
