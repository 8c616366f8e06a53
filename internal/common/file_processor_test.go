package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/StealthPanther/ai-career-navigator/internal/errors"
)

func TestFileProcessorReadFile(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "resume.txt")
	large := filepath.Join(dir, "large.txt")
	if err := os.WriteFile(small, []byte("Go developer"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(large, []byte(strings.Repeat("x", 2048)), 0600); err != nil {
		t.Fatal(err)
	}

	fp := NewFileProcessor(1024, nil)

	tests := []struct {
		name     string
		file     string
		wantCode string
	}{
		{"within limit", small, ""},
		{"over limit", large, errors.ErrCodeInvalidRequest},
		{"missing", filepath.Join(dir, "nope.txt"), errors.ErrCodeFileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := fp.ReadFile(tt.file)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("ReadFile() error = %v", err)
				}
				if content != "Go developer" {
					t.Errorf("ReadFile() = %q", content)
				}
				return
			}
			appErr, ok := errors.As(err)
			if !ok {
				t.Fatalf("ReadFile() error = %v, want AppError", err)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("ReadFile() code = %s, want %s", appErr.Code, tt.wantCode)
			}
		})
	}
}

func TestOutputHandlerWritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "skills.md")
	handler := NewOutputHandler(nil)

	err := handler.HandleOutput(map[string]string{"role": "SRE"}, CommandConfig{OutputFile: out, OutputFormat: "json"})
	if err != nil {
		t.Fatalf("HandleOutput() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"role": "SRE"`) {
		t.Errorf("unexpected output: %s", data)
	}

	if err := handler.HandleOutput("x", CommandConfig{OutputFormat: "yaml"}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
