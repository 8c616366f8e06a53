package utils

import (
	"testing"
)

func TestSlugFilename(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"DevOps Engineer Roadmap", "devops-engineer-roadmap"},
		{"  Senior SRE / Platform (2026)  ", "senior-sre-platform-2026"},
		{"C++ Developer", "c-developer"},
		{"***", "roadmap"},
		{"", "roadmap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SlugFilename(tt.name, "roadmap"); got != tt.expected {
				t.Errorf("SlugFilename(%q) = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		size     int64
		expected string
	}{
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatFileSize(tt.size); got != tt.expected {
				t.Errorf("FormatFileSize(%d) = %q, want %q", tt.size, got, tt.expected)
			}
		})
	}
}

func TestIsTextFile(t *testing.T) {
	for file, want := range map[string]bool{"cv.TXT": true, "cv.md": true, "cv.pdf": false, "cv": false} {
		if got := IsTextFile(file); got != want {
			t.Errorf("IsTextFile(%q) = %v, want %v", file, got, want)
		}
	}
}
