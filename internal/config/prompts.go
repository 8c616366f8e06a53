package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// PromptSet is a system instruction plus a user prompt template
type PromptSet struct {
	System string
	User   string
}

// PromptStore holds prompt overrides loaded from files and inline configuration.
// It is safe for concurrent use and can be reloaded while serving.
type PromptStore struct {
	mu     sync.RWMutex
	cfg    PromptsConfig
	loaded map[string]PromptSet
}

// NewPromptStore validates the configured prompt files and loads them
func NewPromptStore(cfg PromptsConfig) (*PromptStore, error) {
	ps := &PromptStore{cfg: cfg, loaded: make(map[string]PromptSet)}
	if err := ps.validatePromptFiles(); err != nil {
		return nil, fmt.Errorf("prompt file validation failed: %w", err)
	}
	if err := ps.Reload(); err != nil {
		return nil, err
	}
	return ps, nil
}

// Reload re-reads every configured prompt file. On error the previous prompts stay active.
func (ps *PromptStore) Reload() error {
	loaded := make(map[string]PromptSet, len(AllTasks))
	count := 0

	for _, task := range AllTasks {
		pc := ps.cfg.For(task)
		var set PromptSet
		if pc.SystemFile != "" {
			content, err := loadPromptFromFile(pc.SystemFile, "system", task)
			if err != nil {
				return err
			}
			set.System = content
			count++
		}
		if pc.UserFile != "" {
			content, err := loadPromptFromFile(pc.UserFile, "user", task)
			if err != nil {
				return err
			}
			set.User = content
			count++
		}
		loaded[task] = set
	}

	ps.mu.Lock()
	ps.loaded = loaded
	ps.mu.Unlock()

	if count == 0 {
		log.Println("[CONFIG] No custom prompt files loaded - using inline or built-in prompts")
	} else {
		log.Printf("[CONFIG] Total custom prompt files loaded: %d", count)
	}
	return nil
}

// Resolve picks the prompt for a task: file first, then inline config, then the built-in default.
// A nil store always returns the defaults.
func (ps *PromptStore) Resolve(task string, defaults PromptSet) PromptSet {
	if ps == nil {
		return defaults
	}
	ps.mu.RLock()
	loaded := ps.loaded[task]
	ps.mu.RUnlock()

	inline := ps.cfg.For(task)
	return PromptSet{
		System: resolvePrompt(loaded.System, inline.System, defaults.System),
		User:   resolvePrompt(loaded.User, inline.User, defaults.User),
	}
}

// Files returns every prompt file path the store reads
func (ps *PromptStore) Files() []string {
	if ps == nil {
		return nil
	}
	var files []string
	for _, task := range AllTasks {
		pc := ps.cfg.For(task)
		if pc.SystemFile != "" {
			files = append(files, pc.SystemFile)
		}
		if pc.UserFile != "" {
			files = append(files, pc.UserFile)
		}
	}
	return files
}

// resolvePrompt selects the first non-empty prompt in priority order
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func loadPromptFromFile(filePath, promptType, task string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, task, filePath, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, task, absPath)
		}
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, task, absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, task, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, task, absPath, len(trimmed))
	return trimmed, nil
}

// validatePromptFiles reports every missing prompt file at once
func (ps *PromptStore) validatePromptFiles() error {
	var validationErrors []string

	for _, task := range AllTasks {
		pc := ps.cfg.For(task)
		for promptType, path := range map[string]string{"system": pc.SystemFile, "user": pc.UserFile} {
			if path == "" {
				continue
			}
			absPath, err := filepath.Abs(path)
			if err != nil {
				validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, task, path))
				continue
			}
			if _, err := os.Stat(absPath); os.IsNotExist(err) {
				validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, task, absPath))
			}
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("%s", strings.Join(validationErrors, "\n"))
	}
	return nil
}
