package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// PromptWatcher watches prompt files and reloads the PromptStore when they change
type PromptWatcher struct {
	mu sync.Mutex

	store *PromptStore
	files []string

	lastModTime map[string]time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	logger  *errors.Logger
	running bool
	reloads int
}

// NewPromptWatcher creates a watcher for every file the store reads
func NewPromptWatcher(store *PromptStore, debounceDelay time.Duration, logger *errors.Logger) *PromptWatcher {
	if debounceDelay <= 0 {
		debounceDelay = time.Second
	}
	return &PromptWatcher{
		store:         store,
		files:         store.Files(),
		lastModTime:   make(map[string]time.Time),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		logger:        logger,
	}
}

// Start begins watching. With no prompt files configured it is a no-op.
func (pw *PromptWatcher) Start() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.running {
		return fmt.Errorf("prompt watcher is already running")
	}
	if len(pw.files) == 0 {
		pw.logger.Debug("No prompt files configured, prompt watcher not started")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	pw.fsWatcher = watcher
	pw.updateModTimes()

	// Watching directories catches editors that save by rename
	dirs := make(map[string]bool)
	for _, file := range pw.files {
		dirs[filepath.Dir(file)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			pw.logger.Warn("Failed to watch prompt directory", "directory", dir, "error", err)
		}
	}

	pw.running = true
	go pw.watchLoop()

	pw.logger.Info("Prompt file watcher started",
		"files", pw.files,
		"debounce_delay", pw.debounceDelay)
	return nil
}

// Stop stops the watcher
func (pw *PromptWatcher) Stop() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if !pw.running {
		return nil
	}
	close(pw.stopChan)
	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}
	pw.running = false

	if err := pw.fsWatcher.Close(); err != nil {
		pw.logger.LogError(err, "Failed to close prompt file watcher")
		return err
	}
	pw.logger.Info("Prompt file watcher stopped")
	return nil
}

func (pw *PromptWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-pw.fsWatcher.Events:
			if !ok {
				return
			}
			if pw.shouldProcessEvent(event) {
				pw.scheduleReload()
			}

		case err, ok := <-pw.fsWatcher.Errors:
			if !ok {
				return
			}
			pw.logger.LogError(err, "Prompt file watcher error")

		case <-pw.reloadChan:
			pw.reloadIfChanged()

		case <-pw.stopChan:
			return
		}
	}
}

func (pw *PromptWatcher) reloadIfChanged() {
	pw.mu.Lock()
	changed := slices.ContainsFunc(pw.files, pw.hasFileChanged)
	pw.mu.Unlock()
	if !changed {
		return
	}

	if err := pw.store.Reload(); err != nil {
		pw.logger.LogError(err, "Prompt reload failed, keeping previous prompts")
		return
	}

	pw.mu.Lock()
	pw.reloads++
	pw.mu.Unlock()
	pw.logger.Info("Prompt files reloaded")
}

// shouldProcessEvent filters events down to writes on watched prompt files
func (pw *PromptWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	watched := slices.ContainsFunc(pw.files, func(file string) bool {
		return event.Name == file || filepath.Clean(event.Name) == filepath.Clean(file)
	})
	if !watched {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// scheduleReload schedules a debounced reload
func (pw *PromptWatcher) scheduleReload() {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}
	pw.debounceTimer = time.AfterFunc(pw.debounceDelay, func() {
		select {
		case pw.reloadChan <- struct{}{}:
		default:
		}
	})
}

// updateModTimes records the current modification time of each file. Caller holds mu.
func (pw *PromptWatcher) updateModTimes() {
	for _, file := range pw.files {
		if stat, err := os.Stat(file); err == nil {
			pw.lastModTime[file] = stat.ModTime()
		}
	}
}

// hasFileChanged reports whether a file changed since last seen. Caller holds mu.
func (pw *PromptWatcher) hasFileChanged(file string) bool {
	stat, err := os.Stat(file)
	if err != nil {
		return false
	}
	lastMod, exists := pw.lastModTime[file]
	if !exists || stat.ModTime().After(lastMod) {
		pw.lastModTime[file] = stat.ModTime()
		return true
	}
	return false
}

// Status returns watcher state for health reporting
func (pw *PromptWatcher) Status() map[string]any {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	return map[string]any{
		"running": pw.running,
		"files":   pw.files,
		"reloads": pw.reloads,
	}
}
