package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptStoreResolvePriority(t *testing.T) {
	dir := t.TempDir()
	systemFile := filepath.Join(dir, "roadmap-system.txt")
	require.NoError(t, os.WriteFile(systemFile, []byte("  file system prompt\n"), 0644))

	store, err := NewPromptStore(PromptsConfig{
		Roadmap: PromptConfig{SystemFile: systemFile, User: "inline user"},
	})
	require.NoError(t, err)

	defaults := PromptSet{System: "default system", User: "default user"}

	got := store.Resolve(TaskRoadmap, defaults)
	assert.Equal(t, "file system prompt", got.System)
	assert.Equal(t, "inline user", got.User)

	got = store.Resolve(TaskChat, defaults)
	assert.Equal(t, defaults, got)
}

func TestPromptStoreNil(t *testing.T) {
	var store *PromptStore
	defaults := PromptSet{System: "s", User: "u"}
	assert.Equal(t, defaults, store.Resolve(TaskResume, defaults))
	assert.Nil(t, store.Files())
}

func TestPromptStoreMissingFile(t *testing.T) {
	_, err := NewPromptStore(PromptsConfig{
		Resume: PromptConfig{UserFile: "/nonexistent/resume-user.txt"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user resume prompt file not found")
}

func TestPromptStoreReloadKeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	userFile := filepath.Join(dir, "chat-user.txt")
	require.NoError(t, os.WriteFile(userFile, []byte("first"), 0644))

	store, err := NewPromptStore(PromptsConfig{Chat: PromptConfig{UserFile: userFile}})
	require.NoError(t, err)
	assert.Equal(t, []string{userFile}, store.Files())

	require.NoError(t, os.WriteFile(userFile, []byte("second"), 0644))
	require.NoError(t, store.Reload())
	assert.Equal(t, "second", store.Resolve(TaskChat, PromptSet{}).User)

	require.NoError(t, os.WriteFile(userFile, []byte("   "), 0644))
	require.Error(t, store.Reload())
	assert.Equal(t, "second", store.Resolve(TaskChat, PromptSet{}).User)
}

func TestPromptWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	systemFile := filepath.Join(dir, "interview-system.txt")
	require.NoError(t, os.WriteFile(systemFile, []byte("v1"), 0644))

	store, err := NewPromptStore(PromptsConfig{Interview: PromptConfig{SystemFile: systemFile}})
	require.NoError(t, err)

	watcher := NewPromptWatcher(store, 20*time.Millisecond, newTestLogger())
	require.NoError(t, watcher.Start())
	defer func() { _ = watcher.Stop() }()

	assert.Equal(t, true, watcher.Status()["running"])

	// mod time resolution on some filesystems is coarse
	time.Sleep(50 * time.Millisecond)
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.WriteFile(systemFile, []byte("v2"), 0644))
	require.NoError(t, os.Chtimes(systemFile, future, future))

	assert.Eventually(t, func() bool {
		return store.Resolve(TaskInterview, PromptSet{}).System == "v2"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestPromptWatcherNoFiles(t *testing.T) {
	store, err := NewPromptStore(PromptsConfig{})
	require.NoError(t, err)

	watcher := NewPromptWatcher(store, 0, newTestLogger())
	require.NoError(t, watcher.Start())
	assert.Equal(t, false, watcher.Status()["running"])
	assert.NoError(t, watcher.Stop())
}
