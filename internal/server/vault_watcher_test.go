package server

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockVaultClient is a mock implementation for testing
type MockVaultClient struct {
	mu      sync.Mutex
	secrets map[string]*config.VaultSecret
	err     error
}

func (m *MockVaultClient) GetSecretV2(path string) (*config.VaultSecret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if secret, exists := m.secrets[path]; exists {
		return secret, nil
	}
	return nil, nil
}

func (m *MockVaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := m.GetSecretV2(path)
	if err != nil || secret == nil {
		return "", err
	}
	value, _ := secret.Data[key].(string)
	return value, nil
}

func (m *MockVaultClient) GetStringSliceSecret(path, key string) ([]string, error) {
	secret, err := m.GetSecretV2(path)
	if err != nil || secret == nil {
		return nil, err
	}
	value, _ := secret.Data[key].([]string)
	return value, nil
}

func (m *MockVaultClient) set(path string, version int64, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[path] = &config.VaultSecret{Data: map[string]any{"keys": keys}, Version: version}
}

const testKeysPath = "secret/data/careernav/api-keys"

func newTestWatcher(client VaultClientInterface, cb APIKeysReloadCallback) *VaultWatcher {
	return NewVaultWatcher(client, testKeysPath, time.Hour, cb, apperrors.NewLogger(slog.LevelError))
}

func TestVaultWatcherRotatesKeysOnNewVersion(t *testing.T) {
	client := &MockVaultClient{secrets: map[string]*config.VaultSecret{}}
	client.set(testKeysPath, 1, "old-key")

	var got []string
	calls := 0
	vw := newTestWatcher(client, func(keys []string, err error) {
		require.NoError(t, err)
		got = keys
		calls++
	})
	require.NoError(t, vw.Start())
	defer vw.Stop()

	vw.poll()
	assert.Equal(t, 0, calls, "startup version must not trigger a reload")

	client.set(testKeysPath, 2, "new-key-a", "new-key-b")
	vw.poll()
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"new-key-a", "new-key-b"}, got)

	vw.poll()
	assert.Equal(t, 1, calls, "same version must not reload twice")
	assert.Equal(t, 1, vw.Status()["reloads"])
	assert.Equal(t, int64(2), vw.Status()["last_version"])
}

func TestVaultWatcherReportsEmptyKeyList(t *testing.T) {
	client := &MockVaultClient{secrets: map[string]*config.VaultSecret{}}
	client.set(testKeysPath, 3)

	var gotErr error
	vw := newTestWatcher(client, func(keys []string, err error) { gotErr = err })
	vw.poll()
	assert.Error(t, gotErr)
}

func TestVaultWatcherCheckForUpdatesErrors(t *testing.T) {
	tests := []struct {
		name   string
		client *MockVaultClient
	}{
		{"read failure", &MockVaultClient{err: errors.New("connection refused")}},
		{"missing secret", &MockVaultClient{secrets: map[string]*config.VaultSecret{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vw := newTestWatcher(tt.client, func([]string, error) {
				t.Fatal("callback must not run")
			})
			changed, err := vw.checkForUpdates()
			assert.Error(t, err)
			assert.False(t, changed)
			vw.poll()
		})
	}
}

func TestVaultWatcherStartTwice(t *testing.T) {
	client := &MockVaultClient{secrets: map[string]*config.VaultSecret{}}
	vw := newTestWatcher(client, func([]string, error) {})
	require.NoError(t, vw.Start())
	assert.Error(t, vw.Start())
	require.NoError(t, vw.Stop())
	require.NoError(t, vw.Stop())
	assert.Equal(t, false, vw.Status()["running"])
}
