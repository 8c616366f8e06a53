package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/StealthPanther/ai-career-navigator/internal/errors"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *errors.Logger {
	logger, _ := errors.New("debug")
	return logger
}

type fakeSecretReader struct {
	strings map[string]string   // "path#key" -> value
	slices  map[string][]string // "path#key" -> values
}

func (f *fakeSecretReader) GetStringSecret(path, key string) (string, error) {
	if v, ok := f.strings[path+"#"+key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
}

func (f *fakeSecretReader) GetStringSliceSecret(path, key string) ([]string, error) {
	if v, ok := f.slices[path+"#"+key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("key '%s' not found in secret %s", key, path)
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(7), expected: 7},
		{name: "json number string", input: "13", expected: 13},
		{name: "invalid string", input: "v2", expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "secret/data/careernav")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestLoadAllSecretsFromVault(t *testing.T) {
	logger := newTestLogger()

	t.Run("applies api keys and both provider keys", func(t *testing.T) {
		cfg := Default()
		cfg.Vault.Secrets = VaultSecrets{
			APIKeys:      "secret/data/careernav/server",
			PrimaryKey:   "secret/data/careernav/gemini",
			SecondaryKey: "secret/data/careernav/googleai",
		}
		reader := &fakeSecretReader{
			strings: map[string]string{
				"secret/data/careernav/gemini#api_key":   "primary-key",
				"secret/data/careernav/googleai#api_key": "secondary-key",
			},
			slices: map[string][]string{
				"secret/data/careernav/server#keys": {"k1", "k2"},
			},
		}

		require.NoError(t, loadAllSecretsFromVault(reader, cfg, logger))
		assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
		assert.Equal(t, "primary-key", cfg.AI.Primary.APIKey)
		assert.Equal(t, "secondary-key", cfg.AI.Secondary.APIKey)
	})

	t.Run("empty provider key keeps configured key", func(t *testing.T) {
		cfg := Default()
		cfg.AI.Primary.APIKey = "from-config"
		cfg.Vault.Secrets.PrimaryKey = "secret/data/careernav/gemini"
		reader := &fakeSecretReader{strings: map[string]string{"secret/data/careernav/gemini#api_key": ""}}

		require.NoError(t, loadAllSecretsFromVault(reader, cfg, logger))
		assert.Equal(t, "from-config", cfg.AI.Primary.APIKey)
	})

	t.Run("missing secret is an error", func(t *testing.T) {
		cfg := Default()
		cfg.Vault.Secrets.SecondaryKey = "secret/data/missing"

		err := loadAllSecretsFromVault(&fakeSecretReader{}, cfg, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secondary provider key")
	})
}

func TestResolveVaultToken(t *testing.T) {
	logger := newTestLogger()

	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file is trimmed", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read vault token file")
	})

	t.Run("no token provided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	cfg := Default()
	client, err := ApplyVaultSecrets(cfg, newTestLogger())
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestVaultClientExtractSecretData(t *testing.T) {
	vc := &VaultClient{logger: newTestLogger()}

	tests := []struct {
		name        string
		secret      *api.Secret
		expectError bool
		expected    map[string]any
	}{
		{
			name: "valid KVv2 secret",
			secret: &api.Secret{Data: map[string]any{
				"data": map[string]any{"api_key": "abc"},
			}},
			expected: map[string]any{"api_key": "abc"},
		},
		{
			name:        "missing data field",
			secret:      &api.Secret{Data: map[string]any{"metadata": map[string]any{}}},
			expectError: true,
		},
		{
			name:        "data field wrong type",
			secret:      &api.Secret{Data: map[string]any{"data": "not-a-map"}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := vc.extractSecretData(tt.secret, "secret/test")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestVaultClientExtractSecretVersion(t *testing.T) {
	vc := &VaultClient{logger: newTestLogger()}

	secret := &api.Secret{Data: map[string]any{
		"metadata": map[string]any{"version": float64(3)},
	}}
	version, err := vc.extractSecretVersion(secret, "secret/test")
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)

	_, err = vc.extractSecretVersion(&api.Secret{Data: map[string]any{"metadata": map[string]any{}}}, "secret/test")
	assert.Error(t, err)
}
