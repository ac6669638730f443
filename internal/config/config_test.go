package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("AZURE_OPENAI_KEY", "secret")
	t.Setenv("OPENAI_API_VERSION", "2024-05-01-preview")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, "gpt-4o-mini-2", cfg.Assistant.Model)
	assert.Equal(t, "Assistant129", cfg.Assistant.Name)
	assert.InDelta(t, 1.0, cfg.Assistant.Temperature, 1e-9)
	assert.InDelta(t, 1.0, cfg.Assistant.TopP, 1e-9)
	assert.Equal(t, time.Second, cfg.Poll.Interval)
	assert.Equal(t, "https://azure2234.openai.azure.com", cfg.Files.BaseURL)
	assert.True(t, cfg.CleanupResources)
}

func TestLoadEnvAndFlags(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "8080")
	t.Setenv("POLL_INTERVAL", "250ms")

	cfg, err := Load([]string{"-poll-max-attempts", "7", "-cleanup-resources=false"})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 250*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, 7, cfg.Poll.MaxAttempts)
	assert.False(t, cfg.CleanupResources)
}

func TestLoadFilesBaseFallsBackToEndpoint(t *testing.T) {
	setRequired(t)

	cfg, err := Load([]string{"-files-base-url", ""})
	require.NoError(t, err)
	assert.Equal(t, "https://example.openai.azure.com", cfg.Files.BaseURL)
}

func TestLoadFilesBaseEmptyEnv(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		value    string
		want     string
	}{
		{"empty", "https://example.openai.azure.com", "", "https://example.openai.azure.com"},
		{"blank", "https://example.openai.azure.com/", "  ", "https://example.openai.azure.com"},
		{"explicit", "https://example.openai.azure.com", "https://files.example.com", "https://files.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv("AZURE_OPENAI_ENDPOINT", tt.endpoint)
			t.Setenv("FILES_BASE_URL", tt.value)

			cfg, err := Load(nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Files.BaseURL)
		})
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("AZURE_OPENAI_ENDPOINT", "")
	t.Setenv("AZURE_OPENAI_KEY", "")
	t.Setenv("OPENAI_API_VERSION", "v1")

	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AZURE_OPENAI_KEY")
	assert.Contains(t, err.Error(), "AZURE_OPENAI_ENDPOINT")
	assert.NotContains(t, err.Error(), "OPENAI_API_VERSION")
}

func TestValidatePoll(t *testing.T) {
	cfg := Defaults()
	cfg.AzureEndpoint, cfg.AzureAPIKey, cfg.AzureAPIVersion = "e", "k", "v"
	require.NoError(t, cfg.Validate())

	cfg.Poll.Backoff = 0.5
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.AzureEndpoint, cfg.AzureAPIKey, cfg.AzureAPIVersion = "e", "k", "v"
	cfg.Poll.Interval = 0
	assert.Error(t, cfg.Validate())
}
