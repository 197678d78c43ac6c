package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioAI/app/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.3, cfg.Retrieval.KeywordBoost, 1e-9)
	assert.InDelta(t, 0.85, cfg.Retrieval.DedupThreshold, 1e-9)
	assert.Equal(t, 768, cfg.Embedder.Dimension)
	assert.Equal(t, 2, cfg.Generation.MaxRetries)
	assert.Equal(t, time.Second, cfg.Generation.RetryDelay)
	assert.Equal(t, 1, cfg.Gate.MinLength)
	assert.Equal(t, 500, cfg.Gate.MaxLength)
	assert.Equal(t, 1000, cfg.Chat.MaxResponseLength)
	assert.Equal(t, 30*time.Second, cfg.Chat.RequestTimeout)
	assert.True(t, cfg.Chat.ExposeErrorDetails)
	assert.Equal(t, models.PresetBalanced, cfg.Chat.DefaultPreset)
}

func TestLoadConfigOverridesAndExpandsEnv(t *testing.T) {
	t.Setenv("PORTFOLIO_LLM_URL", "http://llm.internal:8000")
	t.Setenv("PORTFOLIO_NAME", "Sam")
	path := writeConfig(t, `
persona:
  name: ${PORTFOLIO_NAME}
  description: a data engineer
  markdown: false
llm:
  base_url: ${PORTFOLIO_LLM_URL}
retrieval:
  top_k: 8
  keyword_boost: 0.5
generation:
  max_retries: 1
  retry_delay: 250ms
chat:
  default_preset: FACTUAL
  request_timeout: 10s
  expose_error_details: false
clients:
  - type: http
    enabled: true
    config:
      addr: ":9000"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Sam", cfg.Persona.Name)
	assert.False(t, cfg.Persona.Markdown)
	assert.Equal(t, "http://llm.internal:8000", cfg.LLM.BaseURL)
	assert.NotEmpty(t, cfg.LLM.Model)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.Equal(t, 2, cfg.Retrieval.OverfetchFactor)
	assert.InDelta(t, 0.5, cfg.Retrieval.KeywordBoost, 1e-9)
	assert.Equal(t, 250*time.Millisecond, cfg.Generation.RetryDelay)
	assert.Equal(t, "FACTUAL", cfg.Chat.DefaultPreset)
	assert.Equal(t, 10*time.Second, cfg.Chat.RequestTimeout)
	assert.False(t, cfg.Chat.ExposeErrorDetails)
	require.Len(t, cfg.Clients, 1)
	assert.Equal(t, ":9000", cfg.Clients[0].Config["addr"])

	s := cfg.Settings()
	assert.Equal(t, "Sam", s.Persona.Name)
	assert.Equal(t, 8, s.Retrieval.TopK)
	assert.Equal(t, 1, s.Retry.MaxRetries)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"boost_out_of_range", "retrieval:\n  keyword_boost: 1.5\n"},
		{"zero_dimension", "embedder:\n  dimension: 0\n"},
		{"max_below_min", "gate:\n  min_length: 10\n  max_length: 5\n"},
		{"zero_min_length", "gate:\n  min_length: 0\n"},
		{"unknown_preset", "chat:\n  default_preset: WILD\n"},
		{"unknown_client", "clients:\n  - type: slack\n    enabled: true\n"},
		{"overlap_too_big", "seed:\n  chunk_size: 100\n  overlap: 100\n"},
		{"bad_yaml", "retrieval: [\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateDiscordNeedsToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	_, err := LoadConfig(writeConfig(t, "clients:\n  - type: discord\n    enabled: true\n"))
	assert.Error(t, err)

	t.Setenv("DISCORD_TOKEN", "from-env")
	_, err = LoadConfig(writeConfig(t, "clients:\n  - type: discord\n    enabled: true\n"))
	assert.NoError(t, err)
}
