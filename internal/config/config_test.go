package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "guardrails.yaml", cfg.GuardrailsPath)
	assert.Equal(t, 10*time.Second, cfg.CollaboratorTimeout)
	assert.Equal(t, 4, cfg.RAGTopK)
	assert.False(t, cfg.HasBedrock())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("COLLABORATOR_TIMEOUT", "3s")
	t.Setenv("RAG_TOP_K", "8")
	t.Setenv("BEDROCK_MODEL_ID", "anthropic.claude-3-haiku-20240307-v1:0")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.CollaboratorTimeout)
	assert.Equal(t, 8, cfg.RAGTopK)
	assert.True(t, cfg.HasBedrock())
	assert.True(t, cfg.HasGemini())
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("COLLABORATOR_TIMEOUT", "not-a-duration")

	cfg := Load()

	assert.Equal(t, 10*time.Second, cfg.CollaboratorTimeout)
}
