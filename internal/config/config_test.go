package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "local", cfg.Ai.ChatMode)
	assert.Equal(t, 0.7, cfg.Ai.SimilarityThreshold)
	assert.Equal(t, 3, cfg.Ai.TopK)
	assert.Equal(t, 60*time.Second, cfg.Ai.GenerationTimeout)
	assert.Equal(t, 30*time.Second, cfg.Ai.EmbeddingTimeout)
	assert.Equal(t, 30*time.Second, cfg.Ai.BreakerCooldown)
	assert.Equal(t, 2048, cfg.Ai.RemoteMaxTokens)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Session.CleanupInterval)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHAT_MODE", "remote")
	t.Setenv("RAG_TOP_K", "5")
	t.Setenv("REMOTE_LLM_TEMPERATURE", "0.2")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("LLM_TIMEOUT", "90")

	cfg := Load()

	assert.Equal(t, "remote", cfg.Ai.ChatMode)
	assert.Equal(t, 5, cfg.Ai.TopK)
	assert.Equal(t, 0.2, cfg.Ai.RemoteTemperature)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 90*time.Second, cfg.Ai.GenerationTimeout)
}

func TestGetEnvAsDurationFallsBackOnGarbage(t *testing.T) {
	t.Setenv("X_DURATION", "soon")
	assert.Equal(t, time.Minute, getEnvAsDuration("X_DURATION", time.Minute))
}
