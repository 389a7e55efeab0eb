package factory

import (
	"testing"
	"time"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/llm/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGateway(t *testing.T) {
	wrapped := 0
	count := func(b gateway.Backend) gateway.Backend {
		wrapped++
		return b
	}

	gw, local, err := NewGateway(Settings{
		ChatMode:        "remote",
		Timeout:         time.Second,
		BreakerCooldown: 30 * time.Second,
	}, logger.NewNopLogger(), count)
	require.NoError(t, err)

	assert.Equal(t, gateway.ModeRemote, gw.Mode())
	assert.Equal(t, gateway.StateAvailable, local.Breaker().State())
	assert.Equal(t, 2, wrapped)
}

func TestNewGatewayRejectsUnknownMode(t *testing.T) {
	_, _, err := NewGateway(Settings{ChatMode: "cloud"}, logger.NewNopLogger())
	assert.ErrorIs(t, err, gateway.ErrInvalidMode)
}

func TestNewEmbeddingProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		apiKey   string
		wantErr  bool
		wantName string
	}{
		{"ollama", "ollama", "", false, "ollama:nomic-embed-text"},
		{"openai", "openai", "key", false, "openai:nomic-embed-text"},
		{"openai without key", "openai", "", true, ""},
		{"unknown", "gemini", "", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewEmbeddingProvider(tt.provider, "", tt.apiKey, "nomic-embed-text", time.Second)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}
