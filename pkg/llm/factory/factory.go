package factory

import (
	"fmt"
	"time"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/embedding"
	"ai-chatbot-be/pkg/llm/gateway"
	"ai-chatbot-be/pkg/llm/ollama"
	"ai-chatbot-be/pkg/llm/openaicompat"
	"ai-chatbot-be/pkg/rag/prompt"
)

// Settings describes both generation backends.
type Settings struct {
	ChatMode string

	OllamaBaseURL string
	OllamaModel   string

	RemoteBaseURL     string
	RemoteAPIKey      string
	RemoteModel       string
	RemoteTemperature float64
	RemoteMaxTokens   int

	Timeout         time.Duration
	BreakerCooldown time.Duration
	Fragments       prompt.Fragments
}

// Middleware decorates a backend, e.g. with metrics.
type Middleware func(gateway.Backend) gateway.Backend

// NewGateway builds the local and remote backends and the mode switch over them.
func NewGateway(s Settings, log logger.ILogger, wrap ...Middleware) (*gateway.Gateway, *gateway.LocalBackend, error) {
	mode, err := gateway.ParseMode(s.ChatMode)
	if err != nil {
		return nil, nil, fmt.Errorf("chat mode: %w", err)
	}

	local := gateway.NewLocalBackend(
		ollama.NewOllamaProvider(s.OllamaBaseURL, s.OllamaModel, s.Timeout),
		s.Fragments,
		gateway.NewBreaker(s.BreakerCooldown),
		s.Timeout,
		log,
	)

	remote := gateway.NewRemoteBackend(
		openaicompat.NewProvider(openaicompat.Config{
			BaseURL:     s.RemoteBaseURL,
			APIKey:      s.RemoteAPIKey,
			Model:       s.RemoteModel,
			Temperature: s.RemoteTemperature,
			MaxTokens:   s.RemoteMaxTokens,
			Timeout:     s.Timeout,
		}),
		s.Fragments,
		s.Timeout,
		log,
	)

	var localBackend, remoteBackend gateway.Backend = local, remote
	for _, w := range wrap {
		localBackend = w(localBackend)
		remoteBackend = w(remoteBackend)
	}

	return gateway.NewGateway(localBackend, remoteBackend, mode, log), local, nil
}

func NewEmbeddingProvider(providerType, baseURL, apiKey, model string, timeout time.Duration) (embedding.EmbeddingProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return embedding.NewOllamaProvider(baseURL, model, timeout), nil
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("openai embedding provider requires an API key")
		}
		return embedding.NewOpenAIProvider(baseURL, apiKey, model, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
