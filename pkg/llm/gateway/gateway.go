package gateway

import (
	"context"
	"sync/atomic"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/llm"
)

// GenerationRequest carries everything a backend needs to answer one grounded question.
type GenerationRequest struct {
	Question  string
	Knowledge []string
	// History is the labelled block rendered into single-string prompts.
	History string
	// Turns are the same prior entries, one question or answer each.
	Turns []string
}

// Backend is one generation strategy. Implementations never return Go errors;
// failures come back as llm.Result values with StatusFailed.
type Backend interface {
	Name() string
	// Complete runs a single-turn call, used for classification.
	Complete(ctx context.Context, prompt string) llm.Result
	// Generate answers a question with retrieved knowledge and conversation history.
	Generate(ctx context.Context, req GenerationRequest) llm.Result
}

// Gateway owns both backends and the process-wide mode.
type Gateway struct {
	mode   atomic.Value
	local  Backend
	remote Backend
	logger logger.ILogger
}

func NewGateway(local, remote Backend, initial Mode, log logger.ILogger) *Gateway {
	g := &Gateway{
		local:  local,
		remote: remote,
		logger: log,
	}
	if initial != ModeRemote {
		initial = ModeLocal
	}
	g.mode.Store(initial)
	return g
}

func (g *Gateway) Mode() Mode {
	return g.mode.Load().(Mode)
}

func (g *Gateway) SetMode(m Mode) {
	prev := g.mode.Swap(m).(Mode)
	if prev != m {
		g.logger.Info("LLM_GATEWAY", "Chat mode changed", map[string]interface{}{
			"from": string(prev),
			"to":   string(m),
		})
	}
}

// Select resolves the backend for the current mode. Callers keep the
// returned value for the whole request so a concurrent SetMode cannot
// split one request across backends.
func (g *Gateway) Select() Backend {
	return g.Backend(g.Mode())
}

func (g *Gateway) Backend(m Mode) Backend {
	if m == ModeRemote {
		return g.remote
	}
	return g.local
}
