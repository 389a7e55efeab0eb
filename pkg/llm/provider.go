package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrUnavailable marks transport-level failures: refused connections, resets and timeouts.
	ErrUnavailable = errors.New("llm: backend unavailable")
	// ErrMalformedResponse marks replies that arrived but could not be read as an answer.
	ErrMalformedResponse = errors.New("llm: malformed response")
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// ApplyOptions folds opts over base.
func ApplyOptions(base Options, opts ...Option) Options {
	for _, opt := range opts {
		opt(&base)
	}
	return base
}

// Completer sends a single prompt and returns the raw completion text.
type Completer interface {
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// ChatModel sends a structured message list and returns the assistant reply.
type ChatModel interface {
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)
}
