package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/llm"
	"ai-chatbot-be/pkg/rag/prompt"
)

const (
	LocalBackendName = "local"

	localParseError = "Unable to parse the language model response."
	localCallError  = "Service call error: %v"
)

// LocalBackend drives a self-hosted completion endpoint behind a Breaker.
type LocalBackend struct {
	completer llm.Completer
	fragments prompt.Fragments
	breaker   *Breaker
	timeout   time.Duration
	logger    logger.ILogger
}

func NewLocalBackend(completer llm.Completer, fragments prompt.Fragments, breaker *Breaker, timeout time.Duration, log logger.ILogger) *LocalBackend {
	if breaker == nil {
		breaker = NewBreaker(DefaultCooldown)
	}
	return &LocalBackend{
		completer: completer,
		fragments: fragments,
		breaker:   breaker,
		timeout:   timeout,
		logger:    log,
	}
}

func (b *LocalBackend) Name() string {
	return LocalBackendName
}

func (b *LocalBackend) Breaker() *Breaker {
	return b.breaker
}

// Complete sends a classification prompt. The prompt template is not a user
// question, so an offline reply is always the default one.
func (b *LocalBackend) Complete(ctx context.Context, text string) llm.Result {
	return b.call(ctx, text, "")
}

func (b *LocalBackend) Generate(ctx context.Context, req GenerationRequest) llm.Result {
	full := prompt.NewContextualBuilder(b.fragments, req.Question, req.Knowledge, req.History).Build()

	b.logger.Info("LLM_LOCAL", "Generating grounded answer", map[string]interface{}{
		"prompt_length":  len(full),
		"knowledge_hits": len(req.Knowledge),
	})

	return b.call(ctx, full, req.Question)
}

// call sends text to the endpoint unless the breaker is cooling down.
// question keys the canned fallback.
func (b *LocalBackend) call(ctx context.Context, text, question string) llm.Result {
	if !b.breaker.Allow() {
		return llm.Degraded(LocalBackendName, FallbackReply(question), "local backend cooling down")
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	reply, err := b.completer.Generate(ctx, text)
	switch {
	case err == nil:
		b.breaker.RecordSuccess()
		return llm.OK(LocalBackendName, reply)

	case isTransportFailure(err):
		b.breaker.RecordFailure()
		b.logger.Error("LLM_LOCAL", "Local model unreachable, switching to offline replies", map[string]interface{}{
			"error": err.Error(),
		})
		return llm.Degraded(LocalBackendName, FallbackReply(question), err.Error())

	case errors.Is(err, llm.ErrMalformedResponse):
		b.breaker.RecordSuccess()
		b.logger.Warn("LLM_LOCAL", "Unreadable model response", map[string]interface{}{
			"error": err.Error(),
		})
		return llm.Failed(LocalBackendName, localParseError, err.Error())

	default:
		b.logger.Error("LLM_LOCAL", "Local model call failed", map[string]interface{}{
			"error": err.Error(),
		})
		return llm.Failed(LocalBackendName, fmt.Sprintf(localCallError, err), err.Error())
	}
}

func isTransportFailure(err error) bool {
	return errors.Is(err, llm.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}
