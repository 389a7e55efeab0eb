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
	RemoteBackendName = "remote"

	remoteParseError = "Unable to parse the remote model response."
	remoteCallError  = "Remote model call error: %v"
)

// RemoteBackend drives a hosted chat-completion endpoint. It has no breaker
// and never answers with canned replies.
type RemoteBackend struct {
	chat      llm.ChatModel
	fragments prompt.Fragments
	timeout   time.Duration
	logger    logger.ILogger
}

func NewRemoteBackend(chat llm.ChatModel, fragments prompt.Fragments, timeout time.Duration, log logger.ILogger) *RemoteBackend {
	return &RemoteBackend{
		chat:      chat,
		fragments: fragments,
		timeout:   timeout,
		logger:    log,
	}
}

func (b *RemoteBackend) Name() string {
	return RemoteBackendName
}

// Complete sends the persona as a system message followed by text as the user turn.
func (b *RemoteBackend) Complete(ctx context.Context, text string) llm.Result {
	var messages []llm.Message
	if b.fragments.System != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: b.fragments.System})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: text})

	return b.call(ctx, messages)
}

func (b *RemoteBackend) Generate(ctx context.Context, req GenerationRequest) llm.Result {
	messages := prompt.NewContextualBuilder(b.fragments, req.Question, req.Knowledge, req.History).
		WithTurns(req.Turns).
		Messages()

	b.logger.Info("LLM_REMOTE", "Generating grounded answer", map[string]interface{}{
		"messages":       len(messages),
		"knowledge_hits": len(req.Knowledge),
	})

	return b.call(ctx, messages)
}

func (b *RemoteBackend) call(ctx context.Context, messages []llm.Message) llm.Result {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	reply, err := b.chat.Chat(ctx, messages)
	if err == nil {
		return llm.OK(RemoteBackendName, reply)
	}

	b.logger.Error("LLM_REMOTE", "Remote model call failed", map[string]interface{}{
		"error": err.Error(),
	})

	if errors.Is(err, llm.ErrMalformedResponse) {
		return llm.Failed(RemoteBackendName, remoteParseError, err.Error())
	}
	return llm.Failed(RemoteBackendName, fmt.Sprintf(remoteCallError, err), err.Error())
}
