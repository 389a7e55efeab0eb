package executor

import (
	"context"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/llm"
	"ai-chatbot-be/pkg/llm/gateway"
	"ai-chatbot-be/pkg/rag/history"
	"ai-chatbot-be/pkg/rag/response"
	"ai-chatbot-be/pkg/rag/search"
	"ai-chatbot-be/pkg/store"
)

// Retriever finds the knowledge segments relevant to a question.
type Retriever interface {
	Execute(ctx context.Context, query string, cfg search.Config) ([]store.Document, error)
}

// Config holds the knowledge-path parameters.
type Config struct {
	Search       search.Config
	HistoryPairs int
}

// PipelineExecutor runs the knowledge-query path: retrieve, assemble the
// context window, generate.
type PipelineExecutor struct {
	retriever Retriever
	config    Config
	logger    logger.ILogger
}

func NewPipelineExecutor(retriever Retriever, cfg Config, log logger.ILogger) *PipelineExecutor {
	return &PipelineExecutor{
		retriever: retriever,
		config:    cfg,
		logger:    log,
	}
}

// ExecutionResult contains the result of pipeline execution
type ExecutionResult struct {
	Result    llm.Result
	Documents []store.Document
}

// KnowledgeHit reports whether any segment was retrieved.
func (r ExecutionResult) KnowledgeHit() bool {
	return len(r.Documents) > 0
}

// Execute answers question with backend. sessionHistory must end with the
// current question. When nothing is retrieved the model still answers and
// the text carries the no-knowledge disclaimer.
func (p *PipelineExecutor) Execute(ctx context.Context, backend gateway.Backend, question string, sessionHistory []string) (*ExecutionResult, error) {
	docs, err := p.retriever.Execute(ctx, question, p.config.Search)
	if err != nil {
		return nil, err
	}

	req := gateway.GenerationRequest{
		Question:  question,
		Knowledge: search.Contents(docs),
		History:   history.ContextWindow(sessionHistory, p.config.HistoryPairs),
		Turns:     history.PriorLines(sessionHistory, p.config.HistoryPairs),
	}

	p.logger.Debug("PIPELINE", "Generating answer", map[string]interface{}{
		"backend":        backend.Name(),
		"knowledge":      len(docs),
		"history_length": len(sessionHistory),
	})

	res := backend.Generate(ctx, req)
	if len(docs) == 0 {
		res.Text = response.WithDisclaimer(res.Text)
	}

	return &ExecutionResult{Result: res, Documents: docs}, nil
}
