package intent

import (
	"context"
	"fmt"
	"strings"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/llm"
)

// Intent is the coarse routing label for a question.
type Intent string

const (
	Accept     Intent = "ACCEPT"
	Refuse     Intent = "REFUSE"
	OutOfScope Intent = "OUT_OF_SCOPE"
	Switch     Intent = "SWITCH"
)

// priority is the order labels are searched for in a raw reply.
var priority = []Intent{Accept, Refuse, Switch, OutOfScope}

// Completer is the single-turn call the classifier needs from an LLM backend.
type Completer interface {
	Complete(ctx context.Context, prompt string) llm.Result
}

type Classifier struct {
	logger logger.ILogger
}

func NewClassifier(log logger.ILogger) *Classifier {
	return &Classifier{logger: log}
}

// Classify asks backend for a label. There is no retry; anything that does
// not contain a label, including degraded or failed replies, is refused.
func (c *Classifier) Classify(ctx context.Context, backend Completer, question string) Intent {
	res := backend.Complete(ctx, fmt.Sprintf(constant.IntentClassificationPrompt, question))
	got := Parse(res.Text)

	c.logger.Info("INTENT", "Question classified", map[string]interface{}{
		"intent":  string(got),
		"status":  res.Status.String(),
		"backend": res.Backend,
		"raw":     truncate(res.Text, 80),
	})

	return got
}

// Parse finds the first label, in priority order, contained in raw.
func Parse(raw string) Intent {
	upper := strings.ToUpper(raw)
	for _, label := range priority {
		if strings.Contains(upper, string(label)) {
			return label
		}
	}
	return Refuse
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
