package intent

import (
	"context"
	"strings"
	"testing"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Intent
	}{
		{"ACCEPT", Accept},
		{"accept", Accept},
		{"The label is: Accept.", Accept},
		{"REFUSE", Refuse},
		{"SWITCH", Switch},
		{"OUT_OF_SCOPE", OutOfScope},
		{"out_of_scope", OutOfScope},
		{"REFUSE or maybe ACCEPT", Accept},
		{"SWITCH then REFUSE", Refuse},
		{"OUT_OF_SCOPE, SWITCH", Switch},
		{"", Refuse},
		{"I cannot decide", Refuse},
		{"Sorry, the AI service is temporarily unavailable", Refuse},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw))
		})
	}
}

type recordingBackend struct {
	prompt string
	result llm.Result
}

func (r *recordingBackend) Complete(_ context.Context, p string) llm.Result {
	r.prompt = p
	return r.result
}

func TestClassifySendsQuestionInPrompt(t *testing.T) {
	b := &recordingBackend{result: llm.OK("local", "  accept\n")}
	c := NewClassifier(logger.NewNopLogger())

	got := c.Classify(context.Background(), b, "How do I reset my password?")

	assert.Equal(t, Accept, got)
	assert.True(t, strings.HasSuffix(b.prompt, "How do I reset my password?"))
	assert.Contains(t, b.prompt, "OUT_OF_SCOPE")
}

func TestClassifyFailsClosed(t *testing.T) {
	c := NewClassifier(logger.NewNopLogger())

	degraded := &recordingBackend{result: llm.Degraded("local", "Hello! I'm the AI assistant.", "cooling down")}
	assert.Equal(t, Refuse, c.Classify(context.Background(), degraded, "hello"))

	failed := &recordingBackend{result: llm.Failed("remote", "Remote model call error: timeout", "timeout")}
	assert.Equal(t, Refuse, c.Classify(context.Background(), failed, "hello"))
}
