package prompt

import (
	"fmt"
	"strings"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/pkg/llm"
)

const (
	KnowledgeLabel   = "Knowledge base content:"
	QuestionLabel    = "Current user question:"
	AssistantCue     = "Assistant:"
	NoKnowledgeFound = "No relevant knowledge base content was found."
)

// Fragments are the instruction pieces shared by both backends.
type Fragments struct {
	System               string
	PreventHallucination string
	Citation             string
	FormatInstruction    string
}

// SystemMessage joins the persona with every non-empty instruction fragment.
func (f Fragments) SystemMessage() string {
	parts := []string{f.System}
	for _, extra := range []string{f.PreventHallucination, f.Citation, f.FormatInstruction} {
		if strings.TrimSpace(extra) != "" {
			parts = append(parts, extra)
		}
	}
	return strings.Join(nonEmpty(parts), "\n\n")
}

// ContextualBuilder assembles the prompt (local) or message list (remote)
// for one knowledge-grounded question.
type ContextualBuilder struct {
	fragments Fragments
	question  string
	knowledge []string
	history   string
	turns     []string
}

// NewContextualBuilder creates a new contextual prompt builder.
// history is the labelled conversation block and may be empty.
func NewContextualBuilder(fragments Fragments, question string, knowledge []string, history string) *ContextualBuilder {
	return &ContextualBuilder{
		fragments: fragments,
		question:  question,
		knowledge: knowledge,
		history:   history,
	}
}

// WithTurns sets the prior session entries Messages replays as chat turns.
func (b *ContextualBuilder) WithTurns(turns []string) *ContextualBuilder {
	b.turns = turns
	return b
}

// Build renders the single-string prompt sent to a completion endpoint.
func (b *ContextualBuilder) Build() string {
	var prompt strings.Builder

	b.writeInstructions(&prompt)
	b.writeHistory(&prompt)
	b.writeKnowledge(&prompt)
	b.writeUserQuery(&prompt)

	return prompt.String()
}

// Messages renders the chat-completion message list: system instructions,
// one message per prior session entry, then the grounded question.
func (b *ContextualBuilder) Messages() []llm.Message {
	var messages []llm.Message

	if system := b.fragments.SystemMessage(); system != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	}

	messages = append(messages, HistoryMessages(b.turns)...)

	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf("%s\n%s\n\n%s %s", KnowledgeLabel, b.KnowledgeBlock(), QuestionLabel, b.question),
	})

	return messages
}

// KnowledgeBlock joins trimmed segment contents, or explains that nothing was found.
func (b *ContextualBuilder) KnowledgeBlock() string {
	var parts []string
	for _, k := range b.knowledge {
		if t := strings.TrimSpace(k); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return NoKnowledgeFound
	}
	return strings.Join(parts, "\n\n")
}

func (b *ContextualBuilder) writeInstructions(prompt *strings.Builder) {
	for _, part := range []string{
		b.fragments.System,
		b.fragments.PreventHallucination,
		b.fragments.Citation,
		b.fragments.FormatInstruction,
	} {
		if strings.TrimSpace(part) == "" {
			continue
		}
		prompt.WriteString(part)
		prompt.WriteString("\n\n")
	}
}

func (b *ContextualBuilder) writeHistory(prompt *strings.Builder) {
	if strings.TrimSpace(b.history) == "" {
		return
	}
	prompt.WriteString(b.history)
	prompt.WriteString("\n\n")
}

func (b *ContextualBuilder) writeKnowledge(prompt *strings.Builder) {
	prompt.WriteString(KnowledgeLabel)
	prompt.WriteString("\n")
	prompt.WriteString(b.KnowledgeBlock())
	prompt.WriteString("\n\n")
}

func (b *ContextualBuilder) writeUserQuery(prompt *strings.Builder) {
	prompt.WriteString(QuestionLabel)
	prompt.WriteString(" ")
	prompt.WriteString(b.question)
	prompt.WriteString("\n\n")
	prompt.WriteString(AssistantCue)
}

// HistoryMessages maps stored session entries to chat turns. An entry is one
// whole question or answer, so multi-line answers stay in a single message
// whatever their lines start with. Entries without a known prefix are dropped.
func HistoryMessages(entries []string) []llm.Message {
	var messages []llm.Message

	for _, entry := range entries {
		switch {
		case strings.HasPrefix(entry, constant.HistoryQuestionPrefix):
			messages = append(messages, llm.Message{
				Role:    llm.RoleUser,
				Content: strings.TrimPrefix(entry, constant.HistoryQuestionPrefix),
			})
		case strings.HasPrefix(entry, constant.HistoryAnswerPrefix):
			messages = append(messages, llm.Message{
				Role:    llm.RoleAssistant,
				Content: strings.TrimPrefix(entry, constant.HistoryAnswerPrefix),
			})
		}
	}

	return messages
}

func nonEmpty(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
