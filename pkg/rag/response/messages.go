package response

import (
	"math/rand/v2"

	"ai-chatbot-be/internal/constant"
)

// Picker chooses the fixed replies for non-answerable intents.
type Picker struct {
	refusals []string
	intn     func(n int) int
}

func NewPicker() *Picker {
	return &Picker{
		refusals: constant.RefusalMessages,
		intn:     rand.IntN,
	}
}

// WithSource replaces the random source, mainly for tests.
func (p *Picker) WithSource(intn func(n int) int) *Picker {
	p.intn = intn
	return p
}

// Refusal returns one refusal string chosen uniformly at random.
func (p *Picker) Refusal() string {
	return p.refusals[p.intn(len(p.refusals))]
}

func (p *Picker) HandOff() string {
	return constant.HandOffMessage
}

// WithDisclaimer marks an answer that was generated without any retrieved knowledge.
func WithDisclaimer(answer string) string {
	return answer + "\n\n" + constant.NoKnowledgeDisclaimer
}
