package response

import (
	"strings"
	"testing"

	"ai-chatbot-be/internal/constant"

	"github.com/stretchr/testify/assert"
)

func TestRefusalIsFromFixedSet(t *testing.T) {
	p := NewPicker()
	for i := 0; i < 50; i++ {
		assert.Contains(t, constant.RefusalMessages, p.Refusal())
	}
}

func TestRefusalUsesSource(t *testing.T) {
	p := NewPicker().WithSource(func(n int) int { return n - 1 })
	assert.Equal(t, constant.RefusalMessages[len(constant.RefusalMessages)-1], p.Refusal())
}

func TestHandOffAndDisclaimer(t *testing.T) {
	p := NewPicker()
	assert.Equal(t, constant.HandOffMessage, p.HandOff())

	out := WithDisclaimer("Cats sit.")
	assert.True(t, strings.HasPrefix(out, "Cats sit."))
	assert.True(t, strings.HasSuffix(out, constant.NoKnowledgeDisclaimer))
}
