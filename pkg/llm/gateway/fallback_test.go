package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackReply(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"Hello there", FallbackGreeting},
		{"hi!", FallbackGreeting},
		{"你好，在吗", FallbackGreeting},
		{"Thanks a lot", FallbackThanks},
		{"谢谢你", FallbackThanks},
		{"ok bye", FallbackFarewell},
		{"再见", FallbackFarewell},
		{"Can you help me?", FallbackHelp},
		{"这个怎么用", FallbackHelp},
		{"What is the refund policy?", FallbackDefault},
		{"which one is this", FallbackDefault},
		{"", FallbackDefault},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackReply(tt.question))
		})
	}
}
