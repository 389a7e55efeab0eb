package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want []string
	}{
		{"empty", "", 5, nil},
		{"shorter than max", "abc", 5, []string{"abc"}},
		{"exact multiple", "abcdef", 3, []string{"abc", "def"}},
		{"remainder", "abcdefg", 3, []string{"abc", "def", "g"}},
		{"multibyte", "你好世界再见", 4, []string{"你好世界", "再见"}},
		{"non-positive max", "abc", 0, []string{"abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chunk(tt.text, tt.max))
		})
	}
}

func TestChunkCoversTextWithoutOverlap(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)

	chunks := Chunk(text, 500)

	assert.Equal(t, text, strings.Join(chunks, ""))
	for i, c := range chunks {
		n := utf8.RuneCountInString(c)
		assert.LessOrEqual(t, n, 500)
		if i < len(chunks)-1 {
			assert.Equal(t, 500, n)
		}
	}
}
