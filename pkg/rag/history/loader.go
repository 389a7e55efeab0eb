package history

import (
	"strings"

	"ai-chatbot-be/internal/constant"
)

// ContextWindow renders the last `pairs` Q/A pairs that precede the current
// question as a labelled block. history must end with the current question,
// which is never included. Returns "" when there is no prior turn.
func ContextWindow(history []string, pairs int) string {
	prior := PriorLines(history, pairs)
	if len(prior) == 0 {
		return ""
	}
	return constant.ContextWindowLabel + "\n" + strings.Join(prior, "\n")
}

// PriorLines returns at most 2*pairs history lines before the final entry.
func PriorLines(history []string, pairs int) []string {
	if len(history) <= 1 || pairs <= 0 {
		return nil
	}

	prior := history[:len(history)-1]
	limit := 2 * pairs
	if len(prior) > limit {
		prior = prior[len(prior)-limit:]
	}

	out := make([]string, len(prior))
	copy(out, prior)
	return out
}
