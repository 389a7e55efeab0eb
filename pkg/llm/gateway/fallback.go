package gateway

import "strings"

const (
	FallbackGreeting = "Hello! I'm the AI assistant. I'm running in offline mode right now, so some features may be limited."
	FallbackThanks   = "You're welcome, glad I could help! I'm in offline mode at the moment, so bigger requests may need to wait until the service is back."
	FallbackFarewell = "Goodbye! Come back any time."
	FallbackHelp     = "I'm an AI assistant that answers questions and gives information. I'm in offline mode right now with limited features; normally I can answer knowledge questions and give suggestions."
	FallbackDefault  = "Sorry, the AI service is temporarily unavailable and can't answer your question. Please make sure Ollama is running (default port 11434) or try again later."
)

var (
	greetingWords = []string{"hi", "hello", "hey"}
	greetingCJK   = []string{"你好", "您好", "嗨"}
	thanksWords   = []string{"thanks", "thank", "thx"}
	thanksCJK     = []string{"谢谢", "感谢"}
	farewellWords = []string{"bye", "goodbye"}
	farewellCJK   = []string{"再见", "拜拜"}
	helpWords     = []string{"help"}
	helpCJK       = []string{"帮助", "怎么用"}
)

// FallbackReply picks a canned offline answer from keywords in the question.
// English keywords match whole words; CJK keywords match as substrings.
func FallbackReply(question string) string {
	words := tokenize(question)

	switch {
	case hasWord(words, greetingWords) || containsAny(question, greetingCJK):
		return FallbackGreeting
	case hasWord(words, thanksWords) || containsAny(question, thanksCJK):
		return FallbackThanks
	case hasWord(words, farewellWords) || containsAny(question, farewellCJK):
		return FallbackFarewell
	case hasWord(words, helpWords) || containsAny(question, helpCJK):
		return FallbackHelp
	default:
		return FallbackDefault
	}
}

func tokenize(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'')
	})
	words := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		words[f] = struct{}{}
	}
	return words
}

func hasWord(words map[string]struct{}, keywords []string) bool {
	for _, k := range keywords {
		if _, ok := words[k]; ok {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
