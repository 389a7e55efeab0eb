package utils

// Chunk slices text into consecutive pieces of at most maxChunkChars runes.
// Pieces do not overlap and boundaries ignore words and sentences.
func Chunk(text string, maxChunkChars int) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if maxChunkChars <= 0 || len(runes) <= maxChunkChars {
		return []string{text}
	}

	chunks := make([]string, 0, (len(runes)+maxChunkChars-1)/maxChunkChars)
	for start := 0; start < len(runes); start += maxChunkChars {
		end := start + maxChunkChars
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
