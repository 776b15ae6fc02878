package source

import (
	"fmt"
	"unicode/utf8"
)

// Per-platform message limits, in characters.
const (
	MaxDiscordChars = 2000
	MaxSlackChars   = 4000
)

// Chunk splits text into pieces of at most limit characters. A piece ends at
// the last newline of its window when that newline lies in the second half of
// the window; the newline itself is dropped. Otherwise the text is cut at
// exactly limit characters. Empty text yields no pieces.
func Chunk(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	runes := []rune(text)
	var chunks []string
	for len(runes) > limit {
		cut, skip := limit, 0
		for i := limit - 1; i > 0 && i >= limit/2; i-- {
			if runes[i] == '\n' {
				cut, skip = i, 1
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut+skip:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

// validateText checks that outbound text is valid UTF-8.
func validateText(text string) error {
	if !utf8.ValidString(text) {
		return fmt.Errorf("source: text contains invalid UTF-8")
	}
	return nil
}
