package chunker

import (
	"strings"
	"unicode"
)

// EstimateTokens gives a rough token count for mixed Chinese/English text.
// Words outside Han script count 1.33 tokens each; every Han character
// counts as one.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	han := 0
	latin := strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Han, r) {
			han++
			return ' '
		}
		return r
	}, text)
	tokens := han + int(float64(len(strings.Fields(latin)))*1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
