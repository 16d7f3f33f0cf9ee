package ingest

import (
	"strings"
	"unicode"
)

// EstimateTokenCount gives a rough token count for splitter sizing. It is a
// character-based heuristic, not a real tokenizer: long words are assumed to
// break into roughly one subword token per four characters, and digits are
// counted individually. Good enough to keep chunks near the configured
// budget; not suitable where exact counts matter.
func EstimateTokenCount(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	count := 0
	for _, word := range strings.Fields(text) {
		count += estimateWordTokens(word)
	}

	return count
}

func estimateWordTokens(word string) int {
	if len(word) == 1 && unicode.IsPunct(rune(word[0])) {
		return 1
	}

	if isNumber(word) {
		return len(word) // each numeric character may be an independent token
	}

	length := len(word)
	if length <= 4 {
		return 1
	}
	return (length + 3) / 4
}

func isNumber(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return false
		}
	}
	return true
}
