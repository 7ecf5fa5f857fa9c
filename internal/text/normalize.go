package text

import (
	"strings"
	"unicode"
)

// NormalizeWord lowercases a word and strips every rune that is not a letter
// or digit. Word-list entries and transcript tokens go through the same
// function, so punctuated forms like "uh-huh" and "mm-hmm" compare equal.
func NormalizeWord(w string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(w) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tokenize splits a raw transcript into normalized tokens in original order.
// Tokens that normalize to the empty string are dropped, so a transcript of
// only whitespace or punctuation yields an empty slice.
func Tokenize(transcript string) []string {
	fields := strings.Fields(transcript)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := NormalizeWord(f); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
