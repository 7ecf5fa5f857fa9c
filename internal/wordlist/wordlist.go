// Package wordlist holds normalized token sets for filler and command words.
// A Set is never mutated after construction; callers replace the whole set.
package wordlist

import (
	"bargein/interrupt/internal/text"
)

// Set is an immutable collection of normalized tokens.
type Set struct {
	words map[string]struct{}
}

// New builds a Set from raw words. Each entry is normalized the same way
// transcript tokens are; entries that normalize to nothing are dropped.
func New(words []string) *Set {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		if n := text.NormalizeWord(w); n != "" {
			m[n] = struct{}{}
		}
	}
	return &Set{words: m}
}

// Contains reports whether token is an exact member of the set.
// Substring matches do not count: "stopping" does not match "stop".
func (s *Set) Contains(token string) bool {
	_, ok := s.words[token]
	return ok
}

// ContainsAny reports whether any token is a member of the set.
func (s *Set) ContainsAny(tokens []string) bool {
	for _, t := range tokens {
		if s.Contains(t) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every token is a member of the set.
// Vacuously true for an empty token list.
func (s *Set) ContainsAll(tokens []string) bool {
	for _, t := range tokens {
		if !s.Contains(t) {
			return false
		}
	}
	return true
}

func (s *Set) Len() int { return len(s.words) }
