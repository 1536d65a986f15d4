// Package tokenizer turns free-text profile fields into comparable sets.
package tokenizer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
	"github.com/kljensen/snowball/russian"
)

// minTokenLength is the shortest normalized token that survives word mode.
const minTokenLength = 3

var wordPattern = regexp.MustCompile(`(?i)[а-яёa-z]+(?:-[а-яёa-z]+)?`)

// Set is a deduplicated collection of tokens.
type Set map[string]struct{}

// NewSet builds a set from the given tokens.
func NewSet(tokens ...string) Set {
	s := make(Set, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

func (s Set) Has(token string) bool {
	_, ok := s[token]
	return ok
}

func (s Set) Len() int { return len(s) }

// Intersect returns tokens present in both sets.
func (s Set) Intersect(other Set) Set {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}

	common := make(Set)
	for t := range small {
		if large.Has(t) {
			common[t] = struct{}{}
		}
	}
	return common
}

// Words extracts letter runs from text, reduces every run to its stem and
// drops stop words and tokens shorter than three runes.
// A hyphenated compound stays one token with each part stemmed.
func Words(text string, stop StopWords) Set {
	result := make(Set)
	for _, raw := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		token := Normalize(raw)
		if utf8.RuneCountInString(token) < minTokenLength {
			continue
		}
		if stop.Has(token) {
			continue
		}
		result[token] = struct{}{}
	}
	return result
}

// Phrases splits text on commas into trimmed lowercase phrases.
// Phrases are compared literally, so "rock" and "rock music" never match.
func Phrases(text string) Set {
	result := make(Set)
	for _, part := range strings.Split(strings.ToLower(text), ",") {
		phrase := strings.TrimSpace(part)
		if phrase == "" {
			continue
		}
		result[phrase] = struct{}{}
	}
	return result
}

// Normalize lowercases a single word and reduces it to its Snowball stem,
// Russian for Cyrillic words and English otherwise. Parts of a hyphenated
// compound are stemmed one by one and joined back.
func Normalize(word string) string {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return word
	}

	if strings.Contains(word, "-") {
		parts := strings.Split(word, "-")
		for i, part := range parts {
			parts[i] = stem(part)
		}
		return strings.Join(parts, "-")
	}
	return stem(word)
}

func stem(word string) string {
	if word == "" {
		return word
	}
	if isCyrillic(word) {
		return russian.Stem(word, true)
	}
	return english.Stem(word, true)
}

func isCyrillic(word string) bool {
	for _, r := range word {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}
