// Package matching scores candidate profiles against a requester and orders them.
package matching

import (
	"strings"

	"github.com/spigell/vkinder/internal/tokenizer"
)

const (
	ageBonus        = 13
	cityBonus       = 13
	mainThingsBonus = 2
)

// CompareAge gives a fixed bonus for the same age.
func CompareAge(a, b *int) int {
	if a == nil || b == nil || *a != *b {
		return 0
	}
	return ageBonus
}

// CompareCity gives a fixed bonus for the same city id.
func CompareCity(a, b *int) int {
	if a == nil || b == nil || *a != *b {
		return 0
	}
	return cityBonus
}

// EvaluateRelations scores the candidate's relationship status alone.
// VK codes: 1 single, 6 actively searching, 0 not specified,
// 2 has a friend, 3 engaged, 4 married, 7 in love, 8 civil union.
func EvaluateRelations(code *int) int {
	if code == nil {
		return 0
	}
	switch *code {
	case 1, 6:
		return 5
	case 0:
		return 2
	case 2, 3, 4, 7, 8:
		return -5
	default:
		return 0
	}
}

// CompareLanguages scores the number of common languages.
func CompareLanguages(a, b *string) int {
	if a == nil || b == nil {
		return 0
	}
	common := parseList(*a).Intersect(parseList(*b)).Len()
	switch {
	case common > 4:
		return 4
	case common >= 2:
		return common - 1
	default:
		return 0
	}
}

// parseList reads "[ru, en]", "{ru,en}" or "ru,en". Anything unexpected yields fewer items.
func parseList(s string) tokenizer.Set {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '[' && s[len(s)-1] == ']') || (s[0] == '{' && s[len(s)-1] == '}') {
			s = s[1 : len(s)-1]
		}
	}
	return tokenizer.Phrases(s)
}

// CompareInterestsWords tokenizes both texts in word mode and scores the overlap.
func CompareInterestsWords(a, b *string, stop tokenizer.StopWords, t Tiers) int {
	if a == nil || b == nil {
		return 0
	}
	return overlap(tokenizer.Words(*a, stop), tokenizer.Words(*b, stop), t)
}

// CompareInterestsPhrases compares comma separated phrases literally and scores the overlap.
func CompareInterestsPhrases(a, b *string, t Tiers) int {
	if a == nil || b == nil {
		return 0
	}
	return overlap(tokenizer.Phrases(*a), tokenizer.Phrases(*b), t)
}

func overlap(a, b tokenizer.Set, t Tiers) int {
	if a == nil || b == nil {
		return 0
	}
	return t.Points(a.Intersect(b).Len())
}

// CompareMainThings matches political view, religion, life and people priorities.
func CompareMainThings(a, b *int) int {
	if a == nil || b == nil || *a != *b {
		return 0
	}
	return mainThingsBonus
}

// CompareSmokingAlcohol rewards equal attitudes and penalizes opposite ones.
func CompareSmokingAlcohol(a, b *int) int {
	if a == nil || b == nil {
		return 0
	}
	diff := *a - *b
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return 2
	case 3:
		return -1
	case 4:
		return -2
	default:
		return 0
	}
}

// EvaluateMutualFriends bands the mutual friend count.
func EvaluateMutualFriends(n int) int {
	switch {
	case n > 10:
		return 18
	case n >= 6:
		return 13
	case n >= 3:
		return 8
	case n >= 1:
		return 3
	default:
		return 0
	}
}

// EvaluateMutualGroups bands the number of common groups.
func EvaluateMutualGroups(groups map[int64]struct{}) int {
	switch n := len(groups); {
	case n > 2:
		return 3
	case n == 2:
		return 2
	case n == 1:
		return 1
	default:
		return 0
	}
}
