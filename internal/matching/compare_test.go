package matching

import (
	"testing"

	"github.com/spigell/vkinder/internal/tokenizer"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestCompareAge(t *testing.T) {
	assert.Equal(t, 13, CompareAge(ptr(30), ptr(30)))
	assert.Equal(t, 0, CompareAge(ptr(30), ptr(31)))
	assert.Equal(t, 0, CompareAge(nil, ptr(30)))
	assert.Equal(t, 0, CompareAge(ptr(30), nil))
}

func TestCompareCity(t *testing.T) {
	assert.Equal(t, 13, CompareCity(ptr(1), ptr(1)))
	assert.Equal(t, 0, CompareCity(ptr(1), ptr(2)))
	assert.Equal(t, 0, CompareCity(nil, nil))
}

func TestEvaluateRelations(t *testing.T) {
	tests := []struct {
		code *int
		want int
	}{
		{code: ptr(1), want: 5},
		{code: ptr(6), want: 5},
		{code: ptr(0), want: 2},
		{code: ptr(2), want: -5},
		{code: ptr(3), want: -5},
		{code: ptr(4), want: -5},
		{code: ptr(7), want: -5},
		{code: ptr(8), want: -5},
		{code: ptr(5), want: 0},
		{code: ptr(42), want: 0},
		{code: nil, want: 0},
	}

	for _, tt := range tests {
		if got := EvaluateRelations(tt.code); got != tt.want {
			t.Fatalf("EvaluateRelations(%v) = %d, want %d", deref(tt.code), got, tt.want)
		}
	}
}

func TestCompareLanguages(t *testing.T) {
	tests := []struct {
		name string
		a, b *string
		want int
	}{
		{name: "two common", a: ptr("[ru,en]"), b: ptr("[ru,en,fr]"), want: 1},
		{name: "one common", a: ptr("[ru]"), b: ptr("[ru,en]"), want: 0},
		{name: "three common with spaces", a: ptr("ru, en, fr"), b: ptr("[fr , en,ru]"), want: 2},
		{name: "four common in braces", a: ptr("{ru,en,fr,de}"), b: ptr("{de,fr,en,ru}"), want: 3},
		{name: "more than four", a: ptr("ru,en,fr,de,es,it"), b: ptr("ru,en,fr,de,es"), want: 4},
		{name: "garbage separators", a: ptr("ru;en;fr"), b: ptr("ru;en"), want: 0},
		{name: "empty list", a: ptr("[]"), b: ptr("[ru,en]"), want: 0},
		{name: "unknown", a: nil, b: ptr("[ru,en]"), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareLanguages(tt.a, tt.b))
		})
	}
}

func TestTiersPoints(t *testing.T) {
	tiers := Tiers{One: 2, Few: 4, Many: 6}

	want := map[int]int{0: 0, 1: 2, 2: 4, 6: 4, 7: 6, 100: 6, -1: 0}
	for n, points := range want {
		if got := tiers.Points(n); got != points {
			t.Fatalf("Points(%d) = %d, want %d", n, got, points)
		}
	}
}

func TestCompareInterestsWords(t *testing.T) {
	tiers := Tiers{One: 2, Few: 4, Many: 6}
	stop := tokenizer.DefaultStopWords()

	assert.Equal(t, 2, CompareInterestsWords(ptr("Спорт"), ptr("люблю спорт"), stop, tiers))
	assert.Equal(t, 4, CompareInterestsWords(ptr("спорт, музыка, кино"), ptr("кино и спорт"), stop, tiers))
	assert.Equal(t, 6, CompareInterestsWords(
		ptr("alpha bravo charlie delta echo foxtrot golf"),
		ptr("golf foxtrot echo delta charlie bravo alpha"),
		stop, tiers,
	))
	assert.Equal(t, 0, CompareInterestsWords(ptr("спорт"), ptr("музыка"), stop, tiers))
	assert.Equal(t, 0, CompareInterestsWords(nil, ptr("спорт"), stop, tiers))
	assert.Equal(t, 0, CompareInterestsWords(ptr(""), ptr(""), stop, tiers))
}

func TestCompareInterestsPhrases(t *testing.T) {
	tiers := Tiers{One: 2, Few: 3, Many: 4}

	assert.Equal(t, 2, CompareInterestsPhrases(ptr("Rock, Jazz"), ptr("rock"), tiers))
	assert.Equal(t, 3, CompareInterestsPhrases(ptr("Rock, Jazz , rock"), ptr("jazz,ROCK"), tiers))
	assert.Equal(t, 0, CompareInterestsPhrases(ptr("rock music"), ptr("rock"), tiers), "phrases match literally")
	assert.Equal(t, 0, CompareInterestsPhrases(ptr("rock"), nil, tiers))
}

func TestCompareMainThings(t *testing.T) {
	assert.Equal(t, 2, CompareMainThings(ptr(3), ptr(3)))
	assert.Equal(t, 0, CompareMainThings(ptr(3), ptr(4)))
	assert.Equal(t, 0, CompareMainThings(nil, ptr(4)))
}

func TestCompareSmokingAlcohol(t *testing.T) {
	tests := []struct {
		a, b *int
		want int
	}{
		{a: ptr(2), b: ptr(2), want: 2},
		{a: ptr(1), b: ptr(4), want: -1},
		{a: ptr(4), b: ptr(1), want: -1},
		{a: ptr(1), b: ptr(5), want: -2},
		{a: ptr(5), b: ptr(1), want: -2},
		{a: ptr(1), b: ptr(2), want: 0},
		{a: ptr(1), b: ptr(3), want: 0},
		{a: nil, b: ptr(3), want: 0},
	}

	for _, tt := range tests {
		if got := CompareSmokingAlcohol(tt.a, tt.b); got != tt.want {
			t.Fatalf("CompareSmokingAlcohol(%v, %v) = %d, want %d", deref(tt.a), deref(tt.b), got, tt.want)
		}
	}
}

func TestEvaluateMutualFriends(t *testing.T) {
	want := map[int]int{0: 0, -3: 0, 1: 3, 2: 3, 3: 8, 5: 8, 6: 13, 10: 13, 11: 18, 500: 18}
	for n, points := range want {
		if got := EvaluateMutualFriends(n); got != points {
			t.Fatalf("EvaluateMutualFriends(%d) = %d, want %d", n, got, points)
		}
	}
}

func TestEvaluateMutualGroups(t *testing.T) {
	groups := func(ids ...int64) map[int64]struct{} {
		set := make(map[int64]struct{})
		for _, id := range ids {
			set[id] = struct{}{}
		}
		return set
	}

	assert.Equal(t, 0, EvaluateMutualGroups(nil))
	assert.Equal(t, 0, EvaluateMutualGroups(groups()))
	assert.Equal(t, 1, EvaluateMutualGroups(groups(10)))
	assert.Equal(t, 2, EvaluateMutualGroups(groups(10, 20)))
	assert.Equal(t, 3, EvaluateMutualGroups(groups(10, 20, 30, 40)))
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())

	w := DefaultWeights()
	w.Music.Few = -1
	assert.Error(t, w.Validate())
}

func deref(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
