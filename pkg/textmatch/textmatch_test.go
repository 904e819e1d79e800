package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"punctuation and case", "  Severe HEADACHE, left-side!! ", "severe headache left side"},
		{"tabs and newlines collapse", "chest\tpain\n\nnight", "chest pain night"},
		{"non ascii letters become spaces", "Crohn’s disease", "crohn s disease"},
		{"empty", "", ""},
		{"only symbols", "?!-", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Type-2 Diabetes (Adult)", "  I'm having   CHEST pain!! ", "", "Ünïcode ñame"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), in)
	}
}

func TestTokenize_DropsStopWordsKeepsOrder(t *testing.T) {
	got := Tokenize("I have had a severe headache on my left side for two days")
	assert.Equal(t, []string{"had", "severe", "headache", "left", "side", "two"}, got)

	assert.Equal(t, []string{"pain", "pain"}, Tokenize("pain, pain"))
	assert.Empty(t, Tokenize("the and of"))
}

func TestLooksLikeSymptomDescription(t *testing.T) {
	assert.False(t, LooksLikeSymptomDescription("migraine"))
	assert.False(t, LooksLikeSymptomDescription("diabetes mellitus"))
	assert.True(t, LooksLikeSymptomDescription("Chest PAIN"))
	assert.True(t, LooksLikeSymptomDescription("fever"))
	assert.True(t, LooksLikeSymptomDescription("short of breath"))
	assert.True(t, LooksLikeSymptomDescription("one two three four five"))
}

func TestDiceCoefficient(t *testing.T) {
	assert.Equal(t, 1.0, DiceCoefficient("migraine", "migraine"))
	assert.Equal(t, 0.0, DiceCoefficient("", "migraine"))
	assert.Equal(t, 0.0, DiceCoefficient("migraine", ""))
	assert.Equal(t, 0.0, DiceCoefficient("a", "ab"))
	assert.Equal(t, 0.0, DiceCoefficient("ab", "c"))
	assert.InDelta(t, 0.25, DiceCoefficient("night", "nacht"), 1e-9)
	assert.Equal(t, 0.0, DiceCoefficient("abc", "xyz"))
}

func TestDiceCoefficient_ConsumesRepeatedBigrams(t *testing.T) {
	// "aaaa" has three "aa" bigrams, "aa" has one: only one can be matched.
	assert.InDelta(t, 2.0/4.0, DiceCoefficient("aaaa", "aa"), 1e-9)
}

func TestTokenOverlapScore(t *testing.T) {
	assert.InDelta(t, 0.5, TokenOverlapScore("tension headache", "headache"), 1e-9)
	assert.InDelta(t, 1.0, TokenOverlapScore("Migraine", "migraine!"), 1e-9)
	assert.Equal(t, 0.0, TokenOverlapScore("the of", "migraine"))
	assert.Equal(t, 0.0, TokenOverlapScore("", "migraine"))
}

func TestTokenOverlapScore_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"lower back pain", "back pain chronic"},
		{"severe headache left side", "cluster headache"},
		{"acute kidney injury", "kidney stones"},
	}
	for _, p := range pairs {
		assert.Equal(t, TokenOverlapScore(p[0], p[1]), TokenOverlapScore(p[1], p[0]))
	}
}
