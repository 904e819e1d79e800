// Package textmatch holds the string normalization and similarity primitives
// used to compare free-text symptom queries against disease names.
package textmatch

import (
	"regexp"
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"i": {}, "im": {}, "have": {}, "having": {}, "am": {}, "is": {}, "are": {}, "was": {}, "were": {}, "been": {},
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "to": {}, "for": {}, "from": {}, "in": {}, "on": {}, "at": {}, "of": {},
	"with": {}, "without": {}, "my": {}, "me": {}, "it": {}, "this": {}, "that": {}, "these": {}, "those": {}, "very": {},
	"long": {}, "hours": {}, "hour": {}, "days": {}, "day": {}, "weeks": {}, "week": {}, "months": {}, "month": {},
}

var symptomVocabulary = regexp.MustCompile(`(pain|ache|fever|cough|vomit|nausea|weak|swelling|burning|dizzy|fatigue|tired|breath|breathing|symptom|feeling)`)

// Normalize lowercases text, replaces every character outside [a-z0-9] and
// whitespace with a space, collapses whitespace runs and trims.
func Normalize(text string) string {
	return strings.Join(strings.Fields(scrub(text)), " ")
}

// Tokenize returns the normalized words of text in order, without stop words.
// Duplicates are kept.
func Tokenize(text string) []string {
	fields := strings.Fields(scrub(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if IsStopWord(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// IsStopWord reports whether token is ignored by Tokenize.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}

// LooksLikeSymptomDescription reports whether query reads like a description of
// symptoms rather than a disease name: five or more words, or any common symptom term.
func LooksLikeSymptomDescription(query string) bool {
	lowered := strings.ToLower(query)
	if len(strings.Fields(lowered)) >= 5 {
		return true
	}
	return symptomVocabulary.MatchString(lowered)
}

// DiceCoefficient returns the Sørensen-Dice similarity of the character bigram
// multisets of a and b, in [0,1].
func DiceCoefficient(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	ar, br := []rune(a), []rune(b)
	if len(ar) < 2 || len(br) < 2 {
		return 0
	}

	pairs := make(map[[2]rune]int, len(ar)-1)
	for i := 0; i < len(ar)-1; i++ {
		pairs[[2]rune{ar[i], ar[i+1]}]++
	}

	intersection := 0
	for i := 0; i < len(br)-1; i++ {
		pair := [2]rune{br[i], br[i+1]}
		if pairs[pair] > 0 {
			pairs[pair]--
			intersection++
		}
	}

	return float64(2*intersection) / float64(len(ar)+len(br)-2)
}

// TokenOverlapScore returns |A∩B| / max(|A|,|B|) over the token sets of source
// and target, or 0 when either side has no tokens.
func TokenOverlapScore(source, target string) float64 {
	sourceSet := tokenSet(source)
	targetSet := tokenSet(target)
	if len(sourceSet) == 0 || len(targetSet) == 0 {
		return 0
	}

	overlap := 0
	for token := range sourceSet {
		if _, ok := targetSet[token]; ok {
			overlap++
		}
	}

	return float64(overlap) / float64(max(len(sourceSet), len(targetSet)))
}

func tokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func scrub(text string) string {
	lowered := strings.ToLower(text)
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, lowered)
}
