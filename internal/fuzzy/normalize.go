package fuzzy

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize folds text for comparison: NFC composition, lower case, trimmed
func Normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFC.String(s)))
}

// Tokenize splits normalized text on whitespace
func Tokenize(s string) []string {
	return strings.Fields(Normalize(s))
}

// TokenSet returns the distinct tokens of s
func TokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		set[token] = true
	}
	return set
}

// Jaccard returns |A∩B| / |A∪B| as a fraction; 0 when the intersection is empty
func Jaccard(set1, set2 map[string]bool) float64 {
	intersection := 0
	for token := range set1 {
		if set2[token] {
			intersection++
		}
	}
	union := len(set1) + len(set2) - intersection
	if intersection == 0 || union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}
