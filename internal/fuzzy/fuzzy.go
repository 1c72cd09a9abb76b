package fuzzy

import (
	"math"
	"strings"
)

// Similarity thresholds and fixed scores
const (
	ContainmentScore    = 95.0
	TokenMatchThreshold = 80.0
	DescriptionDiscount = 0.8
)

// Levenshtein computes the edit distance between two strings over runes,
// unit cost for insertion, deletion and substitution
func Levenshtein(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	r1, r2 := []rune(s1), []rune(s2)
	len1, len2 := len(r1), len(r2)
	if len1 == 0 {
		return len2
	}
	if len2 == 0 {
		return len1
	}

	// Create matrix
	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	// Fill matrix
	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			if r1[i-1] == r2[j-1] {
				matrix[i][j] = matrix[i-1][j-1]
				continue
			}
			matrix[i][j] = 1 + min(
				min(matrix[i-1][j], matrix[i][j-1]), // deletion, insertion
				matrix[i-1][j-1],                    // substitution
			)
		}
	}

	return matrix[len1][len2]
}

// StringSimilarity returns a case-insensitive edit-distance similarity in [0,100]
func StringSimilarity(a, b string) float64 {
	s1, s2 := Normalize(a), Normalize(b)
	if s1 == s2 {
		return 100
	}

	maxLen := max(len([]rune(s1)), len([]rune(s2)))
	if maxLen == 0 {
		return 100
	}

	distance := Levenshtein(s1, s2)
	similarity := float64(maxLen-distance) / float64(maxLen) * 100
	return math.Max(0, similarity)
}

// NameSimilarity compares two person names in [0,100]. Identical names score 100,
// a name fully contained in the other scores 95, otherwise the better of fuzzy token
// overlap and whole-string similarity. An empty name only matches another empty name.
func NameSimilarity(name1, name2 string) float64 {
	n1, n2 := Normalize(name1), Normalize(name2)
	if n1 == n2 {
		return 100
	}
	if n1 == "" || n2 == "" {
		return 0
	}

	tokens1 := strings.Fields(n1)
	tokens2 := strings.Fields(n2)

	full1 := strings.Join(tokens1, " ")
	full2 := strings.Join(tokens2, " ")
	if strings.Contains(full1, full2) || strings.Contains(full2, full1) {
		return ContainmentScore
	}

	tokenSimilarity := tokenOverlap(tokens1, tokens2)
	return math.Max(tokenSimilarity, StringSimilarity(name1, name2))
}

// tokenOverlap is the share of distinct tokens that have a close counterpart in both names
func tokenOverlap(tokens1, tokens2 []string) float64 {
	all := make([]string, 0, len(tokens1)+len(tokens2))
	seen := make(map[string]bool)
	for _, token := range append(append([]string{}, tokens1...), tokens2...) {
		if !seen[token] {
			seen[token] = true
			all = append(all, token)
		}
	}
	if len(all) == 0 {
		return 0.0
	}

	matched := 0
	for _, token := range all {
		if hasCloseToken(tokens1, token) && hasCloseToken(tokens2, token) {
			matched++
		}
	}

	return float64(matched) / float64(len(all)) * 100
}

func hasCloseToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if StringSimilarity(t, token) > TokenMatchThreshold {
			return true
		}
	}
	return false
}

// DescriptionSimilarity compares free-text physical descriptions in [0,100]:
// the better of word-set Jaccard and discounted whole-string similarity
func DescriptionSimilarity(desc1, desc2 string) float64 {
	if strings.TrimSpace(desc1) == "" || strings.TrimSpace(desc2) == "" {
		return 0
	}

	jaccard := Jaccard(TokenSet(Tokenize(desc1)), TokenSet(Tokenize(desc2))) * 100
	stringSim := StringSimilarity(desc1, desc2)

	return math.Max(jaccard, stringSim*DescriptionDiscount)
}

// AgeScore maps an age difference in years to [0,100]
func AgeScore(diff int) float64 {
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff == 0:
		return 100
	case diff <= 3:
		return 90
	case diff <= 5:
		return 75
	case diff <= 10:
		return 50
	case diff <= 15:
		return 25
	default:
		return 0
	}
}
