package fuzzy

import (
	"strings"
)

// phoneticRules fold common transliteration variants of South Asian names.
// Order matters: longer patterns first.
var phoneticRules = []struct{ from, to string }{
	{"KSH", "X"},
	{"SH", "X"},
	{"CH", "X"},
	{"PH", "F"},
	{"TH", "T"},
	{"DH", "D"},
	{"BH", "B"},
	{"GH", "G"},
	{"KH", "K"},
	{"JH", "J"},
	{"CK", "K"},
	{"QU", "KW"},
	{"Q", "K"},
	{"C", "K"},
	{"Z", "S"},
	{"W", "V"},
}

// PhoneticKey returns a rough sound-alike key for a name, one code per token.
// "Lakshmi" and "Laxmi" share a key, as do "Ramesh" and "Rameesh".
func PhoneticKey(name string) string {
	var codes []string
	for _, token := range Tokenize(name) {
		if code := tokenCode(token); code != "" {
			codes = append(codes, code)
		}
	}
	return strings.Join(codes, " ")
}

func tokenCode(token string) string {
	letters := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r - 'a' + 'A'
		}
		return -1
	}, token)
	if letters == "" {
		return ""
	}

	for _, rule := range phoneticRules {
		letters = strings.ReplaceAll(letters, rule.from, rule.to)
	}

	var code strings.Builder
	var last rune
	for i, r := range letters {
		if i > 0 && strings.ContainsRune("AEIOUYH", r) {
			continue
		}
		if r == last {
			continue
		}
		code.WriteRune(r)
		last = r
	}
	return code.String()
}

// SoundsAlike reports whether two names share a non-empty phonetic key
func SoundsAlike(name1, name2 string) bool {
	key := PhoneticKey(name1)
	return key != "" && key == PhoneticKey(name2)
}
