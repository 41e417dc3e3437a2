package answer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// punctuation stripped before comparison: straight and curly quotes, periods,
// commas, parentheses and hyphens.
var punctuation = strings.NewReplacer(
	"'", "", "‘", "", "’", "",
	"\"", "", "“", "", "”", "",
	".", "", ",", "", "(", "", ")", "", "-", "",
)

var articles = regexp.MustCompile(`\b(the|a|an)\b`)

// Connectives ignored when comparing multi-item answers.
var stopWords = map[string]struct{}{
	"and":  {},
	"or":   {},
	"of":   {},
	"in":   {},
	"with": {},
}

// Normalize lowercases s, strips punctuation and stand-alone articles, and
// collapses whitespace.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = punctuation.Replace(s)
	s = articles.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// Stem strips one trailing "s" from words of five or more characters. Short
// words like "rays" or "was" are left alone.
func Stem(word string) string {
	if utf8.RuneCountInString(word) >= 5 && strings.HasSuffix(word, "s") {
		return word[:len(word)-1]
	}
	return word
}

// Tokenize returns the stemmed content words of s.
func Tokenize(s string) []string {
	words := strings.Split(Normalize(s), " ")
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) <= 1 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		tokens = append(tokens, Stem(w))
	}
	return tokens
}

func words(s string) []string {
	return strings.Split(Normalize(s), " ")
}
