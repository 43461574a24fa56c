package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// wordSplitPattern matches non-alphanumeric character sequences.
var wordSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// foldMarks decomposes accented characters and drops the combining marks,
// so "Léon" and "Leon" normalize to the same string.
var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripAccents(text string) string {
	folded, _, err := transform.String(foldMarks, text)
	if err != nil {
		return text
	}
	return folded
}

// Normalize lowercases text, folds accented letters to their base forms,
// and strips every remaining non-alphanumeric character. Two titles that
// normalize to the same string are treated as exact matches by the
// provider clients.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(stripAccents(text)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeTitle lowercases text and collapses every non-alphanumeric run
// into a single space. Suitable for building search queries.
func NormalizeTitle(text string) string {
	return strings.Join(titleWords(text), " ")
}

// Slug renders text as a lowercase hyphen-separated token.
func Slug(text string) string {
	return strings.Join(titleWords(text), "-")
}

func titleWords(text string) []string {
	lowered := strings.ToLower(strings.TrimSpace(stripAccents(text)))
	raw := wordSplitPattern.Split(lowered, -1)
	words := make([]string, 0, len(raw))
	for _, word := range raw {
		if word == "" {
			continue
		}
		words = append(words, word)
	}
	return words
}
