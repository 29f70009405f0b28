// Package text prepares announcement strings for the speech provider.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sanitize replaces every character that is not an ASCII letter, an ASCII
// digit or whitespace with a space, collapses whitespace runs to a single
// space and trims both ends. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return ' '
		}
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// isCapitalized reports whether the first character of word is upper case.
func isCapitalized(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(r)
}

func hasDigit(word string) bool {
	return strings.IndexFunc(word, unicode.IsDigit) >= 0
}
