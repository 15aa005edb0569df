package security

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeText trims s, drops control characters other than newline and tab,
// and cuts it to at most maxRunes runes. maxRunes <= 0 disables the cut.
func SanitizeText(s string, maxRunes int) string {
	s = strings.TrimSpace(s)

	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, s)

	if maxRunes > 0 && utf8.RuneCountInString(cleaned) > maxRunes {
		cleaned = string([]rune(cleaned)[:maxRunes])
	}

	return strings.TrimSpace(cleaned)
}
