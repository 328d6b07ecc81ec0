package assistant

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases text, trims it, collapses runs of whitespace and
// strips diacritics, so "¿Cámara  Lenta?" becomes "¿camara lenta?".
func Normalize(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// containsWord reports whether kw occurs in text as whole words. Both must
// already be normalized.
func containsWord(text, kw string) bool {
	if kw == "" {
		return false
	}
	for i := 0; i <= len(text)-len(kw); {
		j := strings.Index(text[i:], kw)
		if j < 0 {
			return false
		}
		start, end := i+j, i+j+len(kw)
		if (start == 0 || !isWordByte(text[start-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		i = start + 1
	}
	return false
}

func containsAny(text string, kws ...string) bool {
	for _, kw := range kws {
		if containsWord(text, kw) {
			return true
		}
	}
	return false
}

// firstWord returns the first of kws found in text.
func firstWord(text string, kws []string) (string, bool) {
	for _, kw := range kws {
		if containsWord(text, kw) {
			return kw, true
		}
	}
	return "", false
}

func isWordByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}
