package taxonomy

import (
	"strings"
	"unicode"
)

// NormKey returns the normalized identity key for a category or group name:
// trimmed, inner whitespace collapsed to single spaces, lowercased.
func NormKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// TitleCase capitalizes the first letter of each word for display. The
// standalone word "a" stays lowercase unless it is the first word.
func TitleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	first := true
	inWord := false
	wordStart := 0
	flush := func(end int) {
		word := s[wordStart:end]
		low := strings.ToLower(word)
		if low == "a" && !first {
			b.WriteString("a")
		} else {
			r := []rune(low)
			r[0] = unicode.ToUpper(r[0])
			b.WriteString(string(r))
		}
		first = false
	}

	for i, r := range s {
		if unicode.IsSpace(r) {
			if inWord {
				flush(i)
				inWord = false
			}
			b.WriteRune(r)
		} else if !inWord {
			inWord = true
			wordStart = i
		}
	}
	if inWord {
		flush(len(s))
	}
	return b.String()
}
