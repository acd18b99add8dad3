// Package match scores taxonomy labels against typed queries with a
// deterministic hybrid of exact, prefix, token, subsequence, and bounded
// edit-distance signals.
package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	punctToSpace = regexp.MustCompile(`[\/\-\.,'()\[\]{}:;!?"` + "`" + `~|\\]+`)
	whitespace   = regexp.MustCompile(`\s+`)
	nonSlug      = regexp.MustCompile(`[^a-z0-9\-]+`)
	dashRuns     = regexp.MustCompile(`-{2,}`)

	// NFD decompose, drop combining marks, recompose.
	deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Normalize applies the shared query/label normalization: strip diacritics,
// lowercase, "&" to "and", punctuation to spaces, collapse whitespace, trim.
// Queries and candidate labels must pass through the same pipeline or
// scoring comparisons are meaningless.
func Normalize(s string) string {
	if out, _, err := transform.String(deaccent, s); err == nil {
		s = out
	}
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "&", " and ")
	s = punctToSpace.ReplaceAllString(s, " ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Slugify derives a stable identifier from a label.
func Slugify(label string) string {
	s := Normalize(label)
	s = strings.ReplaceAll(s, " ", "-")
	s = nonSlug.ReplaceAllString(s, "")
	s = strings.Trim(dashRuns.ReplaceAllString(s, "-"), "-")
	if s == "" {
		return "item"
	}
	return s
}

// isSubsequence reports whether the characters of query appear, in order,
// within target (spaces in target ignored).
func isSubsequence(query, target string) bool {
	q := []rune(query)
	if len(q) == 0 {
		return true
	}
	i := 0
	for _, ch := range strings.ReplaceAll(target, " ", "") {
		if ch == q[i] {
			i++
			if i == len(q) {
				return true
			}
		}
	}
	return false
}
