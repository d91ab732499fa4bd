// Package slug turns titles and file names into URL-safe path segments.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make returns the lowercase slug for title. Letters are folded to ASCII where
// a decomposition exists, every run of characters outside [a-z0-9] becomes a
// single '-', and leading or trailing separators are dropped.
//
// Make is idempotent: Make(Make(s)) == Make(s).
func Make(title string) string {
	folded, _, err := transform.String(foldChain(), title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		if isSlugRune(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// foldChain is rebuilt per call; transform.Transformer values carry state.
func foldChain() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func isSlugRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
