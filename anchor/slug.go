// Package anchor derives stable semantic identifiers from package
// bookmarks and heading text, and resolves them back to bookmark names
// during rendering.
package anchor

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics decomposes text and strips combining marks, so
// "Résumé" slugs the same as "Resume".
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives a semantic identifier from heading text: lowercase,
// runs of non-alphanumeric characters collapsed to single hyphens,
// leading and trailing hyphens trimmed. Derivation is deterministic:
// the same text always yields the same slug.
func Slugify(text string) string {
	folded, _, err := transform.String(foldDiacritics, text)
	if err != nil {
		folded = text
	}
	var sb strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			if pendingHyphen && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingHyphen = false
			sb.WriteRune(r)
		} else {
			pendingHyphen = true
		}
	}
	return sb.String()
}
