package keyword

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonTokenChars = regexp.MustCompile(`[^\pL\pN\s]+`)

// Splits free-form text in to tokens, including lower-case, unicode
// normalization, and some unicode folding.
//
// The intent is to enable fast matching against known token lists even when
// the author leans on punctuation or diacritics to dodge a match.
func TokenizeText(text string) []string {
	// the transform chain is rebuilt per call to avoid a race on its state
	normFunc := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	split := strings.ToLower(nonTokenChars.ReplaceAllString(text, " "))
	folded, _, err := transform.String(normFunc, split)
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		folded = split
	}
	return strings.Fields(folded)
}

var nonSlugChars = regexp.MustCompile(`[^\pL\pN]+`)

// Slugify returns the text with all non-letter, non-digit characters
// removed and all characters lower-cased. Useful for catching keywords
// obscured with separators ("k.y.s").
func Slugify(orig string) string {
	return strings.ToLower(nonSlugChars.ReplaceAllString(orig, ""))
}
