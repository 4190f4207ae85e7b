// Package keyword holds the static, versioned violation keyword catalog and
// the pattern tables used by the moderation scorer. A Catalog is an
// immutable value: build one at startup (or in a test) and pass it in, so
// classification is a pure function of (text, catalog).
package keyword

import (
	"strings"

	"github.com/AladdinMagdy/whispr-sub000/models"
)

type Catalog struct {
	// catalog revision, so scoring output can be tied to the table version
	Version string

	// per-category keyword and phrase lists; matching is case-insensitive
	// substring search
	Categories map[models.ViolationType][]string

	// severity overrides, checked before per-category defaults; keys are
	// lower-case matched text
	Critical     map[string]bool
	HighSeverity map[string]bool

	// phrases that contribute to the spam score
	SpamPhrases []string
}

// DefaultCatalog returns the built-in v1 tables. Tests that need tighter
// control build their own Catalog instead of mutating this one.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Version: "2024-06-v1",
		Categories: map[models.ViolationType][]string{
			models.ViolationHarassment: {
				"stupid", "idiot", "ugly", "loser", "pathetic", "worthless",
				"nobody likes you", "kill yourself", "kys",
			},
			models.ViolationHateSpeech: {
				"go back to your country", "subhuman", "vermin",
			},
			models.ViolationViolence: {
				"i will hurt you", "i will kill", "beat you up", "bomb",
				"terrorist", "shoot up",
			},
			models.ViolationSexualContent: {
				"send nudes", "onlyfans", "explicit pics",
			},
			models.ViolationDrugs: {
				"buy weed", "cheap pills", "drug hookup",
			},
			models.ViolationSpam: {
				"buy now", "click here", "limited offer", "free money",
				"work from home", "dm me to earn",
			},
			models.ViolationScam: {
				"wire transfer", "gift card code", "crypto doubling",
				"guaranteed returns",
			},
			models.ViolationMinorSafety: {
				"how old are you", "don't tell your parents",
			},
		},
		Critical: map[string]bool{
			"kill yourself":           true,
			"kys":                     true,
			"bomb":                    true,
			"terrorist":               true,
			"shoot up":                true,
			"don't tell your parents": true,
		},
		HighSeverity: map[string]bool{
			"i will kill":     true,
			"i will hurt you": true,
			"subhuman":        true,
			"vermin":          true,
		},
		SpamPhrases: []string{
			"buy now", "click here", "limited offer", "free money",
			"act fast", "100% free", "make money fast",
		},
	}
}

func (c *Catalog) IsCritical(matched string) bool {
	return c.Critical[strings.ToLower(matched)]
}

func (c *Catalog) IsHighSeverity(matched string) bool {
	return c.HighSeverity[strings.ToLower(matched)]
}

// ContainsCriticalKeyword reports whether any critical keyword appears in
// the text, either as a plain substring or with separator characters
// stripped (so "k.y.s" still matches "kys").
func (c *Catalog) ContainsCriticalKeyword(text string) bool {
	lower := strings.ToLower(text)
	slug := Slugify(text)
	for kw := range c.Critical {
		if strings.Contains(lower, kw) {
			return true
		}
		if kwSlug := Slugify(kw); kwSlug != "" && strings.Contains(slug, kwSlug) {
			return true
		}
	}
	return false
}
