package keyword

import "regexp"

// Compiled once at package init and reused for every call, so they are safe
// for concurrent use.
var (
	// phone numbers with "-", "." or no separator: 555-123-4567, 5551234567
	phonePattern = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)

	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)

	// SSN-shaped sequences
	ssnPattern = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)

	// credit-card-shaped sequences grouped with "-" or spaces
	creditCardPattern = regexp.MustCompile(`\b\d{4}[- ]\d{4}[- ]\d{4}[- ]\d{4}\b`)

	// street addresses: "123 Main Street" and common abbreviations
	streetAddressPattern = regexp.MustCompile(`(?i)\b\d+\s+\w+\s+(street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr)\b`)

	// explicit mentions, eg "my phone number is ..."
	personalPhrasePattern = regexp.MustCompile(`(?i)\b(phone number|home address|social security)\b`)

	personalInfoPatterns = []*regexp.Regexp{
		phonePattern,
		emailPattern,
		ssnPattern,
		creditCardPattern,
		streetAddressPattern,
		personalPhrasePattern,
	}

	// runs of repeated terminal punctuation ("!!!", "??!?")
	punctuationRunPattern = regexp.MustCompile(`[!?]{3,}`)
)

// ContainsPersonalInfo reports whether any personal-information pattern
// matches. A single hit flags the whole text.
func ContainsPersonalInfo(text string) bool {
	for _, p := range personalInfoPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func ContainsPunctuationRun(text string) bool {
	return punctuationRunPattern.MatchString(text)
}

// HasRepeatedCharRun reports whether text contains a run of n or more
// identical characters ("amazingggg"). RE2 has no backreferences, so this
// is a linear rune scan.
func HasRepeatedCharRun(text string, n int) bool {
	count := 1
	prev := rune(-1)
	for _, r := range text {
		if r == prev {
			count++
			if count >= n {
				return true
			}
		} else {
			count = 1
			prev = r
		}
	}
	return false
}
