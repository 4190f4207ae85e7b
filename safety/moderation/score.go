package moderation

import (
	"strings"
	"unicode"

	"github.com/AladdinMagdy/whispr-sub000/safety/keyword"
)

// Fixed contribution of each spam signal. They sum to 1.0, and the total is
// capped there.
const (
	spamWeightCaps        = 0.3
	spamWeightPunctuation = 0.2
	spamWeightCharRun     = 0.2
	spamWeightPhrases     = 0.3

	capsRatioThreshold = 0.5
	capsMinLetters     = 10
	charRunLength      = 4
)

// ToxicityScore aggregates severity-weighted violation confidence,
// normalized by text length so the same violations dilute in longer text.
// Result is clamped to [0, 1]; an empty violation list scores 0.
func ToxicityScore(violations []Violation, textLength int) float64 {
	if len(violations) == 0 {
		return 0
	}
	var sum float64
	for _, v := range violations {
		sum += SeverityWeights[v.Severity] * v.Confidence
	}
	score := sum / normalizationFactor(textLength)
	if score > 1.0 {
		return 1.0
	}
	if score < 0 {
		return 0
	}
	return score
}

// normalizationFactor grows strictly with text length: identical violations
// over 200 characters must score lower than over 50.
func normalizationFactor(textLength int) float64 {
	if textLength < 0 {
		textLength = 0
	}
	return 1.0 + float64(textLength)/100.0
}

// SpamScore combines four independent signals additively, capped at 1.0.
// Text with none of the signals scores exactly 0.
func SpamScore(text string, spamPhrases []string) float64 {
	var score float64

	if excessiveCaps(text) {
		score += spamWeightCaps
	}
	if keyword.ContainsPunctuationRun(text) {
		score += spamWeightPunctuation
	}
	if repeatedCharsInWord(text) {
		score += spamWeightCharRun
	}
	if containsSpamPhrase(text, spamPhrases) {
		score += spamWeightPhrases
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}

func excessiveCaps(text string) bool {
	var letters, upper int
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters < capsMinLetters {
		return false
	}
	return float64(upper)/float64(letters) > capsRatioThreshold
}

func repeatedCharsInWord(text string) bool {
	for _, word := range strings.Fields(text) {
		if keyword.HasRepeatedCharRun(word, charRunLength) {
			return true
		}
	}
	return false
}

func containsSpamPhrase(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
