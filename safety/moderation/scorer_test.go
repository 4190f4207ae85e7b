package moderation

import (
	"strings"
	"testing"

	"github.com/AladdinMagdy/whispr-sub000/models"
	"github.com/AladdinMagdy/whispr-sub000/safety/keyword"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *keyword.Catalog {
	return &keyword.Catalog{
		Version: "test-v1",
		Categories: map[models.ViolationType][]string{
			models.ViolationHarassment: {"stupid", "idiot", "ugly"},
			models.ViolationSpam:       {"buy now"},
		},
		Critical:     map[string]bool{"kill yourself": true, "kys": true, "bomb": true, "terrorist": true},
		HighSeverity: map[string]bool{"subhuman": true},
		SpamPhrases:  []string{"buy now", "click here"},
	}
}

func TestValidateText(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(ValidateText("hello"))
	assert.ErrorIs(ValidateText(""), ErrTextEmpty)
	assert.ErrorIs(ValidateText("   \t\n "), ErrTextWhitespace)
	assert.ErrorIs(ValidateText(strings.Repeat("a", MaxTextLength+1)), ErrTextTooLong)

	// the limit is characters, not bytes: 6000 two-byte runes are well
	// under it even though they exceed it in bytes
	assert.NoError(ValidateText(strings.Repeat("é", 6000)))
	assert.ErrorIs(ValidateText(strings.Repeat("é", MaxTextLength+1)), ErrTextTooLong)

	for _, err := range []error{ErrTextEmpty, ErrTextWhitespace, ErrTextTooLong} {
		assert.True(IsValidationError(err))
	}
}

func TestScanKeywordsHarassment(t *testing.T) {
	assert := assert.New(t)

	s := NewScorer(testCatalog(), nil)
	violations, matched := s.ScanKeywords("You are stupid and ugly")

	require.Len(t, violations, 2)
	for _, v := range violations {
		assert.Equal(models.ViolationHarassment, v.Type)
		assert.Equal(models.SeverityMedium, v.Severity)
		assert.Equal(models.ActionReject, v.SuggestedAction)
		assert.True(v.StartIndex >= 0)
		assert.True(v.EndIndex > v.StartIndex)
	}
	assert.Equal([]string{"stupid", "ugly"}, matched)
}

func TestScanKeywordSpansIndexFoldedText(t *testing.T) {
	assert := assert.New(t)

	s := NewScorer(testCatalog(), nil)

	// U+0130 lowercases to two runes, so the folded text is longer than
	// the original in bytes; spans are defined against the folded form
	text := "İSTANBUL you are STUPID"
	lower := strings.ToLower(text)
	violations, matched := s.ScanKeywords(text)

	require.Len(t, violations, 1)
	assert.Equal([]string{"stupid"}, matched)
	assert.Equal("stupid", lower[violations[0].StartIndex:violations[0].EndIndex])
}

func TestScanKeywordsRepeatedOccurrences(t *testing.T) {
	assert := assert.New(t)

	s := NewScorer(testCatalog(), nil)
	violations, matched := s.ScanKeywords("stupid stupid stupid")
	assert.Len(violations, 3)
	assert.Equal([]string{"stupid", "stupid", "stupid"}, matched)
}

func TestDetermineSeverityOverrideOrder(t *testing.T) {
	assert := assert.New(t)

	cat := testCatalog()
	// critical overrides apply regardless of category
	for _, kw := range []string{"kill yourself", "kys", "bomb", "terrorist", "KYS", "Bomb"} {
		assert.Equal(models.SeverityCritical, DetermineSeverity(cat, models.ViolationSpam, kw), kw)
	}
	assert.Equal(models.SeverityHigh, DetermineSeverity(cat, models.ViolationSpam, "subhuman"))
	assert.Equal(models.SeverityMedium, DetermineSeverity(cat, models.ViolationHarassment, "stupid"))
	assert.Equal(models.SeverityLow, DetermineSeverity(cat, models.ViolationDrugs, "whatever"))
}

func TestSuggestedActionTable(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(models.ActionReject, SuggestedActionFor(models.ViolationHarassment))
	assert.Equal(models.ActionReject, SuggestedActionFor(models.ViolationHateSpeech))
	assert.Equal(models.ActionReject, SuggestedActionFor(models.ViolationViolence))
	assert.Equal(models.ActionFlag, SuggestedActionFor(models.ViolationSexualContent))
	assert.Equal(models.ActionFlag, SuggestedActionFor(models.ViolationDrugs))
	assert.Equal(models.ActionWarn, SuggestedActionFor(models.ViolationSpam))
	assert.Equal(models.ActionReject, SuggestedActionFor(models.ViolationPersonalInfo))
}

func TestToxicityScoreProperties(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0.0, ToxicityScore(nil, 100))

	low := []Violation{{Severity: models.SeverityLow, Confidence: 1.0}}
	high := []Violation{{Severity: models.SeverityCritical, Confidence: 1.0}}
	many := []Violation{
		{Severity: models.SeverityCritical, Confidence: 1.0},
		{Severity: models.SeverityCritical, Confidence: 1.0},
		{Severity: models.SeverityCritical, Confidence: 1.0},
	}

	for _, vs := range [][]Violation{low, high, many} {
		score := ToxicityScore(vs, 50)
		assert.GreaterOrEqual(score, 0.0)
		assert.LessOrEqual(score, 1.0)
	}

	// non-decreasing in total weight, length fixed
	assert.Greater(ToxicityScore(high, 50), ToxicityScore(low, 50))

	// longer text dilutes: same violations, 50 chars vs 200 chars
	assert.Greater(ToxicityScore(high, 50), ToxicityScore(high, 200))
}

func TestSpamScore(t *testing.T) {
	assert := assert.New(t)

	phrases := []string{"buy now", "click here"}

	assert.Equal(0.0, SpamScore("a perfectly ordinary whisper about the weather", phrases))

	assert.Greater(SpamScore("THIS IS ALL SHOUTING TEXT", phrases), 0.0)
	assert.Greater(SpamScore("wow!!!", phrases), 0.0)
	assert.Greater(SpamScore("amazingggg", phrases), 0.0)
	assert.Greater(SpamScore("buy now before it is gone", phrases), 0.0)

	// all four signals stack and cap at 1.0
	all := SpamScore("BUY NOW CLICK HERE WOWWWW AMAZING DEAL!!!", phrases)
	assert.InDelta(1.0, all, 1e-9)
	assert.LessOrEqual(all, 1.0)
}

func TestBuildResultCleanText(t *testing.T) {
	assert := assert.New(t)

	s := NewScorer(testCatalog(), nil)
	res, err := s.Analyze("just sharing a calm thought about gardening")
	assert.NoError(err)

	assert.False(res.Flagged)
	assert.Empty(res.Violations)
	assert.Equal(0.0, res.ToxicityScore)
	assert.Equal(0.0, res.SpamScore)
	assert.False(res.PersonalInfoDetected)
	assert.Equal(models.ActionApprove, res.RecommendedAction)
	assert.Equal("test-v1", res.CatalogVersion)
}

func TestBuildResultSynthesizesPersonalInfoViolation(t *testing.T) {
	assert := assert.New(t)

	s := NewScorer(testCatalog(), nil)
	res, err := s.Analyze("call me at 555-123-4567")
	assert.NoError(err)

	assert.True(res.Flagged)
	assert.True(res.PersonalInfoDetected)
	require.Len(t, res.Violations, 1)
	assert.Equal(models.ViolationPersonalInfo, res.Violations[0].Type)
	assert.Equal(models.SeverityHigh, res.Violations[0].Severity)
	assert.Equal(models.ActionReject, res.Violations[0].SuggestedAction)
	assert.Equal(-1, res.Violations[0].StartIndex)
}

func TestShouldRejectImmediately(t *testing.T) {
	assert := assert.New(t)

	s := NewScorer(testCatalog(), nil)

	// critical keyword matched
	res := &Result{MatchedKeywords: []string{"bomb"}}
	assert.True(s.ShouldRejectImmediately(res))

	// toxicity over the hard threshold
	res = &Result{ToxicityScore: 0.81}
	assert.True(s.ShouldRejectImmediately(res))
	res = &Result{ToxicityScore: 0.8}
	assert.False(s.ShouldRejectImmediately(res))

	// personal info
	res = &Result{PersonalInfoDetected: true}
	assert.True(s.ShouldRejectImmediately(res))

	res = &Result{MatchedKeywords: []string{"stupid"}, ToxicityScore: 0.3}
	assert.False(s.ShouldRejectImmediately(res))
}

func TestRecommendedActionOverlapsSuggested(t *testing.T) {
	assert := assert.New(t)

	// SPAM keyword suggests warn per category table, while the aggregate
	// recommendation is computed from scores; both are exposed
	s := NewScorer(testCatalog(), nil)
	res, err := s.Analyze("buy now")
	assert.NoError(err)
	require.NotEmpty(t, res.Violations)
	assert.Equal(models.ActionWarn, res.Violations[0].SuggestedAction)
	assert.NotEmpty(res.RecommendedAction)
}
