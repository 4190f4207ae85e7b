// Package moderation classifies raw whisper text into violations and
// aggregate toxicity/spam scores, entirely locally. Output is a pure
// function of (text, catalog version): no network calls, no randomness.
package moderation

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/AladdinMagdy/whispr-sub000/models"
	"github.com/AladdinMagdy/whispr-sub000/safety/keyword"
)

const MaxTextLength = 10_000

// Input validation failures. Each is surfaced to the caller with its own
// reason; none are retried.
var (
	ErrTextEmpty      = errors.New("text is empty")
	ErrTextWhitespace = errors.New("text contains only whitespace")
	ErrTextTooLong    = fmt.Errorf("text exceeds maximum length of %d characters", MaxTextLength)
)

func IsValidationError(err error) bool {
	return errors.Is(err, ErrTextEmpty) || errors.Is(err, ErrTextWhitespace) || errors.Is(err, ErrTextTooLong)
}

// confidence assigned to keyword matches and synthesized violations;
// substring hits are strong but not perfect signals
const keywordMatchConfidence = 0.8

type Scorer struct {
	Catalog *keyword.Catalog
	Logger  *slog.Logger

	// aggregate-result flag thresholds
	FlagToxicityThreshold float64
	FlagSpamThreshold     float64
	// hard short-circuit threshold for immediate rejection
	HighToxicityThreshold float64
}

func NewScorer(catalog *keyword.Catalog, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{
		Catalog:               catalog,
		Logger:                logger,
		FlagToxicityThreshold: 0.7,
		FlagSpamThreshold:     0.7,
		HighToxicityThreshold: 0.8,
	}
}

// ValidateText rejects input the scorer will not score. The length limit
// is in characters, not bytes; multibyte text is counted by rune.
func ValidateText(text string) error {
	if len(text) == 0 {
		return ErrTextEmpty
	}
	if strings.TrimSpace(text) == "" {
		return ErrTextWhitespace
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}

// ScanKeywords runs the case-insensitive substring scan against every
// category table. Every occurrence is a separate violation; repeats within
// one category are deliberately not deduplicated. Violation spans index
// into the lowercase-folded text, not the original.
func (s *Scorer) ScanKeywords(text string) ([]Violation, []string) {
	lower := strings.ToLower(text)
	var violations []Violation
	var matched []string

	// map iteration order is randomized; sort categories so output order is
	// deterministic for a given (text, catalog)
	vtypes := make([]models.ViolationType, 0, len(s.Catalog.Categories))
	for vtype := range s.Catalog.Categories {
		vtypes = append(vtypes, vtype)
	}
	slices.Sort(vtypes)

	for _, vtype := range vtypes {
		words := s.Catalog.Categories[vtype]
		for _, kw := range words {
			for from := 0; ; {
				idx := strings.Index(lower[from:], kw)
				if idx < 0 {
					break
				}
				start := from + idx
				end := start + len(kw)
				violations = append(violations, Violation{
					Type:            vtype,
					Severity:        DetermineSeverity(s.Catalog, vtype, kw),
					Confidence:      keywordMatchConfidence,
					Description:     fmt.Sprintf("matched %s keyword %q", vtype, kw),
					SuggestedAction: SuggestedActionFor(vtype),
					StartIndex:      start,
					EndIndex:        end,
				})
				matched = append(matched, kw)
				from = end
			}
		}
	}
	return violations, matched
}

// DetectPersonalInfo reports whether the text exposes phone numbers,
// emails, SSN or card shapes, street addresses, or explicit phrases.
func (s *Scorer) DetectPersonalInfo(text string) bool {
	return keyword.ContainsPersonalInfo(text)
}

// Analyze validates, scans, and assembles the full moderation result for a
// text.
func (s *Scorer) Analyze(text string) (*Result, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}
	violations, matched := s.ScanKeywords(text)
	return s.BuildResult(text, violations, matched), nil
}

// BuildResult assembles the aggregate result from pre-extracted violations.
// If personal info was detected but no explicit personal-info violation was
// passed in, one is synthesized (high severity, reject) before scoring.
func (s *Scorer) BuildResult(text string, violations []Violation, matchedKeywords []string) *Result {
	personalInfo := s.DetectPersonalInfo(text)
	if personalInfo && !hasViolationType(violations, models.ViolationPersonalInfo) {
		violations = append(violations, Violation{
			Type:            models.ViolationPersonalInfo,
			Severity:        models.SeverityHigh,
			Confidence:      keywordMatchConfidence,
			Description:     "personal information pattern detected",
			SuggestedAction: models.ActionReject,
			StartIndex:      -1,
			EndIndex:        -1,
		})
	}

	toxicity := ToxicityScore(violations, len(text))
	spam := SpamScore(text, s.Catalog.SpamPhrases)
	flagged := len(violations) > 0 || personalInfo ||
		toxicity > s.FlagToxicityThreshold || spam > s.FlagSpamThreshold

	res := &Result{
		Flagged:              flagged,
		Violations:           violations,
		MatchedKeywords:      matchedKeywords,
		ToxicityScore:        toxicity,
		SpamScore:            spam,
		PersonalInfoDetected: personalInfo,
		CatalogVersion:       s.Catalog.Version,
	}
	res.RecommendedAction = s.recommendAction(res)

	textsScored.Inc()
	for _, v := range violations {
		violationsDetected.WithLabelValues(string(v.Type), string(v.Severity)).Inc()
	}
	if res.RecommendedAction == models.ActionReject {
		textsRejected.Inc()
	}
	return res
}

// ShouldRejectImmediately is a hard short-circuit, independent of the
// general recommended-action logic: critical keyword, very high toxicity,
// or exposed personal info.
func (s *Scorer) ShouldRejectImmediately(res *Result) bool {
	for _, kw := range res.MatchedKeywords {
		if s.Catalog.IsCritical(kw) {
			return true
		}
	}
	if res.ToxicityScore > s.HighToxicityThreshold {
		return true
	}
	return res.PersonalInfoDetected
}

// recommendAction derives the overall action from the aggregate scores.
// This intentionally overlaps with, but does not replace, the per-category
// suggested actions carried on each violation.
func (s *Scorer) recommendAction(res *Result) models.Action {
	if s.ShouldRejectImmediately(res) || res.HasCriticalViolation() {
		return models.ActionReject
	}
	if res.ToxicityScore > s.FlagToxicityThreshold || res.MaxSeverity() == models.SeverityHigh {
		return models.ActionFlag
	}
	if len(res.Violations) > 0 || res.SpamScore > s.FlagSpamThreshold {
		return models.ActionWarn
	}
	return models.ActionApprove
}

func hasViolationType(violations []Violation, vtype models.ViolationType) bool {
	for _, v := range violations {
		if v.Type == vtype {
			return true
		}
	}
	return false
}
