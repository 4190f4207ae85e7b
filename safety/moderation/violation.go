package moderation

import (
	"github.com/AladdinMagdy/whispr-sub000/models"
)

// Violation is a single detected policy breach within a text. Created
// transiently by the scorer; persisted only when embedded in a result or a
// user violation record.
type Violation struct {
	Type            models.ViolationType `json:"type"`
	Severity        models.Severity      `json:"severity"`
	Confidence      float64              `json:"confidence"`
	Description     string               `json:"description"`
	SuggestedAction models.Action        `json:"suggestedAction"`
	// byte offsets of the matched span within the lowercase-folded text
	// (strings.ToLower of the input), not the original: folding can change
	// byte lengths. -1 when the violation was not tied to a specific span
	// (eg, synthesized personal-info violations)
	StartIndex int `json:"startIndex"`
	EndIndex   int `json:"endIndex"`
}

// Result is the aggregate local moderation output for one text. Immutable
// once produced; recomputed per submission.
type Result struct {
	Flagged              bool          `json:"flagged"`
	Violations           []Violation   `json:"violations"`
	MatchedKeywords      []string      `json:"matchedKeywords"`
	ToxicityScore        float64       `json:"toxicityScore"`
	SpamScore            float64       `json:"spamScore"`
	PersonalInfoDetected bool          `json:"personalInfoDetected"`
	RecommendedAction    models.Action `json:"recommendedAction"`
	CatalogVersion       string        `json:"catalogVersion"`
}

// HasCriticalViolation reports whether any violation in the result carries
// critical severity.
func (r *Result) HasCriticalViolation() bool {
	for _, v := range r.Violations {
		if v.Severity == models.SeverityCritical {
			return true
		}
	}
	return false
}

// MaxSeverity returns the highest severity present, or "" for a clean
// result.
func (r *Result) MaxSeverity() models.Severity {
	rank := map[models.Severity]int{
		models.SeverityLow:      1,
		models.SeverityMedium:   2,
		models.SeverityHigh:     3,
		models.SeverityCritical: 4,
	}
	var out models.Severity
	best := 0
	for _, v := range r.Violations {
		if rank[v.Severity] > best {
			best = rank[v.Severity]
			out = v.Severity
		}
	}
	return out
}
