package report

import (
	"time"

	"github.com/AladdinMagdy/whispr-sub000/models"
)

// Base priority per report category. MINOR_SAFETY is handled before this
// table is consulted; it is always critical regardless of reporter.
var basePriority = map[models.ReportCategory]models.ReportPriority{
	models.ViolationHarassment:    models.PriorityMedium,
	models.ViolationHateSpeech:    models.PriorityHigh,
	models.ViolationViolence:      models.PriorityHigh,
	models.ViolationSexualContent: models.PriorityMedium,
	models.ViolationDrugs:         models.PriorityLow,
	models.ViolationSpam:          models.PriorityLow,
	models.ViolationScam:          models.PriorityMedium,
	models.ViolationCopyright:     models.PriorityLow,
	models.ViolationPersonalInfo:  models.PriorityMedium,
	models.ViolationMinorSafety:   models.PriorityCritical,
}

// PriorityFor computes a new report's priority: category base, then one
// step up for trusted reporters. Lower-reputation reporters never raise
// priority above the category base.
func PriorityFor(category models.ReportCategory, level models.ReputationLevel) models.ReportPriority {
	if category == models.ViolationMinorSafety {
		return models.PriorityCritical
	}
	p, ok := basePriority[category]
	if !ok {
		p = models.PriorityMedium
	}
	if level == models.LevelTrusted {
		p = p.Escalate()
	}
	return p
}

// EscalationTier fires only when BOTH gates are met: a minimum weighted
// report total AND a minimum unique-reporter count. One abusive reporter
// must never trigger escalation alone, however many reports they file.
type EscalationTier struct {
	MinWeightedReports float64
	MinUniqueReporters int
}

func (t EscalationTier) Met(weighted float64, reporters int) bool {
	return weighted >= t.MinWeightedReports && reporters >= t.MinUniqueReporters
}

// EscalationPolicy holds the three auto-escalation tiers for one content
// type, in increasing severity.
type EscalationPolicy struct {
	FlagForReview   EscalationTier
	AutoDelete      EscalationTier
	AutoSuspend     EscalationTier
	SuspendDuration time.Duration
}

// DefaultPolicies returns the per-content-type escalation thresholds.
// Comments run slightly hotter than whispers, so their gates sit higher.
func DefaultPolicies() map[string]EscalationPolicy {
	return map[string]EscalationPolicy{
		models.SubjectWhisper: {
			FlagForReview:   EscalationTier{MinWeightedReports: 3, MinUniqueReporters: 2},
			AutoDelete:      EscalationTier{MinWeightedReports: 10, MinUniqueReporters: 5},
			AutoSuspend:     EscalationTier{MinWeightedReports: 20, MinUniqueReporters: 10},
			SuspendDuration: 7 * 24 * time.Hour,
		},
		models.SubjectComment: {
			FlagForReview:   EscalationTier{MinWeightedReports: 5, MinUniqueReporters: 3},
			AutoDelete:      EscalationTier{MinWeightedReports: 15, MinUniqueReporters: 8},
			AutoSuspend:     EscalationTier{MinWeightedReports: 30, MinUniqueReporters: 15},
			SuspendDuration: 3 * 24 * time.Hour,
		},
	}
}

// Daily circuit-breaker quotas on automatic enforcement. If a bug or
// coordinated abuse starts mass-deleting content, the quota trips and
// escalation degrades to review-flagging until the next day.
const (
	QuotaAutoDeleteDay  = 200
	QuotaAutoSuspendDay = 50
)

// Flags raised on subjects and accounts by auto-escalation.
const (
	FlagReviewFlagged = "review-flagged"
	FlagAutoDeleted   = "auto-deleted"
	FlagAutoSuspended = "auto-suspended"
)
