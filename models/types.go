package models

// Enumerated string types shared across the safety engines. Values are
// stored as-is in the database, so they must remain stable.

type ViolationType string

const (
	ViolationHarassment    ViolationType = "harassment"
	ViolationHateSpeech    ViolationType = "hate_speech"
	ViolationViolence      ViolationType = "violence"
	ViolationSexualContent ViolationType = "sexual_content"
	ViolationDrugs         ViolationType = "drugs"
	ViolationSpam          ViolationType = "spam"
	ViolationScam          ViolationType = "scam"
	ViolationCopyright     ViolationType = "copyright"
	ViolationPersonalInfo  ViolationType = "personal_info"
	ViolationMinorSafety   ViolationType = "minor_safety"
	// synthetic type used for admin score override audit records
	ViolationAdminAdjustment ViolationType = "admin_adjustment"
)

func (vt ViolationType) Valid() bool {
	switch vt {
	case ViolationHarassment, ViolationHateSpeech, ViolationViolence,
		ViolationSexualContent, ViolationDrugs, ViolationSpam, ViolationScam,
		ViolationCopyright, ViolationPersonalInfo, ViolationMinorSafety:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionWarn    Action = "warn"
	ActionFlag    Action = "flag"
	ActionReject  Action = "reject"
)

type ReputationLevel string

const (
	LevelTrusted  ReputationLevel = "trusted"
	LevelVerified ReputationLevel = "verified"
	LevelStandard ReputationLevel = "standard"
	LevelFlagged  ReputationLevel = "flagged"
	LevelBanned   ReputationLevel = "banned"
)

// Report categories match violation types; a report accuses content of a
// specific violation.
type ReportCategory = ViolationType

type ReportPriority string

const (
	PriorityLow      ReportPriority = "low"
	PriorityMedium   ReportPriority = "medium"
	PriorityHigh     ReportPriority = "high"
	PriorityCritical ReportPriority = "critical"
)

var priorityRank = map[ReportPriority]int{
	PriorityLow:      0,
	PriorityMedium:   1,
	PriorityHigh:     2,
	PriorityCritical: 3,
}

func (p ReportPriority) Rank() int {
	return priorityRank[p]
}

// Escalate returns the next priority up. Critical stays critical; priority
// never moves down through this path.
func (p ReportPriority) Escalate() ReportPriority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityCritical
	}
}

type ReportStatus string

const (
	StatusPending     ReportStatus = "pending"
	StatusUnderReview ReportStatus = "under_review"
	StatusEscalated   ReportStatus = "escalated"
	StatusResolved    ReportStatus = "resolved"
	StatusDismissed   ReportStatus = "dismissed"
)

// Terminal reports accept no further transitions.
func (s ReportStatus) Terminal() bool {
	return s == StatusResolved || s == StatusDismissed
}

// Subject types for reports and escalation thresholds.
const (
	SubjectWhisper = "whisper"
	SubjectComment = "comment"
)
