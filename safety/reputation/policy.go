package reputation

import (
	"math"
	"time"

	"github.com/AladdinMagdy/whispr-sub000/models"
)

// Load-bearing policy tables. These are product policy, not tuning knobs:
// changing a value changes enforcement behavior for every user.

// Base score impact per violation type. MINOR_SAFETY carries the single
// highest base penalty by policy priority.
var BaseImpact = map[models.ViolationType]int{
	models.ViolationHarassment:    15,
	models.ViolationHateSpeech:    25,
	models.ViolationViolence:      30,
	models.ViolationSexualContent: 20,
	models.ViolationDrugs:         15,
	models.ViolationSpam:          5,
	models.ViolationScam:          20,
	models.ViolationCopyright:     10,
	models.ViolationPersonalInfo:  15,
	models.ViolationMinorSafety:   35,
}

var SeverityFactor = map[models.Severity]float64{
	models.SeverityLow:      0.5,
	models.SeverityMedium:   1.0,
	models.SeverityHigh:     1.5,
	models.SeverityCritical: 2.0,
}

// Applied on the moderation-result path only: already-distrusted users
// accumulate penalties faster. A deliberate deterrence amplifier.
var PenaltyMultiplier = map[models.ReputationLevel]float64{
	models.LevelTrusted:  0.5,
	models.LevelVerified: 0.75,
	models.LevelStandard: 1.0,
	models.LevelFlagged:  1.5,
	models.LevelBanned:   2.0,
}

// Daily score recovery rate while violation-free. Banned users never
// self-recover.
var RecoveryRatePerDay = map[models.ReputationLevel]float64{
	models.LevelTrusted:  2.0,
	models.LevelVerified: 1.5,
	models.LevelStandard: 1.0,
	models.LevelFlagged:  0.5,
	models.LevelBanned:   0,
}

// Recovery starts only after this many violation-free days.
const RecoveryDelayDays = 30

// Weight a reporter's reports carry toward escalation thresholds. Banned
// users cannot report at all.
var ReportWeight = map[models.ReputationLevel]float64{
	models.LevelTrusted:  2.0,
	models.LevelVerified: 1.5,
	models.LevelStandard: 1.0,
	models.LevelFlagged:  0.5,
	models.LevelBanned:   0,
}

var appealWindowDays = map[models.ReputationLevel]int{
	models.LevelTrusted:  30,
	models.LevelVerified: 14,
	models.LevelStandard: 7,
	models.LevelFlagged:  3,
	models.LevelBanned:   0,
}

// Content is auto-reversed on appeal when classifier confidence falls below
// this level-dependent bar. Banned users are never auto-appealed.
var autoAppealConfidenceThreshold = map[models.ReputationLevel]float64{
	models.LevelTrusted:  0.3,
	models.LevelVerified: 0.5,
	models.LevelStandard: 0.7,
	models.LevelFlagged:  0.9,
	models.LevelBanned:   1.0,
}

// ViolationImpact is the direct-path impact: base × severity factor,
// rounded to the nearest integer.
func ViolationImpact(vtype models.ViolationType, severity models.Severity) int {
	return int(math.Round(float64(BaseImpact[vtype]) * SeverityFactor[severity]))
}

// AppealTimeLimit returns how long a user at the given level has to appeal.
func AppealTimeLimit(level models.ReputationLevel) time.Duration {
	return time.Duration(appealWindowDays[level]) * 24 * time.Hour
}

func AutoAppealThreshold(level models.ReputationLevel) float64 {
	return autoAppealConfidenceThreshold[level]
}
