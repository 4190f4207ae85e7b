package moderation

import (
	"github.com/AladdinMagdy/whispr-sub000/models"
	"github.com/AladdinMagdy/whispr-sub000/safety/keyword"
)

// Weight each severity contributes to the toxicity score.
var SeverityWeights = map[models.Severity]float64{
	models.SeverityLow:      0.2,
	models.SeverityMedium:   0.5,
	models.SeverityHigh:     0.8,
	models.SeverityCritical: 1.0,
}

// Per-category default severity, used when no override set matches.
var categoryDefaultSeverity = map[models.ViolationType]models.Severity{
	models.ViolationHarassment:    models.SeverityMedium,
	models.ViolationHateSpeech:    models.SeverityMedium,
	models.ViolationViolence:      models.SeverityMedium,
	models.ViolationSexualContent: models.SeverityLow,
	models.ViolationDrugs:         models.SeverityLow,
	models.ViolationSpam:          models.SeverityLow,
	models.ViolationScam:          models.SeverityMedium,
	models.ViolationMinorSafety:   models.SeverityHigh,
}

// Fixed category action table. Not derived from severity; the score-derived
// recommended action is computed separately on the aggregate result.
var categoryActions = map[models.ViolationType]models.Action{
	models.ViolationHarassment:    models.ActionReject,
	models.ViolationHateSpeech:    models.ActionReject,
	models.ViolationViolence:      models.ActionReject,
	models.ViolationSexualContent: models.ActionFlag,
	models.ViolationDrugs:         models.ActionFlag,
	models.ViolationSpam:          models.ActionWarn,
	models.ViolationScam:          models.ActionFlag,
	models.ViolationMinorSafety:   models.ActionReject,
	models.ViolationPersonalInfo:  models.ActionReject,
}

// DetermineSeverity resolves severity for a matched keyword. Override
// order matters: critical set, then high-severity set, then the category
// default. Overrides apply regardless of category.
func DetermineSeverity(cat *keyword.Catalog, vtype models.ViolationType, matched string) models.Severity {
	if cat.IsCritical(matched) {
		return models.SeverityCritical
	}
	if cat.IsHighSeverity(matched) {
		return models.SeverityHigh
	}
	if sev, ok := categoryDefaultSeverity[vtype]; ok {
		return sev
	}
	return models.SeverityMedium
}

// SuggestedActionFor returns the fixed per-category action.
func SuggestedActionFor(vtype models.ViolationType) models.Action {
	if act, ok := categoryActions[vtype]; ok {
		return act
	}
	return models.ActionFlag
}
