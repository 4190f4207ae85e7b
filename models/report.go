package models

import (
	"time"
)

// Report is a user-submitted complaint against a whisper or comment.
type Report struct {
	ID          uint64 `gorm:"primaryKey"`
	SubjectType string `gorm:"not null;index:idx_report_subject"`
	SubjectID   string `gorm:"not null;index:idx_report_subject"`
	// author of the reported content, carried so escalation can act on the
	// account without a content lookup
	SubjectAuthorID     string `gorm:"index"`
	ReporterID          string `gorm:"index;not null"`
	ReporterDisplayName string
	// reporter's reputation score at submission time (snapshot, not a
	// back-reference)
	ReporterReputation int            `gorm:"not null"`
	Category           ReportCategory `gorm:"not null"`
	Priority           ReportPriority `gorm:"not null"`
	Status             ReportStatus   `gorm:"not null;index"`
	Reason             string         `gorm:"not null"`
	Evidence           *string
	ReputationWeight   float64 `gorm:"not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ReviewedAt         *time.Time
	ReviewedBy         *string
	Resolution         *ReportResolution `gorm:"foreignKey:ReportID"`
}

// ReportResolution records the terminal moderator decision on a report.
type ReportResolution struct {
	ReportID    uint64 `gorm:"primaryKey"`
	Action      string `gorm:"not null"`
	Reason      string
	ModeratorID string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}
