package models

import (
	"time"
)

// UserReputation is the per-user trust record. Score and Level must always
// change together: use SetScore, never assign the fields directly.
type UserReputation struct {
	UserID           string          `gorm:"primaryKey"`
	Score            int             `gorm:"not null"`
	Level            ReputationLevel `gorm:"not null"`
	TotalWhispers    int64           `gorm:"not null;default:0"`
	ApprovedWhispers int64           `gorm:"not null;default:0"`
	FlaggedWhispers  int64           `gorm:"not null;default:0"`
	RejectedWhispers int64           `gorm:"not null;default:0"`
	// append-only; the resolved flag is the only field ever edited
	ViolationHistory []ViolationRecord `gorm:"foreignKey:UserID;references:UserID"`
	LastViolation    *time.Time
	// timestamp of the last applied recovery sweep, so re-running a sweep
	// within the same window is a no-op
	LastRecoveryAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// New users start trusted-but-unproven: moderation, not reputation, is the
// primary gate for fresh accounts.
const DefaultReputationScore = 75

func NewUserReputation(userID string) *UserReputation {
	now := time.Now().UTC()
	rep := &UserReputation{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	rep.SetScore(DefaultReputationScore)
	return rep
}

// SetScore clamps to [0, 100] and recomputes the level. This is the only
// place Level is ever assigned.
func (r *UserReputation) SetScore(score int) {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	r.Score = score
	r.Level = LevelForScore(score)
}

// LevelForScore maps a score to its discrete trust tier.
func LevelForScore(score int) ReputationLevel {
	switch {
	case score >= 90:
		return LevelTrusted
	case score >= 75:
		return LevelVerified
	case score >= 50:
		return LevelStandard
	case score >= 25:
		return LevelFlagged
	default:
		return LevelBanned
	}
}

// ViolationRecord is one element of a user's violation history.
type ViolationRecord struct {
	ID            uint64        `gorm:"primaryKey"`
	UserID        string        `gorm:"index;not null"`
	WhisperID     string        `gorm:"index"`
	ViolationType ViolationType `gorm:"not null"`
	Severity      Severity      `gorm:"not null"`
	Resolved      bool          `gorm:"not null;default:false"`
	Notes         string
	CreatedAt     time.Time `gorm:"not null"`
}
