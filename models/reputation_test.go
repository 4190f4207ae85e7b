package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForScore(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		score int
		level ReputationLevel
	}{
		{100, LevelTrusted},
		{90, LevelTrusted},
		{89, LevelVerified},
		{75, LevelVerified},
		{74, LevelStandard},
		{50, LevelStandard},
		{49, LevelFlagged},
		{25, LevelFlagged},
		{24, LevelBanned},
		{0, LevelBanned},
	}
	for _, fix := range fixtures {
		assert.Equal(fix.level, LevelForScore(fix.score), "score=%d", fix.score)
	}
}

func TestSetScoreClampsAndRecomputesLevel(t *testing.T) {
	assert := assert.New(t)

	rep := NewUserReputation("user-1")
	assert.Equal(DefaultReputationScore, rep.Score)
	assert.Equal(LevelVerified, rep.Level)

	rep.SetScore(150)
	assert.Equal(100, rep.Score)
	assert.Equal(LevelTrusted, rep.Level)

	rep.SetScore(-10)
	assert.Equal(0, rep.Score)
	assert.Equal(LevelBanned, rep.Level)

	// level is always exactly f(score) after any mutation
	for _, score := range []int{0, 24, 25, 49, 50, 74, 75, 89, 90, 100} {
		rep.SetScore(score)
		assert.Equal(LevelForScore(score), rep.Level)
	}
}

func TestPriorityEscalate(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(PriorityMedium, PriorityLow.Escalate())
	assert.Equal(PriorityHigh, PriorityMedium.Escalate())
	assert.Equal(PriorityCritical, PriorityHigh.Escalate())
	assert.Equal(PriorityCritical, PriorityCritical.Escalate())
}

func TestStatusTerminal(t *testing.T) {
	assert := assert.New(t)

	assert.True(StatusResolved.Terminal())
	assert.True(StatusDismissed.Terminal())
	assert.False(StatusPending.Terminal())
	assert.False(StatusUnderReview.Terminal())
	assert.False(StatusEscalated.Terminal())
}
