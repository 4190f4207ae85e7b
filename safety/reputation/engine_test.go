package reputation

import (
	"context"
	"testing"
	"time"

	"github.com/AladdinMagdy/whispr-sub000/models"
	"github.com/AladdinMagdy/whispr-sub000/safety/docstore"
	"github.com/AladdinMagdy/whispr-sub000/safety/moderation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() (*Engine, *docstore.MemStore) {
	store := docstore.NewMemStore()
	eng := NewEngine(store, nil, nil)
	return eng, store
}

func TestGetOrCreateDefaults(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, _ := testEngine()
	rep, err := eng.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(75, rep.Score)
	assert.Equal(models.LevelVerified, rep.Level)

	// second call loads the same record
	again, err := eng.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(rep.Score, again.Score)
}

func TestApplyViolationDirectPath(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, _ := testEngine()
	rep, err := eng.ApplyViolation(ctx, "user-1", "whisper-1", models.ViolationHarassment, models.SeverityMedium, "test")
	require.NoError(t, err)

	// 15 × 1.0, no level multiplier on the direct path
	assert.Equal(60, rep.Score)
	assert.Equal(models.LevelStandard, rep.Level)
	assert.NotNil(rep.LastViolation)

	got, err := eng.Store.LoadUserReputation(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got.ViolationHistory, 1)
	assert.Equal(models.ViolationHarassment, got.ViolationHistory[0].ViolationType)
}

func TestApplyViolationFloorsAtZero(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, _ := testEngine()
	// minor safety critical: 35 × 2.0 = 70; 75 - 70 = 5
	rep, err := eng.ApplyViolation(ctx, "user-1", "w1", models.ViolationMinorSafety, models.SeverityCritical, "")
	require.NoError(t, err)
	assert.Equal(5, rep.Score)
	assert.Equal(models.LevelBanned, rep.Level)

	rep, err = eng.ApplyViolation(ctx, "user-1", "w2", models.ViolationMinorSafety, models.SeverityCritical, "")
	require.NoError(t, err)
	assert.Equal(0, rep.Score)
}

func TestApplyModerationResultUsesPenaltyMultiplier(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, store := testEngine()

	flagged := models.NewUserReputation("user-1")
	flagged.SetScore(30)
	require.NoError(t, store.SaveUserReputation(ctx, flagged))

	res := &moderation.Result{
		Flagged:           true,
		RecommendedAction: models.ActionReject,
		Violations: []moderation.Violation{
			{Type: models.ViolationHarassment, Severity: models.SeverityMedium, Confidence: 0.8},
		},
	}
	rep, err := eng.ApplyModerationResult(ctx, "user-1", "whisper-1", res)
	require.NoError(t, err)

	// 15 × 1.0 × 1.5 (flagged multiplier) = 23 after rounding; 30 - 23 = 7
	assert.Equal(7, rep.Score)
	assert.Equal(models.LevelBanned, rep.Level)
	assert.Equal(int64(1), rep.TotalWhispers)
	assert.Equal(int64(1), rep.RejectedWhispers)
}

func TestRecordApprovedWhisperBonus(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, _ := testEngine()
	rep, err := eng.RecordApprovedWhisper(ctx, "user-1")
	require.NoError(t, err)

	// verified recovery rate 1.5 rounds to a +2 nudge
	assert.Equal(77, rep.Score)
	assert.Equal(int64(1), rep.TotalWhispers)
	assert.Equal(int64(1), rep.ApprovedWhispers)
}

func TestRecoverySweep(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, store := testEngine()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	eng.Now = func() time.Time { return now }

	rep := models.NewUserReputation("user-1")
	rep.SetScore(50)
	lastViolation := now.Add(-40 * 24 * time.Hour)
	rep.LastViolation = &lastViolation
	require.NoError(t, store.SaveUserReputation(ctx, rep))

	// standard level, 1.0/day, 40 violation-free days
	got, err := eng.ApplyRecovery(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(90, got.Score)
	assert.Equal(models.LevelTrusted, got.Level)

	// calling again within the same day must not double-apply
	got, err = eng.ApplyRecovery(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(90, got.Score)

	// ...but more elapsed days accrue from the last sweep
	now = now.Add(5 * 24 * time.Hour)
	got, err = eng.ApplyRecovery(ctx, "user-1")
	require.NoError(t, err)
	// trusted now, 2.0/day × 5 days, capped at 100
	assert.Equal(100, got.Score)
}

func TestRecoveryGates(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, store := testEngine()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	eng.Now = func() time.Time { return now }

	// too recent: only 10 violation-free days
	rep := models.NewUserReputation("user-1")
	rep.SetScore(50)
	recent := now.Add(-10 * 24 * time.Hour)
	rep.LastViolation = &recent
	require.NoError(t, store.SaveUserReputation(ctx, rep))

	got, err := eng.ApplyRecovery(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(50, got.Score)

	// banned users never self-recover
	banned := models.NewUserReputation("user-2")
	banned.SetScore(10)
	old := now.Add(-100 * 24 * time.Hour)
	banned.LastViolation = &old
	require.NoError(t, store.SaveUserReputation(ctx, banned))

	got, err = eng.ApplyRecovery(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(10, got.Score)
	assert.Equal(models.LevelBanned, got.Level)
}

func TestAdminSetScore(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, _ := testEngine()
	rep, err := eng.AdminSetScore(ctx, "user-1", 150, "manual trust grant", "admin-7")
	require.NoError(t, err)
	assert.Equal(100, rep.Score)
	assert.Equal(models.LevelTrusted, rep.Level)

	got, err := eng.Store.LoadUserReputation(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got.ViolationHistory, 1)
	rec := got.ViolationHistory[0]
	assert.Equal(models.ViolationAdminAdjustment, rec.ViolationType)
	assert.Contains(rec.Notes, "75 -> 100")
	assert.Contains(rec.Notes, "manual trust grant")
	assert.Contains(rec.Notes, "admin-7")
}

func TestAppealPolicy(t *testing.T) {
	assert := assert.New(t)

	clean := &moderation.Result{}
	critical := &moderation.Result{Violations: []moderation.Violation{
		{Type: models.ViolationViolence, Severity: models.SeverityCritical},
	}}

	assert.True(CanAppeal(models.LevelTrusted, critical))
	assert.True(CanAppeal(models.LevelFlagged, clean))
	assert.False(CanAppeal(models.LevelFlagged, critical))
	assert.False(CanAppeal(models.LevelBanned, clean))

	assert.Equal(30*24*time.Hour, AppealTimeLimit(models.LevelTrusted))
	assert.Equal(14*24*time.Hour, AppealTimeLimit(models.LevelVerified))
	assert.Equal(7*24*time.Hour, AppealTimeLimit(models.LevelStandard))
	assert.Equal(3*24*time.Hour, AppealTimeLimit(models.LevelFlagged))
	assert.Equal(time.Duration(0), AppealTimeLimit(models.LevelBanned))

	assert.Equal(0.3, AutoAppealThreshold(models.LevelTrusted))
	assert.Equal(0.5, AutoAppealThreshold(models.LevelVerified))
	assert.Equal(0.7, AutoAppealThreshold(models.LevelStandard))
	assert.Equal(0.9, AutoAppealThreshold(models.LevelFlagged))
	assert.Equal(1.0, AutoAppealThreshold(models.LevelBanned))
}

func TestReportWeights(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(2.0, Weight(models.LevelTrusted))
	assert.Equal(1.5, Weight(models.LevelVerified))
	assert.Equal(1.0, Weight(models.LevelStandard))
	assert.Equal(0.5, Weight(models.LevelFlagged))
	assert.Equal(0.0, Weight(models.LevelBanned))
}
