package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/AladdinMagdy/whispr-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreReputation(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewMemStore()

	_, err := s.LoadUserReputation(ctx, "user-1")
	assert.ErrorIs(err, ErrNotFound)

	rep := models.NewUserReputation("user-1")
	assert.NoError(s.SaveUserReputation(ctx, rep))

	got, err := s.LoadUserReputation(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(75, got.Score)
	assert.Equal(models.LevelVerified, got.Level)

	assert.NoError(s.AppendViolationRecord(ctx, &models.ViolationRecord{
		UserID:        "user-1",
		WhisperID:     "whisper-1",
		ViolationType: models.ViolationSpam,
		Severity:      models.SeverityLow,
	}))
	got, err = s.LoadUserReputation(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got.ViolationHistory, 1)
	assert.Equal(models.ViolationSpam, got.ViolationHistory[0].ViolationType)

	n, err := s.CountActiveBannedUsers(ctx)
	assert.NoError(err)
	assert.Equal(int64(0), n)

	banned := models.NewUserReputation("user-2")
	banned.SetScore(0)
	assert.NoError(s.SaveUserReputation(ctx, banned))
	n, err = s.CountActiveBannedUsers(ctx)
	assert.NoError(err)
	assert.Equal(int64(1), n)
}

func TestMemStoreReports(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewMemStore()

	r := &models.Report{
		SubjectType: models.SubjectWhisper,
		SubjectID:   "whisper-1",
		ReporterID:  "user-9",
		Category:    models.ViolationSpam,
		Priority:    models.PriorityLow,
		Status:      models.StatusPending,
		Reason:      "spammy",
		CreatedAt:   time.Now().UTC(),
	}
	assert.NoError(s.SaveReport(ctx, r))
	assert.NotZero(r.ID)

	byID, err := s.LoadReport(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal("spammy", byID.Reason)
	_, err = s.LoadReport(ctx, 999)
	assert.ErrorIs(err, ErrNotFound)

	byContent, err := s.LoadReportsByContent(ctx, models.SubjectWhisper, "whisper-1")
	require.NoError(t, err)
	assert.Len(byContent, 1)

	byReporter, err := s.LoadReportsByReporter(ctx, "user-9")
	require.NoError(t, err)
	assert.Len(byReporter, 1)

	assert.NoError(s.UpdateReport(ctx, r.ID, map[string]any{
		"status":   models.StatusUnderReview,
		"priority": models.PriorityMedium,
	}))
	byContent, err = s.LoadReportsByContent(ctx, models.SubjectWhisper, "whisper-1")
	require.NoError(t, err)
	assert.Equal(models.StatusUnderReview, byContent[0].Status)
	assert.Equal(models.PriorityMedium, byContent[0].Priority)

	assert.ErrorIs(s.UpdateReport(ctx, 999, map[string]any{"status": models.StatusResolved}), ErrNotFound)

	assert.NoError(s.SaveReportResolution(ctx, &models.ReportResolution{
		ReportID:    r.ID,
		Action:      "content_removed",
		ModeratorID: "mod-1",
		CreatedAt:   time.Now().UTC(),
	}))
	byContent, err = s.LoadReportsByContent(ctx, models.SubjectWhisper, "whisper-1")
	require.NoError(t, err)
	require.NotNil(t, byContent[0].Resolution)
	assert.Equal("content_removed", byContent[0].Resolution.Action)
}
