// Package reputation owns the per-user trust score state machine: violation
// impact, time-based recovery, penalty multipliers, and appeal policy.
// Score and level always change together; the level is never stored
// independently of the score that produced it.
package reputation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/AladdinMagdy/whispr-sub000/models"
	"github.com/AladdinMagdy/whispr-sub000/safety/cachestore"
	"github.com/AladdinMagdy/whispr-sub000/safety/docstore"
	"github.com/AladdinMagdy/whispr-sub000/safety/moderation"
)

type Engine struct {
	Store  docstore.Store
	Cache  cachestore.CacheStore
	Logger *slog.Logger

	// overridable in tests
	Now func() time.Time

	userLocks sync.Map
}

func NewEngine(store docstore.Store, cache cachestore.CacheStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		Store:  store,
		Cache:  cache,
		Logger: logger,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

const cacheName = "rep"

// lockUser serializes read-modify-write cycles per user: two concurrent
// violations against the same user must not silently overwrite each
// other's score delta.
func (e *Engine) lockUser(userID string) func() {
	mu, _ := e.userLocks.LoadOrStore(userID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// GetOrCreate loads a user's reputation, creating the default record on
// first contact. "No reputation yet" is an expected state for new users,
// not an error.
func (e *Engine) GetOrCreate(ctx context.Context, userID string) (*models.UserReputation, error) {
	if cached := e.cachedSnapshot(ctx, userID); cached != nil {
		return cached, nil
	}
	rep, err := e.Store.LoadUserReputation(ctx, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		rep = models.NewUserReputation(userID)
		if err := e.Store.SaveUserReputation(ctx, rep); err != nil {
			return nil, fmt.Errorf("creating default reputation: %w", err)
		}
		e.Logger.Info("created default reputation", "userID", userID, "score", rep.Score, "level", rep.Level)
	} else if err != nil {
		return nil, err
	}
	e.cacheSnapshot(ctx, rep)
	return rep, nil
}

// ApplyViolation is the direct path: base impact × severity factor, no
// level penalty multiplier. Persistence failures propagate; an unrecorded
// enforcement action must be visible to the caller.
func (e *Engine) ApplyViolation(ctx context.Context, userID, whisperID string, vtype models.ViolationType, severity models.Severity, notes string) (*models.UserReputation, error) {
	unlock := e.lockUser(userID)
	defer unlock()

	rep, err := e.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	impact := ViolationImpact(vtype, severity)
	return e.applyImpact(ctx, rep, whisperID, vtype, severity, impact, notes)
}

// ApplyModerationResult applies every violation from a moderation result,
// with the level penalty multiplier, and updates the whisper counters
// according to the recommended action.
func (e *Engine) ApplyModerationResult(ctx context.Context, userID, whisperID string, res *moderation.Result) (*models.UserReputation, error) {
	unlock := e.lockUser(userID)
	defer unlock()

	rep, err := e.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// multiplier is fixed at the level the user held when the content was
	// scored, not recomputed mid-update
	multiplier := PenaltyMultiplier[rep.Level]

	rep.TotalWhispers++
	switch res.RecommendedAction {
	case models.ActionReject:
		rep.RejectedWhispers++
	case models.ActionFlag, models.ActionWarn:
		rep.FlaggedWhispers++
	case models.ActionApprove:
		rep.ApprovedWhispers++
	}

	now := e.Now()
	for _, v := range res.Violations {
		impact := int(math.Round(float64(BaseImpact[v.Type]) * SeverityFactor[v.Severity] * multiplier))
		rep.SetScore(rep.Score - impact)
		rep.LastViolation = &now
		rec := &models.ViolationRecord{
			UserID:        userID,
			WhisperID:     whisperID,
			ViolationType: v.Type,
			Severity:      v.Severity,
			Notes:         v.Description,
			CreatedAt:     now,
		}
		if err := e.Store.AppendViolationRecord(ctx, rec); err != nil {
			return nil, fmt.Errorf("recording violation: %w", err)
		}
		violationsApplied.WithLabelValues(string(v.Type)).Inc()
	}

	rep.UpdatedAt = now
	if err := e.Store.SaveUserReputation(ctx, rep); err != nil {
		return nil, fmt.Errorf("saving reputation: %w", err)
	}
	e.purgeSnapshot(ctx, userID)
	e.Logger.Info("applied moderation result", "userID", userID, "whisperID", whisperID,
		"violations", len(res.Violations), "score", rep.Score, "level", rep.Level)
	return rep, nil
}

func (e *Engine) applyImpact(ctx context.Context, rep *models.UserReputation, whisperID string, vtype models.ViolationType, severity models.Severity, impact int, notes string) (*models.UserReputation, error) {
	now := e.Now()
	rep.SetScore(rep.Score - impact)
	rep.LastViolation = &now
	rep.UpdatedAt = now

	rec := &models.ViolationRecord{
		UserID:        rep.UserID,
		WhisperID:     whisperID,
		ViolationType: vtype,
		Severity:      severity,
		Notes:         notes,
		CreatedAt:     now,
	}
	if err := e.Store.AppendViolationRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("recording violation: %w", err)
	}
	if err := e.Store.SaveUserReputation(ctx, rep); err != nil {
		return nil, fmt.Errorf("saving reputation: %w", err)
	}
	e.purgeSnapshot(ctx, rep.UserID)
	violationsApplied.WithLabelValues(string(vtype)).Inc()
	e.Logger.Info("applied violation", "userID", rep.UserID, "type", vtype,
		"severity", severity, "impact", impact, "score", rep.Score, "level", rep.Level)
	return rep, nil
}

// RecordApprovedWhisper nudges the score up by the current recovery rate:
// small positive reinforcement, independent of the time-based sweep.
func (e *Engine) RecordApprovedWhisper(ctx context.Context, userID string) (*models.UserReputation, error) {
	unlock := e.lockUser(userID)
	defer unlock()

	rep, err := e.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	bonus := int(math.Round(RecoveryRatePerDay[rep.Level]))
	rep.SetScore(rep.Score + bonus)
	rep.TotalWhispers++
	rep.ApprovedWhispers++
	rep.UpdatedAt = e.Now()
	if err := e.Store.SaveUserReputation(ctx, rep); err != nil {
		return nil, fmt.Errorf("saving reputation: %w", err)
	}
	e.purgeSnapshot(ctx, userID)
	return rep, nil
}

// ApplyRecovery runs the time-based recovery sweep for one user. Idempotent
// within a window: the amount is recomputed from LastViolation (or account
// creation) and the last applied sweep, so calling twice in the same day is
// a no-op. Persistence failures degrade to returning the unmodified record;
// recovery is advisory, not an enforcement action.
func (e *Engine) ApplyRecovery(ctx context.Context, userID string) (*models.UserReputation, error) {
	unlock := e.lockUser(userID)
	defer unlock()

	rep, err := e.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	rate := RecoveryRatePerDay[rep.Level]
	if rate == 0 || rep.Score >= 100 {
		return rep, nil
	}

	now := e.Now()
	ref := rep.CreatedAt
	if rep.LastViolation != nil {
		ref = *rep.LastViolation
	}
	if now.Sub(ref) < RecoveryDelayDays*24*time.Hour {
		return rep, nil
	}

	from := ref
	if rep.LastRecoveryAt != nil && rep.LastRecoveryAt.After(from) {
		from = *rep.LastRecoveryAt
	}
	days := int(now.Sub(from).Hours() / 24)
	amount := int(math.Round(rate * float64(days)))
	if amount <= 0 {
		return rep, nil
	}

	rep.SetScore(rep.Score + amount)
	rep.LastRecoveryAt = &now
	rep.UpdatedAt = now
	if err := e.Store.SaveUserReputation(ctx, rep); err != nil {
		e.Logger.Warn("recovery sweep not persisted", "userID", userID, "err", err)
		return rep, nil
	}
	e.purgeSnapshot(ctx, userID)
	recoveriesApplied.Inc()
	e.Logger.Info("applied recovery", "userID", userID, "amount", amount, "score", rep.Score, "level", rep.Level)
	return rep, nil
}

// AdminSetScore clamps, recomputes the level, and appends a synthetic
// audit record. Admin actions are never silent.
func (e *Engine) AdminSetScore(ctx context.Context, userID string, score int, reason, adminID string) (*models.UserReputation, error) {
	unlock := e.lockUser(userID)
	defer unlock()

	rep, err := e.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	old := rep.Score
	now := e.Now()
	rep.SetScore(score)
	rep.UpdatedAt = now

	rec := &models.ViolationRecord{
		UserID:        userID,
		ViolationType: models.ViolationAdminAdjustment,
		Severity:      models.SeverityLow,
		Resolved:      true,
		Notes:         fmt.Sprintf("admin override by %s: score %d -> %d: %s", adminID, old, rep.Score, reason),
		CreatedAt:     now,
	}
	if err := e.Store.AppendViolationRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("recording admin adjustment: %w", err)
	}
	if err := e.Store.SaveUserReputation(ctx, rep); err != nil {
		return nil, fmt.Errorf("saving reputation: %w", err)
	}
	e.purgeSnapshot(ctx, userID)
	adminOverrides.Inc()
	e.Logger.Info("admin score override", "userID", userID, "adminID", adminID,
		"oldScore", old, "newScore", rep.Score, "level", rep.Level)
	return rep, nil
}

// CanAppeal: appealable unless banned, or flagged with a critical-severity
// violation in the result.
func CanAppeal(level models.ReputationLevel, res *moderation.Result) bool {
	if level == models.LevelBanned {
		return false
	}
	if level == models.LevelFlagged && res != nil && res.HasCriticalViolation() {
		return false
	}
	return true
}

// Weight returns the influence multiplier a reporter at this level carries.
func Weight(level models.ReputationLevel) float64 {
	return ReportWeight[level]
}

// snapshot caching ======

func (e *Engine) cachedSnapshot(ctx context.Context, userID string) *models.UserReputation {
	if e.Cache == nil {
		return nil
	}
	raw, err := e.Cache.Get(ctx, cacheName, userID)
	if err != nil || raw == "" {
		return nil
	}
	var rep models.UserReputation
	if err := json.Unmarshal([]byte(raw), &rep); err != nil {
		return nil
	}
	return &rep
}

func (e *Engine) cacheSnapshot(ctx context.Context, rep *models.UserReputation) {
	if e.Cache == nil {
		return
	}
	raw, err := json.Marshal(rep)
	if err != nil {
		return
	}
	if err := e.Cache.Set(ctx, cacheName, rep.UserID, string(raw)); err != nil {
		e.Logger.Warn("failed to cache reputation snapshot", "userID", rep.UserID, "err", err)
	}
}

func (e *Engine) purgeSnapshot(ctx context.Context, userID string) {
	if e.Cache == nil {
		return
	}
	if err := e.Cache.Purge(ctx, cacheName, userID); err != nil {
		e.Logger.Warn("failed to purge reputation snapshot", "userID", userID, "err", err)
	}
}
