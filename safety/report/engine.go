// Package report turns raw user reports into prioritized moderation work:
// priority from category and reporter trust, duplicate merging, and
// threshold-based auto-escalation against content and accounts.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/AladdinMagdy/whispr-sub000/models"
	"github.com/AladdinMagdy/whispr-sub000/safety/countstore"
	"github.com/AladdinMagdy/whispr-sub000/safety/docstore"
	"github.com/AladdinMagdy/whispr-sub000/safety/flagstore"
	"github.com/AladdinMagdy/whispr-sub000/safety/helpers"
	"github.com/AladdinMagdy/whispr-sub000/safety/reputation"
)

var (
	ErrBannedReporter   = errors.New("Banned users cannot submit reports")
	ErrInvalidCategory  = errors.New("invalid report category")
	ErrInvalidSubject   = errors.New("invalid report subject type")
	ErrEmptyReason      = errors.New("report reason must not be empty")
	ErrReportResolved   = errors.New("report is already resolved")
	ErrMissingModerator = errors.New("resolution requires a moderator id")
)

const reasonSeparator = "\n\n--- Additional Report ---\n"

// ModerationActions is the enforcement collaborator: the surrounding
// application owns content removal and account suspension, the engine
// only signals them.
type ModerationActions interface {
	DeleteContent(ctx context.Context, subjectType, subjectID string) error
	SuspendUser(ctx context.Context, userID string, duration time.Duration) error
}

// LogActions satisfies ModerationActions by logging the signal. Used when
// no downstream enforcement service is wired, eg in local dev.
type LogActions struct {
	Logger *slog.Logger
}

func (a *LogActions) DeleteContent(ctx context.Context, subjectType, subjectID string) error {
	a.Logger.Warn("content deletion signaled", "subjectType", subjectType, "subjectID", subjectID)
	return nil
}

func (a *LogActions) SuspendUser(ctx context.Context, userID string, duration time.Duration) error {
	a.Logger.Warn("user suspension signaled", "userID", userID, "duration", duration)
	return nil
}

type Engine struct {
	Store      docstore.Store
	Counters   countstore.CountStore
	Flags      flagstore.FlagStore
	Reputation *reputation.Engine
	Actions    ModerationActions
	Policies   map[string]EscalationPolicy
	Logger     *slog.Logger

	// overridable in tests
	Now func() time.Time

	subjectLocks sync.Map
}

func NewEngine(store docstore.Store, counters countstore.CountStore, flags flagstore.FlagStore, rep *reputation.Engine, actions ModerationActions, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if actions == nil {
		actions = &LogActions{Logger: logger}
	}
	return &Engine{
		Store:      store,
		Counters:   counters,
		Flags:      flags,
		Reputation: rep,
		Actions:    actions,
		Policies:   DefaultPolicies(),
		Logger:     logger,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// lockSubject serializes report submission and escalation evaluation per
// content item. Two concurrent reports on the same item must both be
// visible to the threshold check that follows them.
func (e *Engine) lockSubject(subjectType, subjectID string) func() {
	key := subjectType + "/" + subjectID
	mu, _ := e.subjectLocks.LoadOrStore(key, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

type SubmitReportInput struct {
	SubjectType         string
	SubjectID           string
	SubjectAuthorID     string
	ReporterID          string
	ReporterDisplayName string
	Category            models.ReportCategory
	Reason              string
	Evidence            *string
}

func (in *SubmitReportInput) validate() error {
	if in.SubjectType != models.SubjectWhisper && in.SubjectType != models.SubjectComment {
		return fmt.Errorf("%w: %q", ErrInvalidSubject, in.SubjectType)
	}
	if in.SubjectID == "" {
		return fmt.Errorf("%w: missing subject id", ErrInvalidSubject)
	}
	if !in.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, in.Category)
	}
	if strings.TrimSpace(in.Reason) == "" {
		return ErrEmptyReason
	}
	return nil
}

// SubmitReport validates, dedupes, persists, and then evaluates escalation
// for the reported content. A repeat report from the same reporter in the
// same category merges into the existing row with a one-step priority
// escalation; a different category creates an independent report. Banned
// reporters are rejected before any report object is created.
func (e *Engine) SubmitReport(ctx context.Context, in SubmitReportInput) (*models.Report, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	rep, err := e.Reputation.GetOrCreate(ctx, in.ReporterID)
	if err != nil {
		return nil, fmt.Errorf("loading reporter reputation: %w", err)
	}
	if rep.Level == models.LevelBanned {
		return nil, ErrBannedReporter
	}

	unlock := e.lockSubject(in.SubjectType, in.SubjectID)
	defer unlock()

	existing, err := e.Store.LoadReportsByContent(ctx, in.SubjectType, in.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("loading existing reports: %w", err)
	}

	now := e.Now()
	var out *models.Report
	for _, r := range existing {
		if r.ReporterID == in.ReporterID && r.Category == in.Category && !r.Status.Terminal() {
			out, err = e.mergeRepeatReport(ctx, r, in.Reason, now)
			if err != nil {
				return nil, err
			}
			break
		}
	}

	if out == nil {
		out, err = e.createReport(ctx, in, rep, now)
		if err != nil {
			return nil, err
		}
	}

	e.recordSubmission(ctx, in)
	if err := e.evaluateEscalation(ctx, in.SubjectType, in.SubjectID, in.SubjectAuthorID); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) mergeRepeatReport(ctx context.Context, r *models.Report, reason string, now time.Time) (*models.Report, error) {
	r.Reason = r.Reason + reasonSeparator + reason
	r.Priority = r.Priority.Escalate()
	r.UpdatedAt = now
	err := e.Store.UpdateReport(ctx, r.ID, map[string]any{
		"reason":     r.Reason,
		"priority":   r.Priority,
		"updated_at": now,
	})
	if err != nil {
		return nil, fmt.Errorf("merging repeat report: %w", err)
	}
	reportsMerged.Inc()
	e.Logger.Info("merged repeat report", "reportID", r.ID, "reporterID", r.ReporterID,
		"category", r.Category, "priority", r.Priority)
	return r, nil
}

func (e *Engine) createReport(ctx context.Context, in SubmitReportInput, rep *models.UserReputation, now time.Time) (*models.Report, error) {
	priority := PriorityFor(in.Category, rep.Level)
	status := models.StatusPending
	// critical reports never sit in the pending queue; the transition to
	// under_review happens with creation, not in a deferred job
	if priority == models.PriorityCritical {
		status = models.StatusUnderReview
	}

	r := &models.Report{
		SubjectType:         in.SubjectType,
		SubjectID:           in.SubjectID,
		SubjectAuthorID:     in.SubjectAuthorID,
		ReporterID:          in.ReporterID,
		ReporterDisplayName: in.ReporterDisplayName,
		ReporterReputation:  rep.Score,
		Category:            in.Category,
		Priority:            priority,
		Status:              status,
		Reason:              in.Reason,
		Evidence:            in.Evidence,
		ReputationWeight:    reputation.Weight(rep.Level),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := e.Store.SaveReport(ctx, r); err != nil {
		return nil, fmt.Errorf("saving report: %w", err)
	}
	reportsSubmitted.WithLabelValues(string(in.Category), string(priority)).Inc()
	e.Logger.Info("report submitted", "reportID", r.ID, "subject", in.SubjectType+"/"+in.SubjectID,
		"category", in.Category, "priority", priority, "status", status, "weight", r.ReputationWeight)
	return r, nil
}

func (e *Engine) recordSubmission(ctx context.Context, in SubmitReportInput) {
	if e.Counters == nil {
		return
	}
	subject := in.SubjectType + "/" + in.SubjectID
	// lifetime submission count, including repeats that merge into an
	// existing row and thus leave no new row behind
	if err := e.Counters.Increment(ctx, "reports", subject); err != nil {
		e.Logger.Warn("failed to increment report counter", "subject", subject, "err", err)
	}
	// distinct reason texts per subject; a large gap between submissions
	// and distinct texts suggests a copy-paste brigade. Surfaced through
	// GetContentReportStats.
	if err := e.Counters.IncrementDistinct(ctx, "report-texts", subject, helpers.HashOfString(in.Reason)); err != nil {
		e.Logger.Warn("failed to increment report text counter", "subject", subject, "err", err)
	}
}

// evaluateEscalation re-derives the weighted report total and unique
// reporter count from the store and fires the highest tier whose gates are
// both met. Fired tiers are recorded as subject flags so enforcement is
// not repeated on the next report.
func (e *Engine) evaluateEscalation(ctx context.Context, subjectType, subjectID, authorID string) error {
	reports, err := e.Store.LoadReportsByContent(ctx, subjectType, subjectID)
	if err != nil {
		return fmt.Errorf("loading reports for escalation: %w", err)
	}

	var weighted float64
	reporters := make(map[string]bool)
	for _, r := range reports {
		if r.Status == models.StatusDismissed {
			continue
		}
		weighted += r.ReputationWeight
		reporters[r.ReporterID] = true
	}

	policy, ok := e.Policies[subjectType]
	if !ok {
		policy = e.Policies[models.SubjectWhisper]
	}

	subject := subjectType + "/" + subjectID
	switch {
	case policy.AutoSuspend.Met(weighted, len(reporters)):
		return e.fireSuspendTier(ctx, subject, subjectType, subjectID, authorID, policy, reports)
	case policy.AutoDelete.Met(weighted, len(reporters)):
		return e.fireDeleteTier(ctx, subject, subjectType, subjectID, authorID, reports)
	case policy.FlagForReview.Met(weighted, len(reporters)):
		return e.fireReviewTier(ctx, subject, reports)
	}
	return nil
}

func (e *Engine) fireReviewTier(ctx context.Context, subject string, reports []*models.Report) error {
	if e.hasFlag(ctx, subject, FlagReviewFlagged) {
		// flag already raised; still sweep any pending reports forward
		return e.markPendingUnderReview(ctx, reports)
	}
	if err := e.markPendingUnderReview(ctx, reports); err != nil {
		return err
	}
	e.addFlag(ctx, subject, FlagReviewFlagged)
	escalationsFired.WithLabelValues("review").Inc()
	e.Logger.Info("content flagged for review", "subject", subject, "reports", len(reports))
	return nil
}

func (e *Engine) fireDeleteTier(ctx context.Context, subject, subjectType, subjectID, authorID string, reports []*models.Report) error {
	if e.hasFlag(ctx, subject, FlagAutoDeleted) {
		return nil
	}
	if e.quotaExceeded(ctx, "auto-delete", QuotaAutoDeleteDay) {
		e.Logger.Warn("auto-delete quota exceeded, degrading to review flag", "subject", subject)
		return e.fireReviewTier(ctx, subject, reports)
	}
	if err := e.Actions.DeleteContent(ctx, subjectType, subjectID); err != nil {
		return fmt.Errorf("deleting content %s: %w", subject, err)
	}
	if authorID != "" {
		cat := dominantCategory(reports)
		if _, err := e.Reputation.ApplyViolation(ctx, authorID, subjectID, cat, models.SeverityHigh,
			fmt.Sprintf("content auto-deleted after %d reports", len(reports))); err != nil {
			return fmt.Errorf("applying auto-delete violation: %w", err)
		}
	}
	if err := e.markEscalated(ctx, reports); err != nil {
		return err
	}
	e.addFlag(ctx, subject, FlagAutoDeleted)
	e.countEnforcement(ctx, "auto-delete")
	escalationsFired.WithLabelValues("delete").Inc()
	e.Logger.Warn("content auto-deleted", "subject", subject, "authorID", authorID, "reports", len(reports))
	return nil
}

func (e *Engine) fireSuspendTier(ctx context.Context, subject, subjectType, subjectID, authorID string, policy EscalationPolicy, reports []*models.Report) error {
	// the suspend tier implies the delete tier
	if err := e.fireDeleteTier(ctx, subject, subjectType, subjectID, authorID, reports); err != nil {
		return err
	}
	if authorID == "" || e.hasFlag(ctx, "account/"+authorID, FlagAutoSuspended) {
		return nil
	}
	if e.quotaExceeded(ctx, "auto-suspend", QuotaAutoSuspendDay) {
		e.Logger.Warn("auto-suspend quota exceeded, skipping suspension", "subject", subject, "authorID", authorID)
		return nil
	}
	if err := e.Actions.SuspendUser(ctx, authorID, policy.SuspendDuration); err != nil {
		return fmt.Errorf("suspending user %s: %w", authorID, err)
	}
	e.addFlag(ctx, "account/"+authorID, FlagAutoSuspended)
	e.countEnforcement(ctx, "auto-suspend")
	escalationsFired.WithLabelValues("suspend").Inc()
	e.Logger.Warn("user auto-suspended", "authorID", authorID, "subject", subject, "duration", policy.SuspendDuration)
	return nil
}

func (e *Engine) markPendingUnderReview(ctx context.Context, reports []*models.Report) error {
	now := e.Now()
	for _, r := range reports {
		if r.Status != models.StatusPending {
			continue
		}
		err := e.Store.UpdateReport(ctx, r.ID, map[string]any{
			"status":     models.StatusUnderReview,
			"updated_at": now,
		})
		if err != nil {
			return fmt.Errorf("moving report %d under review: %w", r.ID, err)
		}
		r.Status = models.StatusUnderReview
	}
	return nil
}

func (e *Engine) markEscalated(ctx context.Context, reports []*models.Report) error {
	now := e.Now()
	for _, r := range reports {
		if r.Status.Terminal() || r.Status == models.StatusEscalated {
			continue
		}
		err := e.Store.UpdateReport(ctx, r.ID, map[string]any{
			"status":     models.StatusEscalated,
			"updated_at": now,
		})
		if err != nil {
			return fmt.Errorf("escalating report %d: %w", r.ID, err)
		}
		r.Status = models.StatusEscalated
	}
	return nil
}

// dominantCategory picks the most-reported non-dismissed category, used to
// attribute the author's violation when content is auto-deleted.
func dominantCategory(reports []*models.Report) models.ReportCategory {
	counts := make(map[models.ReportCategory]int)
	best := models.ViolationHarassment
	bestN := 0
	for _, r := range reports {
		if r.Status == models.StatusDismissed {
			continue
		}
		counts[r.Category]++
		if counts[r.Category] > bestN {
			best = r.Category
			bestN = counts[r.Category]
		}
	}
	return best
}

func (e *Engine) hasFlag(ctx context.Context, key, flag string) bool {
	if e.Flags == nil {
		return false
	}
	flags, err := e.Flags.Get(ctx, key)
	if err != nil {
		e.Logger.Warn("failed to read flags", "key", key, "err", err)
		return false
	}
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}

func (e *Engine) addFlag(ctx context.Context, key, flag string) {
	if e.Flags == nil {
		return
	}
	if err := e.Flags.Add(ctx, key, []string{flag}); err != nil {
		e.Logger.Warn("failed to add flag", "key", key, "flag", flag, "err", err)
	}
}

func (e *Engine) quotaExceeded(ctx context.Context, action string, limit int) bool {
	if e.Counters == nil {
		return false
	}
	n, err := e.Counters.GetCount(ctx, "quota", action, countstore.PeriodDay)
	if err != nil {
		e.Logger.Warn("failed to read enforcement quota", "action", action, "err", err)
		return false
	}
	return n >= limit
}

func (e *Engine) countEnforcement(ctx context.Context, action string) {
	if e.Counters == nil {
		return
	}
	if err := e.Counters.Increment(ctx, "quota", action); err != nil {
		e.Logger.Warn("failed to increment enforcement quota", "action", action, "err", err)
	}
}

// Resolve closes a report with a moderator decision. Resolution is
// terminal; resolved and dismissed reports accept no further transitions.
func (e *Engine) Resolve(ctx context.Context, reportID uint64, action models.Action, reason, moderatorID string) error {
	return e.close(ctx, reportID, models.StatusResolved, string(action), reason, moderatorID)
}

// Dismiss closes a report without enforcement.
func (e *Engine) Dismiss(ctx context.Context, reportID uint64, reason, moderatorID string) error {
	return e.close(ctx, reportID, models.StatusDismissed, "dismiss", reason, moderatorID)
}

func (e *Engine) close(ctx context.Context, reportID uint64, status models.ReportStatus, action, reason, moderatorID string) error {
	if moderatorID == "" {
		return ErrMissingModerator
	}
	r, err := e.Store.LoadReport(ctx, reportID)
	if err != nil {
		return err
	}
	if r.Status.Terminal() {
		return fmt.Errorf("report %d: %w", reportID, ErrReportResolved)
	}

	now := e.Now()
	err = e.Store.UpdateReport(ctx, reportID, map[string]any{
		"status":      status,
		"updated_at":  now,
		"reviewed_at": now,
		"reviewed_by": moderatorID,
	})
	if err != nil {
		return fmt.Errorf("closing report %d: %w", reportID, err)
	}
	res := &models.ReportResolution{
		ReportID:    reportID,
		Action:      action,
		Reason:      reason,
		ModeratorID: moderatorID,
		CreatedAt:   now,
	}
	if err := e.Store.SaveReportResolution(ctx, res); err != nil {
		return fmt.Errorf("recording resolution for report %d: %w", reportID, err)
	}
	reportsClosed.WithLabelValues(string(status)).Inc()
	e.Logger.Info("report closed", "reportID", reportID, "status", status, "moderatorID", moderatorID)
	return nil
}

// ContentReportStats summarizes the report state of one content item.
// LifetimeSubmissions counts every submission, including repeats that
// merged into an existing row, so it can exceed TotalReports; when it is
// much larger than DistinctReasonTexts the reports are mostly copy-paste.
type ContentReportStats struct {
	SubjectType         string                        `json:"subjectType"`
	SubjectID           string                        `json:"subjectID"`
	TotalReports        int                           `json:"totalReports"`
	UniqueReporters     int                           `json:"uniqueReporters"`
	WeightedTotal       float64                       `json:"weightedTotal"`
	LifetimeSubmissions int                           `json:"lifetimeSubmissions"`
	DistinctReasonTexts int                           `json:"distinctReasonTexts"`
	ByCategory          map[models.ReportCategory]int `json:"byCategory"`
	ByStatus            map[models.ReportStatus]int   `json:"byStatus"`
	HighestPriority     models.ReportPriority         `json:"highestPriority,omitempty"`
}

// GetContentReportStats aggregates reports for one content item. This is
// an analytics path: a persistence failure degrades to zeroed stats with a
// warning rather than erroring.
func (e *Engine) GetContentReportStats(ctx context.Context, subjectType, subjectID string) *ContentReportStats {
	stats := &ContentReportStats{
		SubjectType: subjectType,
		SubjectID:   subjectID,
		ByCategory:  make(map[models.ReportCategory]int),
		ByStatus:    make(map[models.ReportStatus]int),
	}
	reports, err := e.Store.LoadReportsByContent(ctx, subjectType, subjectID)
	if err != nil {
		e.Logger.Warn("failed to load reports for stats", "subject", subjectType+"/"+subjectID, "err", err)
		return stats
	}
	reporters := make(map[string]bool)
	for _, r := range reports {
		stats.TotalReports++
		stats.ByCategory[r.Category]++
		stats.ByStatus[r.Status]++
		reporters[r.ReporterID] = true
		if r.Status != models.StatusDismissed {
			stats.WeightedTotal += r.ReputationWeight
		}
		if stats.HighestPriority == "" || r.Priority.Rank() > stats.HighestPriority.Rank() {
			stats.HighestPriority = r.Priority
		}
	}
	stats.UniqueReporters = len(reporters)

	if e.Counters != nil {
		subject := subjectType + "/" + subjectID
		if n, err := e.Counters.GetCount(ctx, "reports", subject, countstore.PeriodTotal); err != nil {
			e.Logger.Warn("failed to read report counter", "subject", subject, "err", err)
		} else {
			stats.LifetimeSubmissions = n
		}
		if n, err := e.Counters.GetCountDistinct(ctx, "report-texts", subject, countstore.PeriodTotal); err != nil {
			e.Logger.Warn("failed to read report text counter", "subject", subject, "err", err)
		} else {
			stats.DistinctReasonTexts = n
		}
	}
	return stats
}
