// Package docstore is the persistence collaborator for the safety engines:
// a narrow document-store contract with no query-language specifics. The
// engines only ever save/load records by key, query by simple field
// equality, and append violation records.
package docstore

import (
	"context"
	"errors"

	"github.com/AladdinMagdy/whispr-sub000/models"
)

var ErrNotFound = errors.New("record not found")

type Store interface {
	LoadUserReputation(ctx context.Context, userID string) (*models.UserReputation, error)
	// full replace; the caller supplies the updated UpdatedAt
	SaveUserReputation(ctx context.Context, rep *models.UserReputation) error
	AppendViolationRecord(ctx context.Context, rec *models.ViolationRecord) error

	LoadReport(ctx context.Context, id uint64) (*models.Report, error)
	LoadReportsByContent(ctx context.Context, subjectType, subjectID string) ([]*models.Report, error)
	LoadReportsByReporter(ctx context.Context, reporterID string) ([]*models.Report, error)
	SaveReport(ctx context.Context, report *models.Report) error
	UpdateReport(ctx context.Context, id uint64, fields map[string]any) error
	SaveReportResolution(ctx context.Context, res *models.ReportResolution) error

	// admin/telemetry, not on the hot path
	CountActiveBannedUsers(ctx context.Context) (int64, error)
}
