package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/AladdinMagdy/whispr-sub000/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists records in a relational database (sqlite or postgres)
// behind the document-store contract.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(
		&models.UserReputation{},
		&models.ViolationRecord{},
		&models.Report{},
		&models.ReportResolution{},
	); err != nil {
		return nil, fmt.Errorf("migrating safety tables: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) LoadUserReputation(ctx context.Context, userID string) (*models.UserReputation, error) {
	var rep models.UserReputation
	err := s.db.WithContext(ctx).Preload("ViolationHistory").First(&rep, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("loading reputation for %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading reputation for %s: %w", userID, err)
	}
	return &rep, nil
}

func (s *GormStore) SaveUserReputation(ctx context.Context, rep *models.UserReputation) error {
	cp := *rep
	// history rows are written through AppendViolationRecord only
	cp.ViolationHistory = nil
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&cp).Error
	if err != nil {
		return fmt.Errorf("saving reputation for %s: %w", rep.UserID, err)
	}
	return nil
}

func (s *GormStore) AppendViolationRecord(ctx context.Context, rec *models.ViolationRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("appending violation record for %s: %w", rec.UserID, err)
	}
	return nil
}

func (s *GormStore) LoadReport(ctx context.Context, id uint64) (*models.Report, error) {
	var r models.Report
	err := s.db.WithContext(ctx).Preload("Resolution").First(&r, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("loading report %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading report %d: %w", id, err)
	}
	return &r, nil
}

func (s *GormStore) LoadReportsByContent(ctx context.Context, subjectType, subjectID string) ([]*models.Report, error) {
	var out []*models.Report
	err := s.db.WithContext(ctx).Preload("Resolution").
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("loading reports for %s/%s: %w", subjectType, subjectID, err)
	}
	return out, nil
}

func (s *GormStore) LoadReportsByReporter(ctx context.Context, reporterID string) ([]*models.Report, error) {
	var out []*models.Report
	err := s.db.WithContext(ctx).Preload("Resolution").
		Where("reporter_id = ?", reporterID).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("loading reports by reporter %s: %w", reporterID, err)
	}
	return out, nil
}

func (s *GormStore) SaveReport(ctx context.Context, report *models.Report) error {
	if err := s.db.WithContext(ctx).Save(report).Error; err != nil {
		return fmt.Errorf("saving report for %s/%s: %w", report.SubjectType, report.SubjectID, err)
	}
	return nil
}

func (s *GormStore) UpdateReport(ctx context.Context, id uint64, fields map[string]any) error {
	res := s.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("updating report %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("updating report %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *GormStore) SaveReportResolution(ctx context.Context, res *models.ReportResolution) error {
	if err := s.db.WithContext(ctx).Save(res).Error; err != nil {
		return fmt.Errorf("saving resolution for report %d: %w", res.ReportID, err)
	}
	return nil
}

func (s *GormStore) CountActiveBannedUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.UserReputation{}).
		Where("level = ?", models.LevelBanned).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("counting banned users: %w", err)
	}
	return n, nil
}
